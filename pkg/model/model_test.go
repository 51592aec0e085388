package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRoleCodecs(t *testing.T) {
	r, err := RoleString("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)
	assert.True(t, r.IsAdmin())

	_, err = RoleString("root")
	assert.Error(t, err)

	b, err := json.Marshal(RoleUser)
	require.NoError(t, err)
	assert.Equal(t, `"user"`, string(b))

	var decoded Role
	require.NoError(t, yaml.Unmarshal([]byte("admin"), &decoded))
	assert.Equal(t, RoleAdmin, decoded)

	v, err := RoleAdmin.Value()
	require.NoError(t, err)
	assert.Equal(t, "admin", v)

	var scanned Role
	require.NoError(t, scanned.Scan([]byte("admin")))
	assert.Equal(t, RoleAdmin, scanned)
	assert.Error(t, scanned.Scan(42))
}

func TestUserNeverSerializesPassword(t *testing.T) {
	u := User{ID: 1, Username: "alice", Email: "alice@x.io", Password: "$2a$10$hash", Role: RoleAdmin}

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "password")
	assert.NotContains(t, string(b), "$2a$10$hash")
	assert.Contains(t, string(b), `"role":"admin"`)

	assert.Empty(t, u.Sanitized().Password)
	assert.Equal(t, "$2a$10$hash", u.Password)
}

func TestTags(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  Tags
	}{
		{name: "json text", input: `["go","sqlite"]`, want: Tags{"go", "sqlite"}},
		{name: "json bytes", input: []byte(`["go"]`), want: Tags{"go"}},
		{name: "null column", input: nil, want: Tags{}},
		{name: "empty string", input: "", want: Tags{}},
		{name: "json null", input: "null", want: Tags{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Tags
			require.NoError(t, got.Scan(tt.input))
			assert.Equal(t, tt.want, got)
		})
	}

	var bad Tags
	assert.Error(t, bad.Scan("not json"))

	v, err := Tags(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}
