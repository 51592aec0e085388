package audit

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.SetWriter(&buf)
	logger.hostname = "web-1"
	logger.pid = 42
	logger.now = func() time.Time { return time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC) }

	logger.Log(LoginEvent{Email: "alice@example.com", UserID: 7, ClientIP: "192.168.1.1", Success: true})

	assert.Equal(t,
		`<86>1 2024-05-01T02:00:00.000Z web-1 portfolio 42 login [auth@32473 id="7" method="password" user="alice@example.com"][client@32473 ip="192.168.1.1"] alice@example.com successfully logged in`+"\n",
		buf.String(),
	)
}

func TestEvents(t *testing.T) {
	tests := []struct {
		name      string
		event     Event
		wantMsg   string
		wantSev   Severity
		wantFac   int
		wantMsgID string
	}{
		{
			name:      "failed login",
			event:     LoginEvent{Email: "alice@example.com", ClientIP: "10.0.0.1", ErrorMessage: "Invalid email or password"},
			wantMsg:   "alice@example.com failed to log in: Invalid email or password",
			wantSev:   SeverityWarning,
			wantFac:   FacilityAuthPriv,
			wantMsgID: "login",
		},
		{
			name:      "registration",
			event:     RegisterEvent{Username: "alice", Email: "alice@example.com", Success: true},
			wantMsg:   "alice@example.com registered as alice",
			wantSev:   SeverityInfo,
			wantFac:   FacilityAuth,
			wantMsgID: "register",
		},
		{
			name:      "token refresh",
			event:     TokenRefreshEvent{UserID: 3, Email: "bob@example.com"},
			wantMsg:   "bob@example.com refreshed their session token",
			wantSev:   SeverityInfo,
			wantFac:   FacilityAuthPriv,
			wantMsgID: "token-refresh",
		},
		{
			name:      "role change",
			event:     UserAdminEvent{ActorEmail: "root@example.com", TargetID: 4, Action: ActionChangeRole, Detail: "admin", Success: true},
			wantMsg:   "root@example.com performed change-role on user 4 (admin)",
			wantSev:   SeverityNotice,
			wantFac:   FacilityAuth,
			wantMsgID: "user-admin",
		},
		{
			name:      "refused self delete",
			event:     UserAdminEvent{ActorEmail: "root@example.com", TargetID: 1, Action: ActionDelete, ErrorMessage: "You cannot delete your own account"},
			wantMsg:   "root@example.com tried to perform delete on user 1: You cannot delete your own account",
			wantSev:   SeverityWarning,
			wantFac:   FacilityAuth,
			wantMsgID: "user-admin",
		},
		{
			name:      "scheduled snapshot",
			event:     BackupEvent{Kind: "snapshot", Path: "/backups/app.db", Trigger: "schedule", Success: true},
			wantMsg:   "snapshot written to /backups/app.db (schedule)",
			wantSev:   SeverityInfo,
			wantFac:   FacilityLocal0,
			wantMsgID: "backup",
		},
		{
			name:      "failed export",
			event:     BackupEvent{Kind: "export", Trigger: "manual", ErrorMessage: "disk full"},
			wantMsg:   "export failed (manual): disk full",
			wantSev:   SeverityError,
			wantFac:   FacilityLocal0,
			wantMsgID: "backup",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.event.Message())
			assert.Equal(t, tt.wantSev, tt.event.Severity())
			assert.Equal(t, tt.wantFac, tt.event.Facility())
			assert.Equal(t, tt.wantMsgID, tt.event.MessageID())
		})
	}
}

func TestStructuredData(t *testing.T) {
	sd := map[string]map[string]string{
		"b@1": {"z": "1", "a": "2"},
		"a@1": {"k": "v"},
	}
	assert.Equal(t, `[a@1 k="v"][b@1 a="2" z="1"]`, formatStructuredData(sd))
	assert.Equal(t, "", formatStructuredData(nil))
}

func TestAuditToggle(t *testing.T) {
	var buf bytes.Buffer
	original := DefaultLogger
	DefaultLogger = NewLogger()
	DefaultLogger.SetWriter(&buf)
	defer func() {
		DefaultLogger = original
		SetEnabled(true)
	}()

	SetEnabled(false)
	assert.False(t, IsEnabled())
	Log(TokenRefreshEvent{UserID: 1, Email: "a@example.com"})
	assert.Empty(t, buf.String())

	SetEnabled(true)
	Log(TokenRefreshEvent{UserID: 1, Email: "a@example.com"})
	assert.True(t, strings.Contains(buf.String(), "token-refresh"))
}

func TestEscapeSDValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, `"plain"`},
		{`with "quotes"`, `"with \"quotes\""`},
		{`back\slash`, `"back\\slash"`},
		{`close]bracket`, `"close\]bracket"`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeSDValue(tt.in))
		})
	}
}
