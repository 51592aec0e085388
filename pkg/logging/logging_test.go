package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestConfigure(t *testing.T) {
	l := logrus.New()

	Configure(l, "production", "debug")
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	Configure(l, "development", "nonsense")
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}

func TestLoggerIsShared(t *testing.T) {
	assert.Same(t, Logger(), Logger())
}
