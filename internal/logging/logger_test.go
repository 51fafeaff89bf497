package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"WARN", logrus.WarnLevel},
		{" error ", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"verbose", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, GetLevel(tt.in))
		})
	}
}

func TestSetupWritesToFile(t *testing.T) {
	defer func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetFormatter(&logrus.TextFormatter{})
	}()

	base := filepath.Join(t.TempDir(), "loadwatch")
	Setup(SetupParams{LogLevel: "debug", LogFileName: base, LogFormatJSON: true})

	logrus.WithField("acwr", 1.42).Debug("risk computed")

	data, err := os.ReadFile(base + ".log")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"acwr":1.42`)
	assert.Contains(t, string(data), `"msg":"risk computed"`)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}
