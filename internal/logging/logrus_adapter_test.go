package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
		expectJSON  bool
	}{
		{name: "debug text", level: "debug", format: "text", expectLevel: logrus.DebugLevel},
		{name: "info json", level: "info", format: "json", expectLevel: logrus.InfoLevel, expectJSON: true},
		{name: "upper case level", level: "WARN", format: "text", expectLevel: logrus.WarnLevel},
		{name: "invalid level defaults to info", level: "chatty", format: "text", expectLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogrusAdapter(tt.level, tt.format)
			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok)
			assert.Equal(t, tt.expectLevel, adapter.logger.Level)

			_, isJSON := adapter.logger.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.expectJSON, isJSON)
		})
	}
}

func newBufferedAdapter(level logrus.Level) (Logger, *bytes.Buffer) {
	l := logrus.New()
	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return NewLogrusAdapterFromLogger(l), &buf
}

func TestLogrusAdapter_FieldsAndErrors(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.DebugLevel)

	logger.WithError(errors.New("store offline")).
		WithField(FieldTransactionID, "tx-1").
		Warn("rolled back", F(FieldOperation, "add"))

	out := buf.String()
	assert.Contains(t, out, "rolled back")
	assert.Contains(t, out, "store offline")
	assert.Contains(t, out, "tx-1")
	assert.Contains(t, out, "operation=add")
}

func TestLogrusAdapter_LevelFiltering(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.WarnLevel)

	logger.Info("hidden")
	logger.Error("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestNewLogrusAdapterFromLogger_Nil(t *testing.T) {
	logger := NewLogrusAdapterFromLogger(nil)
	adapter, ok := logger.(*LogrusAdapter)
	require.True(t, ok)
	assert.NotNil(t, adapter.logger)
}

func TestMockLogger_SharesEntriesWithDerivedLoggers(t *testing.T) {
	mock := NewMockLogger()
	child := mock.WithField(FieldBank, "Monzo").WithError(errors.New("boom"))

	child.Error("import failed")
	mock.Info("done")

	entries := mock.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "ERROR", entries[0].Level)
	assert.EqualError(t, entries[0].Error, "boom")
	assert.Equal(t, []Field{{Key: FieldBank, Value: "Monzo"}}, entries[0].Fields)
	assert.True(t, mock.HasEntry("INFO", "done"))
	assert.Len(t, mock.EntriesByLevel("ERROR"), 1)
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, GetLogger(), OrDefault(nil))

	mock := NewMockLogger()
	assert.Same(t, mock, OrDefault(mock))
}
