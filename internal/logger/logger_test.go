package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	for _, tt := range []struct {
		json, debug bool
	}{
		{false, false},
		{true, false},
		{false, true},
	} {
		l, err := New(tt.json, tt.debug)
		require.NoError(t, err)
		require.NotNil(t, l)
		assert.Equal(t, tt.debug, l.Core().Enabled(zapcore.DebugLevel))
	}
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  url  ", Value: "  https://example.com  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	require.Len(t, fields, 1)
	assert.Equal(t, "url", fields[0].Key)
	assert.Equal(t, "https://example.com", fields[0].String)
	assert.Empty(t, StringFields())
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	l := zap.New(core)

	WithFields(l, PostingFields("https://acme.applytojob.com/1", "jazzhr")...).Info("attempt")

	entries := observed.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "https://acme.applytojob.com/1", ctx[FieldURL])
	assert.Equal(t, "jazzhr", ctx[FieldProvider])

	fallback := WithFields(nil, zap.String("k", "v"))
	require.NotNil(t, fallback)
	fallback.Info("does not panic")
}
