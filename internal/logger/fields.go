package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Structured field keys shared by the dispatcher, tracker and pipeline.
const (
	FieldURL      = "url"
	FieldProvider = "ats"
	FieldTier     = "tier"
	FieldStatus   = "status"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields, trimming whitespace
// and omitting entries with an empty key or value.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	logger = OrNop(logger)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// PostingFields returns the fields identifying one posting in log entries.
func PostingFields(url, provider string) []zap.Field {
	return StringFields(
		StringField{Key: FieldURL, Value: url},
		StringField{Key: FieldProvider, Value: provider},
	)
}
