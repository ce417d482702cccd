package logger

import (
	"encoding/json"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Fields map[string]any

var sensitiveKeys = map[string]struct{}{
	"password":                 {},
	"passwordhash":             {},
	"password_hash":            {},
	"token":                    {},
	"emailverificationtoken":   {},
	"email_verification_token": {},
	"authorization":            {},
	"pin":                      {},
}

var global atomic.Pointer[zap.Logger]

func init() {
	global.Store(zap.NewNop())
}

// Configure replaces the global logger. level is one of zap's level names;
// unknown values fall back to info.
func Configure(level string) error {
	cfg := zap.NewProductionConfig()
	if parsed, err := zapcore.ParseLevel(strings.TrimSpace(level)); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(parsed)
	}
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true

	built, err := cfg.Build()
	if err != nil {
		return err
	}

	global.Store(built)
	return nil
}

func Sync() {
	_ = global.Load().Sync()
}

func Info(message string, fields Fields) {
	global.Load().Info(message, zapFields(fields)...)
}

func Error(message string, err error, fields Fields) {
	zfs := zapFields(fields)
	if err != nil {
		zfs = append(zfs, zap.String("error", err.Error()))
	}
	global.Load().Error(message, zfs...)
}

// SanitizePayload renders a payload with sensitive values masked, for
// inclusion in log fields.
func SanitizePayload(payload any) any {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "<unavailable>"
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return "<unavailable>"
	}

	return sanitizeValue(data)
}

func zapFields(fields Fields) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	zfs := make([]zap.Field, 0, len(fields))
	for key, value := range fields {
		if isSensitiveKey(key) {
			zfs = append(zfs, zap.String(key, "******"))
			continue
		}
		zfs = append(zfs, zap.Any(key, sanitizeValue(value)))
	}
	return zfs
}

func sanitizeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, inner := range typed {
			if isSensitiveKey(key) {
				out[key] = "******"
				continue
			}
			out[key] = sanitizeValue(inner)
		}
		return out
	case []any:
		out := make([]any, 0, len(typed))
		for _, item := range typed {
			out = append(out, sanitizeValue(item))
		}
		return out
	default:
		return value
	}
}

func isSensitiveKey(key string) bool {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(key), "-", ""))
	_, ok := sensitiveKeys[normalized]
	return ok
}
