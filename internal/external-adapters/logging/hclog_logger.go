// Package logging adapts hashicorp/go-hclog to the domain Logger contract.
package logging

import (
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/rayforge/registry/internal/domain/interfaces"
)

// HCLogger implements interfaces.Logger on top of hclog
type HCLogger struct {
	l hclog.Logger
}

// New creates a logger writing to stderr. level accepts hclog level names
// ("trace", "debug", "info", "warn", "error"); empty defaults to info.
func New(name, level string) *HCLogger {
	lvl := hclog.Info
	if level != "" {
		lvl = hclog.LevelFromString(level)
		if lvl == hclog.NoLevel {
			lvl = hclog.Info
		}
	}

	return &HCLogger{
		l: hclog.New(&hclog.LoggerOptions{
			Name:   name,
			Level:  lvl,
			Output: os.Stderr,
		}),
	}
}

// Debug logs debug-level messages
func (h *HCLogger) Debug(msg string, fields ...interfaces.Field) {
	h.l.Debug(msg, flatten(fields)...)
}

// Info logs informational messages
func (h *HCLogger) Info(msg string, fields ...interfaces.Field) {
	h.l.Info(msg, flatten(fields)...)
}

// Warn logs warning messages
func (h *HCLogger) Warn(msg string, fields ...interfaces.Field) {
	h.l.Warn(msg, flatten(fields)...)
}

// Error logs error messages
func (h *HCLogger) Error(msg string, fields ...interfaces.Field) {
	h.l.Error(msg, flatten(fields)...)
}

func flatten(fields []interfaces.Field) []interface{} {
	args := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	return args
}
