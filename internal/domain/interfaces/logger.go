// Package interfaces defines core domain contracts.
//
//nolint:revive // Package name 'interfaces' is intentional for domain layer
package interfaces

import (
	"fmt"
	"os"
	"time"
)

// Logger defines the interface for structured logging
type Logger interface {
	// Debug logs debug-level messages
	Debug(msg string, fields ...Field)

	// Info logs informational messages
	Info(msg string, fields ...Field)

	// Warn logs warning messages
	Warn(msg string, fields ...Field)

	// Error logs error messages
	Error(msg string, fields ...Field)
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value interface{}
}

// F creates a new Field (convenience function)
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// NoOpLogger is a logger that does nothing (useful for tests)
type NoOpLogger struct{}

// Debug does nothing (no-op implementation)
func (n *NoOpLogger) Debug(_ string, _ ...Field) {}

// Info does nothing (no-op implementation)
func (n *NoOpLogger) Info(_ string, _ ...Field) {}

// Warn does nothing (no-op implementation)
func (n *NoOpLogger) Warn(_ string, _ ...Field) {}

// Error does nothing (no-op implementation)
func (n *NoOpLogger) Error(_ string, _ ...Field) {}

// ConsoleLogger writes timestamped lines to stderr, filtered by level
type ConsoleLogger struct {
	// Verbose enables debug output
	Verbose bool
}

// Debug logs debug-level messages when verbose output is enabled
func (c *ConsoleLogger) Debug(msg string, fields ...Field) {
	if c.Verbose {
		c.log("DEBUG", msg, fields)
	}
}

// Info logs informational messages
func (c *ConsoleLogger) Info(msg string, fields ...Field) {
	c.log("INFO", msg, fields)
}

// Warn logs warning messages
func (c *ConsoleLogger) Warn(msg string, fields ...Field) {
	c.log("WARN", msg, fields)
}

// Error logs error messages
func (c *ConsoleLogger) Error(msg string, fields ...Field) {
	c.log("ERROR", msg, fields)
}

func (c *ConsoleLogger) log(level, msg string, fields []Field) {
	line := fmt.Sprintf("%s %s %s", time.Now().Format("2006-01-02 15:04:05"), level, msg)
	for _, f := range fields {
		line += fmt.Sprintf(" %s=%v", f.Key, f.Value)
	}
	fmt.Fprintln(os.Stderr, line)
}
