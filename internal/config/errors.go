package config

import (
	"errors"
	"fmt"
)

// Validation errors returned by Config.Validate. When a parser rejected the
// value its error is wrapped as well.
var (
	ErrInvalidStageDelay      = errors.New("invalid stage delay: must be non-negative")
	ErrInvalidConcurrency     = errors.New("invalid concurrency: must be positive")
	ErrInvalidFormat          = errors.New("invalid report format: use text, markdown, json or html")
	ErrInvalidTab             = errors.New("invalid tab")
	ErrInvalidCode            = errors.New("invalid code type: use html, css or js")
	ErrInvalidLocale          = errors.New("invalid locale")
	ErrInvalidLogFormat       = errors.New("invalid log format: use text or json")
	ErrNoHistoryLocation      = errors.New("history is enabled but no location is set")
	ErrInvalidListenAddr      = errors.New("invalid listen address: expected host:port")
	ErrInvalidExample         = errors.New("invalid example URL")
	ErrInvalidShutdownTimeout = errors.New("invalid shutdown timeout: must be positive")
)

// Config file errors.
var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidConfigFile is returned when the file does not parse.
	ErrInvalidConfigFile = errors.New("invalid configuration file")
)

func wrap(sentinel, cause error) error {
	return fmt.Errorf("%w: %w", sentinel, cause)
}
