package tsodbc

import (
	"log/slog"

	"golang.org/x/text/language"
)

// DefaultFetchSize is the number of rows requested per result page.
const DefaultFetchSize = 1000

// Config holds the settings shared by the conversion engine, the materializer and statements.
type Config struct {
	// Unicode selects wide-character defaults (SQL_C_WCHAR, SQL_WVARCHAR).
	Unicode bool
	// UnknownSizes governs the size reported for character columns without a bound.
	UnknownSizes UnknownSizePolicy
	// MaxVarcharSize is the VARCHAR/LONGVARCHAR threshold.
	MaxVarcharSize int
	// FetchSize is the page size requested from the query client.
	FetchSize int
	// NumberFormat is the client-side numeric formatting.
	NumberFormat NumberFormat
	// Logger receives diagnostics; nil uses the package logger.
	Logger *slog.Logger
}

// Option represents an option for configuring the driver core.
type Option func(*Config)

// NewConfig returns the default configuration with opts applied.
func NewConfig(opts ...Option) Config {
	cfg := Config{
		UnknownSizes:   UnknownsAsMax,
		MaxVarcharSize: DefaultMaxVarcharSize,
		FetchSize:      DefaultFetchSize,
		NumberFormat:   DefaultNumberFormat,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithUnicode selects the wide-character driver flavour.
func WithUnicode(enabled bool) Option {
	return func(c *Config) {
		c.Unicode = enabled
	}
}

// WithUnknownSizes sets the unknown size policy.
func WithUnknownSizes(p UnknownSizePolicy) Option {
	return func(c *Config) {
		c.UnknownSizes = p
	}
}

// WithMaxVarcharSize sets the VARCHAR ceiling.
func WithMaxVarcharSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxVarcharSize = n
		}
	}
}

// WithFetchSize sets the page size.
func WithFetchSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.FetchSize = n
		}
	}
}

// WithNumberFormat sets the client numeric format explicitly.
func WithNumberFormat(nf NumberFormat) Option {
	return func(c *Config) {
		c.NumberFormat = nf
	}
}

// WithLanguage derives the client numeric format from a language tag.
func WithLanguage(tag language.Tag) Option {
	return func(c *Config) {
		c.NumberFormat = NumberFormatForLanguage(tag)
	}
}

// WithSystemLocale uses the numeric format of the process locale.
func WithSystemLocale() Option {
	return func(c *Config) {
		c.NumberFormat = SystemNumberFormat()
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return GetLogger()
}
