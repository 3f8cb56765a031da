package app

import (
	"io"

	"github.com/gcbaptista/space-chatbot/config"
)

// Option configures the application.
type Option func(*application)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithOutput sets where logs and stdout spans are written.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.output = w
	}
}

// WithVersion sets the version reported in traces.
func WithVersion(version string) Option {
	return func(a *application) {
		a.version = version
	}
}
