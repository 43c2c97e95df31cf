package access

import "github.com/rs/zerolog"

// zeroLogger returns a no-op logger for tests that need a value, not a nil.
func zeroLogger() zerolog.Logger {
	return zerolog.Nop()
}
