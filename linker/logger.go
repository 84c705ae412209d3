package linker

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the linker package's logger instance, scoped under the
// "linker" name so log lines from this package are distinguishable from the
// wasm decoder's or a host application's own logging once they share a
// sink. It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the linker package's logger. l is wrapped with
// Named("linker") rather than stored as-is, so TryLink/Resolver log lines
// carry that name regardless of how the caller constructed l. This must be
// called before any linker operations.
func SetLogger(l *zap.Logger) {
	logger = l.Named("linker")
}
