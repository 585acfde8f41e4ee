// Package logsink holds the process-wide default log sink used by every
// layer of the engine. It is lazily initialized on first use and can be
// overridden by a host application via Configure, matching the
// lazy-init -> first-use -> process-end lifecycle of the shared RNG
// state.
package logsink

import (
	"log/slog"
	"os"
	"sync/atomic"
)

var sink atomic.Pointer[slog.Logger]

// Configure installs logger as the process-wide default sink. Tests and
// host applications call this to inject a deterministic or silent
// logger; the zero value (nil) resets to the lazily-constructed default.
func Configure(logger *slog.Logger) {
	sink.Store(logger)
}

// Default returns the process-wide log sink, constructing a
// text-handler logger writing to stderr on first use if none was
// configured.
func Default() *slog.Logger {
	if l := sink.Load(); l != nil {
		return l
	}

	l := slog.New(slog.NewTextHandler(os.Stderr, nil))
	sink.CompareAndSwap(nil, l)

	return sink.Load()
}
