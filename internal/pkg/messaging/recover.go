package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/stacktrace"
)

// runHandler shields the consume loop from handler panics so one poisoned
// message cannot take the whole consumer down.
func runHandler(ctx context.Context, broker string, handler Handler, msg Message) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
				slog.ErrorContext(ctx, "panic in message handler", "broker", broker, "panic", rvr, "stack", paths)
			} else {
				slog.ErrorContext(ctx, "panic in message handler", "broker", broker, "panic", rvr, "stack", string(stack))
			}
			err = fmt.Errorf("messaging: panic in %s handler: %v", broker, rvr)
		}
	}()

	return handler(ctx, msg)
}
