package httpapi

import "context"

// shutdownCtx is canceled when the process begins graceful shutdown.
// Engine-bound handlers derive from it so in-flight synthesis stops with
// the server instead of holding the drain open.
var shutdownCtx = context.Background()

// SetBaseContext installs the process lifetime context handlers derive from.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		shutdownCtx = context.Background()
		return
	}
	shutdownCtx = ctx
}

// engineCallContext derives the context for one engine-bound call: it
// follows the client request and is additionally canceled by shutdown.
// The returned cancel must be called when the handler ends.
func engineCallContext(req context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(req)
	stop := context.AfterFunc(shutdownCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
