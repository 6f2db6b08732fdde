package core

import "context"

// ShutdownFunc is the signature for cleanup handlers run during graceful
// shutdown. The context carries the shutdown deadline; handlers should
// return promptly when it is cancelled.
type ShutdownFunc func(ctx context.Context) error
