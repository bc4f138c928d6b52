package handlers

import (
	"context"
	"net/http"

	"incidents-dashboard/core/shell"
)

type ctxKey int

const shellContextKey ctxKey = iota

const (
	SessionCookieName = "incidents_session"
	CSRFCookieName    = "incidents_csrf"
	DeviceCookieName  = "incidents_device"
)

func WithShell(ctx context.Context, sh *shell.Shell) context.Context {
	return context.WithValue(ctx, shellContextKey, sh)
}

// ShellFrom returns the device shell attached by the device middleware.
func ShellFrom(ctx context.Context) *shell.Shell {
	sh, _ := ctx.Value(shellContextKey).(*shell.Shell)
	return sh
}

func requireShell(w http.ResponseWriter, r *http.Request) *shell.Shell {
	sh := ShellFrom(r.Context())
	if sh == nil {
		writeError(w, http.StatusInternalServerError, "device.missing", "device not initialised")
	}
	return sh
}
