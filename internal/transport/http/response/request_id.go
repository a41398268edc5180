package response

import (
	"net/http"

	appCtx "github.com/fumble-dev/hire-me/internal/pkg/context"
)

// RequestIDFromContext extracts the request id placed by the RequestID
// middleware, or "" when the middleware did not run.
func RequestIDFromContext(r *http.Request) string {
	return appCtx.GetRequestID(r.Context())
}
