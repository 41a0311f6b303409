package mid

import (
	"context"
	"net/http"
	"time"

	"github.com/scholarstream/escrow/business/sys/metrics"
	"github.com/scholarstream/escrow/foundation/web"
)

// Metrics updates program counters. It is expected to run outside of Errors
// so the status code of a failed request is already set.
func Metrics(m *metrics.Metrics) web.Middleware {

	// This is the actual middleware function to be executed.
	mw := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// Call the next handler.
			err := handler(ctx, w, r)

			v, verr := web.GetValues(ctx)
			if verr != nil {
				return web.NewShutdownError("web value missing from context")
			}

			m.Request(v.Route, r.Method, v.StatusCode, time.Since(v.Now))
			if err != nil || v.StatusCode >= http.StatusBadRequest {
				m.Error(v.Route)
			}

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return mw
}
