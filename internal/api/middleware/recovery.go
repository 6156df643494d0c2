package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/nimbusview/nimbus/internal/api/models"
)

// Recovery turns a handler panic into a logged 500 problem response.
func Recovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					requestID := GetRequestID(r.Context())

					log.Error().
						Str("request_id", requestID).
						Interface("error", err).
						Str("stack", string(debug.Stack())).
						Msg("panic recovered")

					models.NewInternalError(requestID, "an unexpected error occurred").
						WithInstance(r.URL.Path).
						Write(w)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
