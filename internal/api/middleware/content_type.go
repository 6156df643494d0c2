package middleware

import (
	"mime"
	"net/http"

	"github.com/nimbusview/nimbus/internal/api/models"
)

// ContentTypeJSON defaults the response Content-Type to application/json.
// Handlers may override it.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// RequireJSON rejects POST, PUT and PATCH bodies that declare a media type
// other than application/json. A missing Content-Type is accepted.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if contentType := r.Header.Get("Content-Type"); contentType != "" {
				mediaType, _, err := mime.ParseMediaType(contentType)
				if err != nil || mediaType != "application/json" {
					models.NewProblem(models.ProblemTypeValidation, "Unsupported media type",
						http.StatusUnsupportedMediaType, GetRequestID(r.Context())).
						WithDetail("Content-Type must be application/json").
						WithInstance(r.URL.Path).
						Write(w)
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
