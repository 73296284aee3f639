package middleware

import (
	"net/http"

	"github.com/gorilla/handlers"
)

// CORS lets the mobile and web clients call the API from any of the given
// origins. "*" allows all of them.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", RequestIDHeader}),
		handlers.ExposedHeaders([]string{"Content-Disposition", RequestIDHeader}),
		handlers.MaxAge(12*60*60),
	)
}
