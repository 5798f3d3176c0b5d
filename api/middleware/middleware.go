package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// RequestIDHeader describes the response header carrying the identifier assigned to each request.
const RequestIDHeader = "X-Request-Id"

func setHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Set default headers
		w.Header().Set("Content-Type", "application/json")

		// Handle CORS headers
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		next.ServeHTTP(w, r)
	})
}

func setRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Assign each request a unique identifier so log lines for one request can be correlated.
		w.Header().Set(RequestIDHeader, uuid.New().String())

		next.ServeHTTP(w, r)
	})
}

func AttachMiddleware(router *mux.Router) {
	router.Use(setHeaders)
	router.Use(setRequestID)
}
