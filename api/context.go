package api

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpupo63/portfolio-site-backend/services"
)

// requestInfo copies the chi request id and client address into the context for the action log.
// It must run after middleware.RequestID and middleware.RealIP.
func requestInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := services.WithRequestInfo(r.Context(), services.RequestInfo{
			RequestID:  middleware.GetReqID(r.Context()),
			RemoteAddr: r.RemoteAddr,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
