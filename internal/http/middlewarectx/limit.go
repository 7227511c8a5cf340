// Package middlewarectx содержит HTTP middleware планировщика обслуживания.
package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/glassrain/maintenance/internal/http/response"
)

// RateLimitMiddleware возвращает middleware, ограничивающее частоту запросов.
// Лимитер создаётся на каждый вызов конструктора, а не хранится в состоянии
// пакета, чтобы тесты могли поднимать независимые роутеры.
func RateLimitMiddleware(log *slog.Logger, rps rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rps, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Error("too many requests")
				w.WriteHeader(http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
