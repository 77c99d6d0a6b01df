// Package api wires the HTTP surface: one generic schema-driven handler per
// resource kind, JWT auth middleware with role gating, and the login and
// health endpoints.
package api

import (
	"net/http"

	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/resource"
)

// NewRouter builds the full route table. Reads need any authenticated role,
// inventory writes need staff, user management needs admin. Health and login
// stay public.
func NewRouter(conn *db.Conn, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	health := &HealthHandler{Conn: conn}
	login := &AuthHandler{Conn: conn, JWTSecret: jwtSecret}

	mux.HandleFunc("GET /health", health.Get)
	mux.HandleFunc("POST /api/auth/login", login.Login)

	protected := http.NewServeMux()
	staff := RequireRole(model.RoleStaff)
	admin := RequireRole(model.RoleAdmin)

	items := &ResourceHandler{Conn: conn, Schema: resource.Item}
	protected.HandleFunc("GET /api/items", items.List)
	protected.Handle("POST /api/items", staff(http.HandlerFunc(items.Create)))
	protected.Handle("PUT /api/items/{id}", staff(http.HandlerFunc(items.Update)))
	protected.Handle("DELETE /api/items/{id}", staff(http.HandlerFunc(items.Delete)))

	locations := &ResourceHandler{Conn: conn, Schema: resource.Location}
	protected.HandleFunc("GET /api/locations", locations.List)
	protected.Handle("POST /api/locations", staff(http.HandlerFunc(locations.Create)))
	protected.Handle("PUT /api/locations/{id}", staff(http.HandlerFunc(locations.Update)))
	protected.Handle("DELETE /api/locations/{id}", staff(http.HandlerFunc(locations.Delete)))

	lots := NewLotsHandler(conn)
	protected.HandleFunc("GET /api/lots", lots.List)
	protected.Handle("PUT /api/lots", staff(http.HandlerFunc(lots.Upsert)))
	protected.Handle("DELETE /api/lots/{id}", staff(http.HandlerFunc(lots.Delete)))

	transactions := &ResourceHandler{Conn: conn, Schema: resource.Transaction}
	protected.HandleFunc("GET /api/transactions", transactions.List)
	protected.Handle("POST /api/transactions", staff(http.HandlerFunc(transactions.Create)))

	audits := &ResourceHandler{Conn: conn, Schema: resource.Audit}
	protected.HandleFunc("GET /api/audits", audits.List)
	protected.Handle("POST /api/audits", staff(http.HandlerFunc(audits.Create)))

	users := &ResourceHandler{Conn: conn, Schema: resource.User}
	protected.Handle("GET /api/users", admin(http.HandlerFunc(users.List)))
	protected.Handle("POST /api/users", admin(http.HandlerFunc(users.Create)))
	protected.Handle("PUT /api/users/{id}", admin(http.HandlerFunc(users.Update)))
	protected.Handle("DELETE /api/users/{id}", admin(http.HandlerFunc(users.Delete)))

	mux.Handle("/api/", AuthMiddleware(jwtSecret)(protected))

	return LoggingMiddleware(mux)
}
