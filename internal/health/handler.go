package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/iurii2002/CoursesManager/internal/httputil"

	"github.com/go-chi/chi/v5"
)

// Pinger is satisfied by *bun.DB and *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Checker reports whether a connected dependency is usable.
type Checker interface {
	HealthCheck() error
}

type Handler struct {
	db     Pinger
	checks map[string]Checker
}

func NewHandler(db Pinger) *Handler {
	return &Handler{
		db:     db,
		checks: make(map[string]Checker),
	}
}

// AddCheck makes readiness depend on c as well as the database.
func (h *Handler) AddCheck(name string, c Checker) {
	h.checks[name] = c
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
}

type HealthResponse struct {
	Status string `json:"status"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			httputil.RespondWithError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := h.checks[name].HealthCheck(); err != nil {
			httputil.RespondWithError(w, http.StatusServiceUnavailable, name+" unavailable")
			return
		}
	}
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
}
