package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/championship-system/services"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type SiteHandler struct {
	siteService services.SiteService
	db          Pinger
	logger      *slog.Logger
}

func NewSiteHandler(ss services.SiteService, db Pinger, logger *slog.Logger) *SiteHandler {
	return &SiteHandler{
		siteService: ss,
		db:          db,
		logger:      logger,
	}
}

// Info returns the plan catalog and the maintenance flag for the landing page.
func (h *SiteHandler) Info(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, h.siteService.Info(), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SiteHandler) Plans(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"plans": h.siteService.Plans()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SiteHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.WarnContext(ctx, "health check failed", slog.Any("error", err))
		errorResponse(w, r, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "ok"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
