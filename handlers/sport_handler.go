package handlers

import (
	"net/http"

	"github.com/Dosada05/championship-system/services"
)

type SportHandler struct {
	sportService services.SportService
}

func NewSportHandler(ss services.SportService) *SportHandler {
	return &SportHandler{
		sportService: ss,
	}
}

// Catalog обрабатывает GET /api/sports.
func (h *SportHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, h.sportService.Catalog(), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
