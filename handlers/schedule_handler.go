package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dosada05/championship-system/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ScheduleHandler struct {
	scheduleService services.ScheduleService
}

func NewScheduleHandler(ss services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: ss}
}

// Preview обрабатывает POST /api/championships/{championshipID}/schedule/preview.
// Nothing is stored; the response carries the fingerprint Confirm expects.
func (h *ScheduleHandler) Preview(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	championshipID, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	preview, err := h.scheduleService.Preview(r.Context(), organizerID, championshipID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"preview": preview}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Confirm обрабатывает POST /api/championships/{championshipID}/schedule
func (h *ScheduleHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	championshipID, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Fingerprint string `json:"fingerprint"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.scheduleService.Confirm(r.Context(), organizerID, championshipID, input.Fingerprint)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"schedule": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Export обрабатывает GET /api/championships/{championshipID}/schedule.xlsx
func (h *ScheduleHandler) Export(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	championshipID, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.scheduleService.Export(r.Context(), organizerID, championshipID, &buf); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="championship-%d-schedule.xlsx"`, championshipID))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
