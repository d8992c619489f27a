package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/Dosada05/championship-system/models"
	"github.com/Dosada05/championship-system/services"
)

type ChampionshipHandler struct {
	championshipService services.ChampionshipService
}

func NewChampionshipHandler(cs services.ChampionshipService) *ChampionshipHandler {
	return &ChampionshipHandler{championshipService: cs}
}

// List обрабатывает GET /api/championships
func (h *ChampionshipHandler) List(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	championships, err := h.championshipService.ListMine(r.Context(), organizerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"championships": championships}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Create обрабатывает POST /api/championships
func (h *ChampionshipHandler) Create(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var input services.ChampionshipInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	championship, err := h.championshipService.Create(r.Context(), organizerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"championship": championship}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ChampionshipHandler) Get(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	championship, err := h.championshipService.Get(r.Context(), organizerID, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"championship": championship}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ChampionshipHandler) Update(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ChampionshipInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	championship, err := h.championshipService.Update(r.Context(), organizerID, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"championship": championship}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ChampionshipHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Status models.ChampionshipStatus `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Status == "" {
		badRequestResponse(w, r, errors.New("status is required"))
		return
	}

	championship, err := h.championshipService.UpdateStatus(r.Context(), organizerID, id, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"championship": championship}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ChampionshipHandler) Delete(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.championshipService.Delete(r.Context(), organizerID, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChampionshipHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	h.uploadMedia(w, r, "logo", h.championshipService.UploadLogo)
}

func (h *ChampionshipHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	h.uploadMedia(w, r, "cover", h.championshipService.UploadCover)
}

type championshipUploader func(ctx context.Context, organizerID, championshipID int, file io.Reader, contentType string) (*models.Championship, error)

// uploadMedia обрабатывает multipart-загрузку логотипа или обложки.
func (h *ChampionshipHandler) uploadMedia(w http.ResponseWriter, r *http.Request, field string, upload championshipUploader) {
	organizerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, err := readUploadedFile(w, r, field, true)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	championship, err := upload(r.Context(), organizerID, id, file, file.contentType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"championship": championship}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ChampionshipHandler) Overview(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	overview, err := h.championshipService.Overview(r.Context(), organizerID, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"overview": overview}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
