package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Dosada05/championship-system/services"
)

// RosterHandler serves a team's athletes and sponsors.
type RosterHandler struct {
	athleteService services.AthleteService
	sponsorService services.SponsorService
}

func NewRosterHandler(as services.AthleteService, ss services.SponsorService) *RosterHandler {
	return &RosterHandler{
		athleteService: as,
		sponsorService: ss,
	}
}

// --- Атлеты ---

func (h *RosterHandler) ListAthletes(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	athletes, err := h.athleteService.List(r.Context(), organizerID, teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"athletes": athletes}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RosterHandler) CreateAthlete(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.AthleteInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	athlete, err := h.athleteService.Create(r.Context(), organizerID, teamID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"athlete": athlete}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RosterHandler) GetAthlete(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	athleteID, err := getIDFromURL(r, "athleteID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	athlete, err := h.athleteService.Get(r.Context(), organizerID, athleteID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"athlete": athlete}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RosterHandler) UpdateAthlete(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	athleteID, err := getIDFromURL(r, "athleteID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.AthleteInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	athlete, err := h.athleteService.Update(r.Context(), organizerID, athleteID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"athlete": athlete}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RosterHandler) DeleteAthlete(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	athleteID, err := getIDFromURL(r, "athleteID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.athleteService.Delete(r.Context(), organizerID, athleteID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Спонсоры ---

func (h *RosterHandler) ListSponsors(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	sponsors, err := h.sponsorService.List(r.Context(), organizerID, teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"sponsors": sponsors}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateSponsor takes a multipart form with a "name" field and an optional "logo" file.
func (h *RosterHandler) CreateSponsor(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, err := readUploadedFile(w, r, "logo", false)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var (
		logo        io.Reader
		contentType string
	)
	if file != nil {
		defer file.Close()
		logo, contentType = file, file.contentType
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		badRequestResponse(w, r, errors.New("name is required"))
		return
	}

	sponsor, err := h.sponsorService.Create(r.Context(), organizerID, teamID, name, logo, contentType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"sponsor": sponsor}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RosterHandler) DeleteSponsor(w http.ResponseWriter, r *http.Request) {
	organizerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	sponsorID, err := getIDFromURL(r, "sponsorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.sponsorService.Delete(r.Context(), organizerID, sponsorID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
