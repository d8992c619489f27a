package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/Dosada05/championship-system/broadcast"
	"github.com/gorilla/websocket"
)

// championshipVisibility is satisfied by services.PublicService.
type championshipVisibility interface {
	CheckPublished(ctx context.Context, championshipID int) error
}

type WebSocketHandler struct {
	hub        *broadcast.Hub
	visibility championshipVisibility
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewWebSocketHandler accepts connections from allowedOrigins; "*" allows any origin.
func NewWebSocketHandler(hub *broadcast.Hub, visibility championshipVisibility, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:        hub,
		visibility: visibility,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || slices.Contains(allowedOrigins, "*") {
					return true
				}
				return slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// ServeWs подключает зрителя к комнате чемпионата: /ws/championships/{championshipID}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	championshipID, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	// Черновики не видны зрителям.
	if err := h.visibility.CheckPublished(r.Context(), championshipID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже отправил HTTP-ошибку клиенту.
		h.logger.WarnContext(r.Context(), "websocket upgrade failed",
			slog.Int("championship_id", championshipID),
			slog.Any("error", err))
		return
	}

	room := broadcast.ChampionshipRoom(championshipID)
	h.hub.Attach(conn, room)
	h.logger.InfoContext(r.Context(), "websocket client connected", slog.String("room", room))
}
