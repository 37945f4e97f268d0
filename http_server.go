package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"typerace/race"
	"typerace/transport"
)

type HTTPHandler struct {
	Hub         *transport.Hub
	Coordinator *race.Coordinator
}

func NewHTTPServer(cfg *Config, hub *transport.Hub, coordinator *race.Coordinator, router *race.Router) http.Handler {
	httpHandler := HTTPHandler{hub, coordinator}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET"},
		AllowCredentials: false,
	}))
	r.Use(middleware.RealIP)
	r.Use(httprate.Limit(cfg.RateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint)))
	r.Use(middleware.Heartbeat("/ping"))

	r.Get("/", greeting)
	r.Get("/ws", transport.ServeWebsocket(hub, router))
	r.Get("/rooms/{roomId}", httpHandler.getRoomSnapshot())
	r.Get("/rooms/{roomId}/events", httpHandler.getRoomEventStream())
	return r
}

func greeting(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Typing Test API"))
}

func (h HTTPHandler) getRoomSnapshot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := h.Coordinator.Snapshot(chi.URLParam(r, "roomId"))
		if err != nil {
			if errors.Is(err, race.ErrRoomNotFound) {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(snapshot)
	}
}

func (h HTTPHandler) getRoomEventStream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "HTTP Streaming not supported!", http.StatusBadRequest)
			return
		}
		roomID := chi.URLParam(r, "roomId")
		if _, err := h.Coordinator.Snapshot(roomID); err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		spectator := h.Hub.Register()
		defer h.Hub.Unregister(spectator.ID)
		h.Hub.JoinGroup(roomID, spectator.ID)

		receiverSSE := transport.NewReceiverSSE(w, flusher)
		logger := GetRoomIPLogger(r.RemoteAddr, roomID)
		// The room may have closed between the lookup and joining its group.
		snapshot, err := h.Coordinator.Snapshot(roomID)
		if err != nil {
			receiverSSE.SendRoomClosedMessage()
			return
		}
		receiverSSE.SendSnapshot(snapshot)
		logger.JoinedRoom()
	messageLoop:
		for {
			select {
			case frame, more := <-spectator.Frames():
				if !more {
					break messageLoop
				}
				receiverSSE.SendByteSlice(frame.Payload)
				if frame.Terminal {
					receiverSSE.SendRoomClosedMessage()
					break messageLoop
				}
			case <-r.Context().Done():
				break messageLoop
			}
		}
		logger.LeftRoom()
	}
}
