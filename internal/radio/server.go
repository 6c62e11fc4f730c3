package radio

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"copresence/internal/domain"
)

// NewHandler serves air to Remote radios:
//
//	PUT    /adv/{addr}?service=&x=&y=   body is the raw payload
//	DELETE /adv/{addr}
//	GET    /scan/{addr}?service=&x=&y=  websocket stream of JSON frames
func NewHandler(air *Air, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	h := &handler{air: air, log: logger}
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /adv/{addr}", h.putAdvert)
	mux.HandleFunc("DELETE /adv/{addr}", h.deleteAdvert)
	mux.HandleFunc("GET /scan/{addr}", h.scan)
	return mux
}

var upgrader = websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024}

type handler struct {
	air *Air
	log *log.Logger
}

func placement(r *http.Request) (uuid.UUID, Point, error) {
	q := r.URL.Query()
	service, err := uuid.Parse(q.Get("service"))
	if err != nil {
		return uuid.Nil, Point{}, err
	}
	var at Point
	if v := q.Get("x"); v != "" {
		if at.X, err = strconv.ParseFloat(v, 64); err != nil {
			return uuid.Nil, Point{}, err
		}
	}
	if v := q.Get("y"); v != "" {
		if at.Y, err = strconv.ParseFloat(v, 64); err != nil {
			return uuid.Nil, Point{}, err
		}
	}
	return service, at, nil
}

func (h *handler) putAdvert(w http.ResponseWriter, r *http.Request) {
	addr := r.PathValue("addr")
	service, at, err := placement(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxPayload+1))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = h.air.Radio(addr, at).StartBroadcast(r.Context(), service, body)
	var ae *domain.AdvertiseError
	switch {
	case err == nil:
		h.log.Printf("adv %s at %s: % x", addr, at, body)
		w.WriteHeader(http.StatusNoContent)
	case errors.As(err, &ae) && ae.Code == domain.AdvertiseAlreadyStarted:
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &ae) && ae.Code == domain.AdvertiseDataTooLarge:
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *handler) deleteAdvert(w http.ResponseWriter, r *http.Request) {
	addr := r.PathValue("addr")
	if radio, ok := h.air.Lookup(addr); ok {
		_ = radio.StopBroadcast()
		h.log.Printf("adv %s stopped", addr)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) scan(w http.ResponseWriter, r *http.Request) {
	addr := r.PathValue("addr")
	service, at, err := placement(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if _, ok := err.(websocket.HandshakeError); ok {
		// Upgrade has already answered with 400.
		h.log.Printf("scan %s: %v", addr, err)
		return
	} else if err != nil {
		h.log.Printf("scan %s: upgrade: %v", addr, err)
		return
	}
	defer ws.Close()

	radio := h.air.Radio(addr, at)
	frames := make(chan domain.Frame, 64)
	if err := radio.StartScan(r.Context(), service, frames); err != nil {
		_ = ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()))
		return
	}
	defer func() { _ = radio.StopScan() }()
	h.log.Printf("scan %s at %s started", addr, at)

	// The client sends nothing; reading only notices it going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := ws.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case f := <-frames:
			if err := ws.WriteJSON(f); err != nil {
				h.log.Printf("scan %s: write: %v", addr, err)
				return
			}
		case <-gone:
			h.log.Printf("scan %s closed", addr)
			return
		}
	}
}
