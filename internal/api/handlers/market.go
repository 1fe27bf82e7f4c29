package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/stonksapi/backend/internal/market"
	"github.com/stonksapi/backend/pkg/logger"
)

// MarketState is the snapshot pushed to both the REST endpoint and the
// websocket stream.
type MarketState struct {
	State string    `json:"state"` // OPEN or CLOSED
	AsOf  time.Time `json:"as_of"`
}

// MarketHandler exposes the market clock over REST and websocket.
type MarketHandler struct {
	clock    *market.Clock
	logger   *logger.Logger
	upgrader websocket.Upgrader

	pushEvery time.Duration
	now       func() time.Time
}

// NewMarketHandler creates a new market-state handler.
func NewMarketHandler(clock *market.Clock, log *logger.Logger) *MarketHandler {
	return &MarketHandler{
		clock:  clock,
		logger: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pushEvery: 30 * time.Second,
		now:       time.Now,
	}
}

func (h *MarketHandler) snapshot() MarketState {
	now := h.now()
	state := "CLOSED"
	if h.clock.IsOpen(now) {
		state = "OPEN"
	}
	return MarketState{State: state, AsOf: now.UTC()}
}

// State returns the current market state.
// GET /api/market/state
func (h *MarketHandler) State(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, "Market state retrieved", h.snapshot())
}

// Stream upgrades to a websocket and pushes the market state
// immediately, then on every tick until the client goes away.
// GET /api/market/stream
func (h *MarketHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.logger.WithField("remote", conn.RemoteAddr().String()).Debug("Market stream opened")

	// Reads are discarded; the read loop only notices disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pushEvery)
	defer ticker.Stop()

	if err := conn.WriteJSON(h.snapshot()); err != nil {
		return
	}

	for {
		select {
		case <-done:
			h.logger.Debug("Market stream closed by client")
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := conn.WriteJSON(h.snapshot()); err != nil {
				return
			}
		}
	}
}
