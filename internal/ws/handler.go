package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"pv_potential/internal/evaluator"
	"pv_potential/internal/portfolio"
)

// MaxSweepSteps bounds the number of scenarios one sweep request may ask for.
const MaxSweepSteps = 500

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler manages WebSocket connections and routes messages to the evaluator.
type Handler struct {
	hub    *Hub
	engine *evaluator.Engine
	log    zerolog.Logger
}

func NewHandler(hub *Hub, engine *evaluator.Engine, log zerolog.Logger) *Handler {
	return &Handler{hub: hub, engine: engine, log: log.With().Str("component", "ws").Logger()}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := &Client{
		hub:  h.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.hub.Register(client)
	go client.writePump()

	h.sendSiteLoaded(client)

	h.readPump(r.Context(), client)
}

func (h *Handler) readPump(ctx context.Context, c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn().Err(err).Msg("WebSocket read error")
			}
			return
		}

		h.handleMessage(ctx, c, msg)
	}
}

func (h *Handler) handleMessage(ctx context.Context, c *Client, msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		h.reject(c, fmt.Errorf("invalid message: %w", err))
		return
	}

	switch env.Type {
	case TypeSiteAllocate:
		var p AllocatePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.reject(c, fmt.Errorf("invalid %s payload: %w", env.Type, err))
			return
		}
		// outcome is broadcast by the bridge
		_, _ = h.engine.Evaluate(p.PowerKWc)

	case TypeSiteSweep:
		var p SweepPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.reject(c, fmt.Errorf("invalid %s payload: %w", env.Type, err))
			return
		}
		powers, err := sweepPowers(p)
		if err != nil {
			h.reject(c, err)
			return
		}
		if _, err := h.engine.Sweep(ctx, powers); err != nil {
			// per-power failures are broadcast by the bridge
			return
		}
		h.sendSweepDone(c, powers)

	case TypeSetSalePrice:
		var p SalePricePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.reject(c, fmt.Errorf("invalid %s payload: %w", env.Type, err))
			return
		}
		if err := h.engine.SetSalePrice(p.Price); err != nil {
			h.reject(c, err)
			return
		}
		h.broadcastSiteLoaded()

	case TypePlantSet:
		var p PlantUpdatePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.reject(c, fmt.Errorf("invalid %s payload: %w", env.Type, err))
			return
		}
		if p.Reset {
			_ = h.engine.ResetPlant(p.Plant)
		} else {
			_ = h.engine.UpdatePlant(p.Plant, p.PowerKWc)
		}

	default:
		h.reject(c, fmt.Errorf("unknown message type: %s", env.Type))
	}
}

// sweepPowers expands a sweep request into its power steps, both ends
// included.
func sweepPowers(p SweepPayload) ([]float64, error) {
	if !(p.StepKWc > 0) || p.FromKWc < 0 || p.ToKWc < p.FromKWc || math.IsInf(p.ToKWc, 0) {
		return nil, fmt.Errorf("%w: sweep from %v to %v by %v kWc", portfolio.ErrInvalidInput, p.FromKWc, p.ToKWc, p.StepKWc)
	}
	n := int(math.Floor((p.ToKWc-p.FromKWc)/p.StepKWc+1e-9)) + 1
	if n > MaxSweepSteps {
		return nil, fmt.Errorf("%w: sweep of %d steps exceeds %d", portfolio.ErrInvalidInput, n, MaxSweepSteps)
	}
	powers := make([]float64, n)
	for i := range powers {
		powers[i] = p.FromKWc + float64(i)*p.StepKWc
	}
	return powers, nil
}

// reject answers a malformed request to its sender only.
func (h *Handler) reject(c *Client, err error) {
	h.log.Warn().Err(err).Msg("rejected message")
	msg, mErr := NewEnvelope(TypeSiteError, ErrorPayload{Error: err.Error()})
	if mErr != nil {
		return
	}
	c.queue(msg)
}

func (h *Handler) broadcastSiteLoaded() {
	msg, err := h.siteLoadedMessage()
	if err != nil {
		h.log.Error().Err(err).Msg("creating site:loaded message")
		return
	}
	h.hub.Broadcast(msg)
}

func (h *Handler) siteLoadedMessage() ([]byte, error) {
	return NewEnvelope(TypeSiteLoaded, SiteLoadedPayload{
		Site:      h.engine.Info(),
		Curve:     TimeRangeFromModel(h.engine.Curve().TimeRange()),
		SalePrice: h.engine.SalePrice(),
		Cache:     CacheFromStore(h.engine.Store(), h.engine.Site().ID()),
	})
}

// sendSweepDone answers a completed sweep with its scenarios read back from
// the store.
func (h *Handler) sendSweepDone(c *Client, powers []float64) {
	from, to := powers[0], powers[len(powers)-1]
	scenarios := h.engine.Store().ScenariosInRange(h.engine.Site().ID(), from, math.Nextafter(to, math.Inf(1)))
	msg, err := NewEnvelope(TypeSweepDone, SweepFromScenarios(from, to, scenarios))
	if err != nil {
		h.log.Error().Err(err).Msg("creating site:sweep_done message")
		return
	}
	c.queue(msg)
}

func (h *Handler) sendSiteLoaded(c *Client) {
	msg, err := h.siteLoadedMessage()
	if err != nil {
		h.log.Error().Err(err).Msg("creating site:loaded message")
		return
	}
	c.queue(msg)
}
