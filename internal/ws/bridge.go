package ws

import (
	"github.com/rs/zerolog"

	"pv_potential/internal/evaluator"
)

// Bridge implements evaluator.Callback and broadcasts events to the WebSocket hub.
type Bridge struct {
	hub *Hub
	log zerolog.Logger
}

func NewBridge(hub *Hub, log zerolog.Logger) *Bridge {
	return &Bridge{hub: hub, log: log.With().Str("component", "bridge").Logger()}
}

func (b *Bridge) OnEvaluation(ev evaluator.Evaluation) {
	b.broadcast(TypeSiteResult, ResultFromEvaluation(ev))
}

func (b *Bridge) OnPlantUpdate(u evaluator.PlantUpdate) {
	b.broadcast(TypePlantUpdate, PlantUpdatePayload{Plant: u.Plant, PowerKWc: u.Power, LCOE: u.LCOE})
}

func (b *Bridge) OnError(power float64, err error) {
	b.broadcast(TypeSiteError, ErrorPayload{PowerKWc: power, Error: err.Error()})
}

func (b *Bridge) broadcast(msgType string, payload any) {
	msg, err := NewEnvelope(msgType, payload)
	if err != nil {
		b.log.Error().Err(err).Str("type", msgType).Msg("marshaling message")
		return
	}
	b.hub.Broadcast(msg)
}
