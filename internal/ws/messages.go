package ws

import (
	"encoding/json"

	"pv_potential/internal/evaluator"
	"pv_potential/internal/model"
	"pv_potential/internal/report"
	"pv_potential/internal/store"
)

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client -> Server messages

type AllocatePayload struct {
	PowerKWc float64 `json:"power_kwc"`
}

type SweepPayload struct {
	FromKWc float64 `json:"from_kwc"`
	ToKWc   float64 `json:"to_kwc"`
	StepKWc float64 `json:"step_kwc"`
}

type SalePricePayload struct {
	Price float64 `json:"price"`
}

type PlantUpdatePayload struct {
	Plant    string  `json:"plant"`
	PowerKWc float64 `json:"power_kwc"`
	// Reset restores the plant's full-capacity allocation; PowerKWc is ignored.
	Reset bool    `json:"reset,omitempty"`
	LCOE  float64 `json:"lcoe,omitempty"`
}

// Server -> Client messages

type TimeRangeInfo struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// CacheInfo describes the scenarios already evaluated for the site.
type CacheInfo struct {
	Scenarios int     `json:"scenarios"`
	FromKWc   float64 `json:"from_kwc"`
	ToKWc     float64 `json:"to_kwc"`
}

type SiteLoadedPayload struct {
	Site      store.SiteInfo `json:"site"`
	Curve     TimeRangeInfo  `json:"curve"`
	SalePrice float64        `json:"sale_price"`
	Cache     *CacheInfo     `json:"cache,omitempty"`
}

type ResultPayload struct {
	PowerKWc float64        `json:"power_kwc"`
	Cached   bool           `json:"cached"`
	Summary  report.Summary `json:"summary"`
}

type SweepPoint struct {
	PowerKWc      float64 `json:"power_kwc"`
	ProductionKWh float64 `json:"production_kwh"`
	LCOE          float64 `json:"lcoe"`
}

// SweepDonePayload lists the swept scenarios in ascending power.
type SweepDonePayload struct {
	FromKWc float64      `json:"from_kwc"`
	ToKWc   float64      `json:"to_kwc"`
	Points  []SweepPoint `json:"points"`
}

type ErrorPayload struct {
	PowerKWc float64 `json:"power_kwc"`
	Error    string  `json:"error"`
}

// Message type constants
const (
	// Client -> Server
	TypeSiteAllocate = "site:allocate"
	TypeSiteSweep    = "site:sweep"
	TypeSetSalePrice = "study:set_price"
	TypePlantSet     = "plant:set"

	// Server -> Client
	TypeSiteLoaded  = "site:loaded"
	TypeSiteResult  = "site:result"
	TypeSiteError   = "site:error"
	TypePlantUpdate = "plant:update"
	TypeSweepDone   = "site:sweep_done"
)

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

func ResultFromEvaluation(ev evaluator.Evaluation) ResultPayload {
	return ResultPayload{
		PowerKWc: ev.Power,
		Cached:   ev.Cached,
		Summary:  report.Summarize(ev.Result, ev.Study),
	}
}

func CacheFromStore(s *store.Store, siteID string) *CacheInfo {
	r, ok := s.PowerRange(siteID)
	if !ok {
		return nil
	}
	return &CacheInfo{Scenarios: s.ScenarioCount(siteID), FromKWc: r.Min, ToKWc: r.Max}
}

func SweepFromScenarios(from, to float64, scenarios []store.Scenario) SweepDonePayload {
	points := make([]SweepPoint, len(scenarios))
	for i, sc := range scenarios {
		points[i] = SweepPoint{
			PowerKWc:      sc.Power,
			ProductionKWh: sc.Result.TotalProduction,
			LCOE:          report.WeightedLCOE(sc.Result),
		}
	}
	return SweepDonePayload{FromKWc: from, ToKWc: to, Points: points}
}

func TimeRangeFromModel(tr model.TimeRange) TimeRangeInfo {
	return TimeRangeInfo{
		Start: tr.Start.Format("2006-01-02T15:04:05Z07:00"),
		End:   tr.End.Format("2006-01-02T15:04:05Z07:00"),
	}
}
