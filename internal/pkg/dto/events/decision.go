package events

// DecisionEvent is the inbound "decision approved" event. Delivery is
// at-least-once; idempotency is enforced downstream on VedtakID.
type DecisionEvent struct {
	VedtakID     string         `json:"vedtakId" validate:"required"`
	SakID        string         `json:"sakId" validate:"required"`
	BehandlingID string         `json:"behandlingId" validate:"required"`
	DecisionType string         `json:"vedtakType" validate:"required,oneof=GRANT TERMINATE CHANGE"`
	Lines        []DecisionLine `json:"linjer" validate:"required,min=1,dive"`
}

type DecisionLine struct {
	LineID              string   `json:"linjeId" validate:"required"`
	FraOgMed            string   `json:"fraOgMed" validate:"required,datetime=2006-01"`
	TilOgMed            string   `json:"tilOgMed" validate:"required,datetime=2006-01"`
	Beloep              int64    `json:"beloep" validate:"required,gt=0"`
	Attestanter         []string `json:"attestanter" validate:"required,min=1"`
	UtbetalingsFrekvens string   `json:"utbetalingsfrekvens" validate:"required"`
	PreviousLineID      string   `json:"forrigeLinjeId,omitempty"`
}
