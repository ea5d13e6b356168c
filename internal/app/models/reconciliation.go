package models

import "time"

type ReconciliationKind string

const (
	ReconciliationKindInterface   ReconciliationKind = "INTERFACE"
	ReconciliationKindConsistency ReconciliationKind = "CONSISTENCY"
)

// ReconciliationRun is the append-only record of one transmitted
// START/DATA/AVSL sequence. It is written only after every message of the
// sequence was confirmed by the broker, so an absent record means the whole
// window is recomputed on the next tick.
type ReconciliationRun struct {
	ID          string             `bson:"_id,omitempty"`
	RunID       string             `bson:"runId"`
	Kind        ReconciliationKind `bson:"kind"`
	FraOgMed    time.Time          `bson:"fraOgMed"`
	TilOgMed    time.Time          `bson:"tilOgMed"`
	Payload     string             `bson:"payload"`
	RecordCount int                `bson:"recordCount"`
	Category    string             `bson:"category"`
	CreatedAt   time.Time          `bson:"createdAt"`
}
