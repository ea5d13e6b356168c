package models

import (
	"time"

	"oppdrag-service/internal/pkg/constvars"
)

type InstructionStatus string

const (
	InstructionStatusSent                InstructionStatus = "SENT"
	InstructionStatusApproved            InstructionStatus = "APPROVED"
	InstructionStatusApprovedWithWarning InstructionStatus = "APPROVED_WITH_WARNING"
	InstructionStatusRejected            InstructionStatus = "REJECTED"
	InstructionStatusFailed              InstructionStatus = "FAILED"
)

// IsTerminal reports whether the status can never change again. Only SENT
// instructions accept a kvittering.
func (s InstructionStatus) IsTerminal() bool {
	return s != InstructionStatusSent
}

// StatusForAlvorlighetsgrad maps the external severity code to the terminal
// status of the instruction. Unrecognized codes fail closed.
func StatusForAlvorlighetsgrad(alvorlighetsgrad string) InstructionStatus {
	switch alvorlighetsgrad {
	case constvars.AlvorlighetsgradOK:
		return InstructionStatusApproved
	case constvars.AlvorlighetsgradOKMedVarsel:
		return InstructionStatusApprovedWithWarning
	case constvars.AlvorlighetsgradAvvist:
		return InstructionStatusRejected
	default:
		return InstructionStatusFailed
	}
}

type DecisionType string

const (
	DecisionTypeGrant     DecisionType = "GRANT"
	DecisionTypeTerminate DecisionType = "TERMINATE"
	DecisionTypeChange    DecisionType = "CHANGE"
)

// PaymentInstruction is the internal record of "pay these amounts for these
// periods". At most one instruction exists per vedtakId; the status is only
// mutated by the confirmation listener and the record is never deleted.
type PaymentInstruction struct {
	ID           string            `bson:"_id,omitempty"`
	VedtakID     string            `bson:"vedtakId"`
	SakID        string            `bson:"sakId"`
	BehandlingID string            `bson:"behandlingId"`
	DecisionType DecisionType      `bson:"vedtakType"`
	Status       InstructionStatus `bson:"status"`
	Lines        []InstructionLine `bson:"lines"`
	Confirmation *Confirmation     `bson:"confirmation,omitempty"`
	CreatedAt    time.Time         `bson:"createdAt"`
	DispatchedAt *time.Time        `bson:"dispatchedAt,omitempty"`
}

// TotalBeloep sums the amounts of all lines.
func (p *PaymentInstruction) TotalBeloep() int64 {
	var total int64
	for _, line := range p.Lines {
		total += line.Beloep
	}
	return total
}

// InstructionLine covers one contiguous payment period. Lines are immutable
// once dispatched; corrections and terminations arrive as new lines that
// point back to the line they supersede, so the per-case history is a
// linked chain and no prior line is ever lost.
type InstructionLine struct {
	LineID              string   `bson:"lineId"`
	FraOgMed            string   `bson:"fraOgMed"`
	TilOgMed            string   `bson:"tilOgMed"`
	Beloep              int64    `bson:"beloep"`
	Attestanter         []string `bson:"attestanter"`
	UtbetalingsFrekvens string   `bson:"utbetalingsfrekvens"`
	PreviousLineID      string   `bson:"previousLineId,omitempty"`
}

// Confirmation is the asynchronous acknowledgment from the external payment
// system, correlated to its instruction by vedtakId.
type Confirmation struct {
	Alvorlighetsgrad string    `bson:"alvorlighetsgrad"`
	Feilkode         string    `bson:"feilkode,omitempty"`
	Beskrivelse      string    `bson:"beskrivelse,omitempty"`
	ReceivedAt       time.Time `bson:"receivedAt"`
}
