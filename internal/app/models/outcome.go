package models

type SettleOutcomeKind string

const (
	// SettleOutcomeDispatched: the instruction was persisted with status
	// SENT and handed to the dispatcher.
	SettleOutcomeDispatched SettleOutcomeKind = "DISPATCHED"
	// SettleOutcomeAlreadyExists: an instruction for this vedtakId already
	// exists; nothing was written or dispatched.
	SettleOutcomeAlreadyExists SettleOutcomeKind = "ALREADY_EXISTS"
	// SettleOutcomeLinesAlreadyExist: one or more proposed line ids are
	// already stored; nothing was written or dispatched.
	SettleOutcomeLinesAlreadyExist SettleOutcomeKind = "LINES_ALREADY_EXIST"
)

// SettleOutcome is the result of settling one decision. Callers switch on
// Kind and must handle every value.
type SettleOutcome struct {
	Kind        SettleOutcomeKind
	Instruction *PaymentInstruction

	// ConflictingLineIDs is set for SettleOutcomeLinesAlreadyExist.
	ConflictingLineIDs []string

	// DispatchFailed is set on SettleOutcomeDispatched when the instruction
	// was persisted but the outbound publish failed. The stuck-instruction
	// sweep retries the dispatch; the write is never rolled back.
	DispatchFailed bool
}
