package events

// StatusEvent is the outbound event reporting what happened to a decision.
// Every failure path in the settlement subsystem ends in one of these plus
// a log line; nothing is silently dropped.
type StatusEvent struct {
	Status       string `json:"status"`
	VedtakID     string `json:"vedtakId,omitempty"`
	BehandlingID string `json:"behandlingId,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

const (
	StatusEventSent                = "SENT"
	StatusEventApproved            = "APPROVED"
	StatusEventApprovedWithWarning = "APPROVED_WITH_WARNING"
	StatusEventRejected            = "REJECTED"
	StatusEventFailed              = "FAILED"
)
