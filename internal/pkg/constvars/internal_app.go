package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY ContextKey = "request_id"
)

const (
	MIMEApplicationJSON = "application/json"
	MIMEApplicationXML  = "application/xml"
	HeaderContentType   = "Content-Type"
	HeaderXRequestID    = "X-Request-ID"
)

const (
	ResponseUnknown = "unknown"
)

const (
	MongoCollectionInstructions       = "payment_instructions"
	MongoCollectionReconciliationRuns = "reconciliation_runs"
)
