package constvars

const (
	LoggingRequestIDKey          = "request_id"
	LoggingVedtakIDKey           = "vedtak_id"
	LoggingBehandlingIDKey       = "behandling_id"
	LoggingSakIDKey              = "sak_id"
	LoggingStatusKey             = "status"
	LoggingSeverityKey           = "alvorlighetsgrad"
	LoggingQueueKey              = "queue"
	LoggingRunIDKey              = "run_id"
	LoggingRunKindKey            = "run_kind"
	LoggingRecordCountKey        = "record_count"
	LoggingWindowFromKey         = "fra_og_med"
	LoggingWindowToKey           = "til_og_med"
	LoggingRawPayloadKey         = "raw_payload"
	LoggingMethodKey             = "method"
	LoggingEndpointKey           = "endpoint"
	LoggingRemoteAddrKey         = "remote_addr"
	LoggingStatusCodeKey         = "status_code"
	LoggingDurationKey           = "duration"
	LoggingSuccessKey            = "success"
	LoggingRedisKey              = "redis_key"
	LoggingLockValueKey          = "lock_value"
	LoggingLockExpirationTimeKey = "lock_expiration"
	LoggingLockStoredValueKey    = "stored_value"
	LoggingLockExpectedValueKey  = "expected_value"
)
