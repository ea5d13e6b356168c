package constvars

// Client-facing messages. These travel on the ops API and on outbound
// status events, so they never leak internals.
const (
	ErrClientSomethingWrongWithApplication = "Something went wrong with the application, please try again later"
	ErrClientCannotProcessRequest          = "Cannot process the request"
	ErrClientDuplicateInstruction          = "Payment instruction already exists"
)

// Developer-facing messages, wrapped into CustomError dev messages.
const (
	ErrDevCannotMarshalJSON         = "Failed to marshal JSON"
	ErrDevCannotUnmarshalJSON       = "Failed to unmarshal JSON"
	ErrDevValidationFailed          = "Validation failed"
	ErrDevMongoDBFailedToInsertDoc  = "MongoDB failed to insert document"
	ErrDevMongoDBFailedToFindDoc    = "MongoDB failed to find document"
	ErrDevMongoDBFailedToUpdateDoc  = "MongoDB failed to update document"
	ErrDevMongoDBDuplicateKey       = "MongoDB duplicate key"
	ErrDevMongoDBFailedCreateIndex  = "MongoDB failed to create index"
	ErrDevRedisFailedToSetData      = "Redis failed to set data"
	ErrDevRedisFailedToGetData      = "Redis failed to get data with key: %s"
	ErrDevRedisFailedToDeleteData   = "Redis failed to delete data"
	ErrDevRedisFailedToUnlock       = "Redis failed to release lock"
	ErrDevRabbitMQFailedToPublish   = "RabbitMQ failed to publish message to queue: %s"
	ErrDevRabbitMQFailedToConsume   = "RabbitMQ failed to start consumer for queue: %s"
	ErrDevOppdragEncodeFailed       = "Failed to encode oppdrag wire message"
	ErrDevKvitteringDecodeFailed    = "Failed to decode kvittering wire message"
	ErrDevAvstemmingEncodeFailed    = "Failed to encode avstemmingsdata wire message"
	ErrDevMinioFailedToCreateObject = "Minio failed to create object in bucket: %s"
	ErrDevServerDeadlineExceeded    = "Deadline exceeded while waiting for external system"
)
