package utils

import (
	"encoding/base64"
	"encoding/binary"

	"github.com/google/uuid"
)

// GenerateRequestID returns a correlation id for an incoming HTTP request.
func GenerateRequestID() string {
	return uuid.New().String()
}

// GenerateAvstemmingID returns a fresh 22-character correlation id for a
// reconciliation run.
func GenerateAvstemmingID() string {
	return AvstemmingIDFromUUID(uuid.New())
}

// AvstemmingIDFromUUID derives the fixed-width external correlation id from
// a 128-bit value: both 64-bit halves are written big-endian into a 16-byte
// buffer, base64url-encoded without padding, truncated to 22 characters.
// The external system stores the id in a 22-character field, so the
// encoding must be bit-exact.
func AvstemmingIDFromUUID(u uuid.UUID) string {
	hi := binary.BigEndian.Uint64(u[0:8])
	lo := binary.BigEndian.Uint64(u[8:16])

	var buf [16]byte
	binary.BigEndian.PutUint64(buf[0:8], hi)
	binary.BigEndian.PutUint64(buf[8:16], lo)

	return base64.RawURLEncoding.EncodeToString(buf[:])[:22]
}
