package contracts

import "context"

// SnapshotArchiveService persists reconciliation payloads to object storage
// for audit. Archiving is best effort and never blocks a run from counting
// as successful.
type SnapshotArchiveService interface {
	ArchiveSnapshot(ctx context.Context, objectName string, payload []byte) error
}
