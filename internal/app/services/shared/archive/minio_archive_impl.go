package archive

import (
	"bytes"
	"context"
	"oppdrag-service/internal/app/contracts"
	"oppdrag-service/internal/pkg/constvars"
	"oppdrag-service/internal/pkg/exceptions"

	"github.com/minio/minio-go/v7"
)

type minioArchive struct {
	minioClient *minio.Client
	bucketName  string
}

func NewMinioArchive(minioClient *minio.Client, bucketName string) contracts.SnapshotArchiveService {
	return &minioArchive{
		minioClient: minioClient,
		bucketName:  bucketName,
	}
}

func (m *minioArchive) ArchiveSnapshot(ctx context.Context, objectName string, payload []byte) error {
	_, err := m.minioClient.PutObject(
		ctx,
		m.bucketName,
		objectName,
		bytes.NewReader(payload),
		int64(len(payload)),
		minio.PutObjectOptions{
			ContentType: constvars.MIMEApplicationXML,
		},
	)
	if err != nil {
		return exceptions.ErrMinioCreateObject(err, m.bucketName)
	}
	return nil
}
