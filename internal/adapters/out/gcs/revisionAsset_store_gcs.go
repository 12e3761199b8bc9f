// internal/adapters/out/gcs/revisionAsset_store_gcs.go
package gcs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"leadportal/internal/domain/revision"
)

// GCS-based implementation of revision.AssetStore.
//
// - 修正依頼の添付は revisions/{clientId}/{timestamp}_{fileName} に置く
// - URL は公開バケット前提のダウンロード URL を組み立てる
type RevisionAssetStoreGCS struct {
	Client *storage.Client
	Bucket string
}

const defaultRevisionBucket = "leadportal-revision-assets"

func NewRevisionAssetStoreGCS(client *storage.Client, bucket string) *RevisionAssetStoreGCS {
	b := strings.TrimSpace(bucket)
	if b == "" {
		b = defaultRevisionBucket
	}
	return &RevisionAssetStoreGCS{Client: client, Bucket: b}
}

// Compile-time check
var _ revision.AssetStore = (*RevisionAssetStoreGCS)(nil)

func (s *RevisionAssetStoreGCS) bucket() string {
	b := strings.TrimSpace(s.Bucket)
	if b == "" {
		return defaultRevisionBucket
	}
	return b
}

// Put uploads the bytes and returns the stored reference.
func (s *RevisionAssetStoreGCS) Put(ctx context.Context, objectPath string, data []byte, contentType string) (revision.AssetRef, error) {
	if s.Client == nil {
		return revision.AssetRef{}, errors.New("RevisionAssetStoreGCS: nil storage client")
	}
	objectPath = strings.TrimLeft(strings.TrimSpace(objectPath), "/")
	if objectPath == "" || len(data) == 0 {
		return revision.AssetRef{}, revision.ErrInvalidAsset
	}

	bucket := s.bucket()
	w := s.Client.Bucket(bucket).Object(objectPath).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return revision.AssetRef{}, fmt.Errorf("gcs write %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return revision.AssetRef{}, fmt.Errorf("gcs close %s: %w", objectPath, err)
	}

	return revision.AssetRef{
		ObjectPath: objectPath,
		URL:        publicObjectURL(bucket, objectPath),
		FileName:   path.Base(objectPath),
		FileSize:   int64(len(data)),
		MimeType:   contentType,
		UploadedAt: time.Now().UTC(),
	}, nil
}

// Delete removes one object. Deleting a missing object is not an error.
func (s *RevisionAssetStoreGCS) Delete(ctx context.Context, objectPath string) error {
	if s.Client == nil {
		return errors.New("RevisionAssetStoreGCS: nil storage client")
	}
	objectPath = strings.TrimLeft(strings.TrimSpace(objectPath), "/")
	if objectPath == "" {
		return nil
	}

	err := s.Client.Bucket(s.bucket()).Object(objectPath).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete %s: %w", objectPath, err)
	}
	return nil
}

// publicObjectURL は https://storage.googleapis.com/{bucket}/{object} を返します。
func publicObjectURL(bucket, objectPath string) string {
	segs := strings.Split(objectPath, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return "https://storage.googleapis.com/" + bucket + "/" + strings.Join(segs, "/")
}
