// internal/domain/revision/entity.go
package revision

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ========================================
// Errors
// ========================================

var (
	ErrEmptyNotes    = errors.New("revision: empty notes")
	ErrInvalidClient = errors.New("revision: invalid client id")
	ErrInvalidAsset  = errors.New("revision: invalid asset")
)

// ========================================
// Value Objects (blob storage reference)
// ========================================

// AssetRef はアップロード済みファイルへの参照です。実体は blob storage
// （revisions/{clientId}/{fileName}）にあり、ここには参照情報のみ持ちます。
type AssetRef struct {
	ObjectPath string
	URL        string
	FileName   string
	FileSize   int64
	MimeType   string
	UploadedAt time.Time
}

func (a AssetRef) Validate() error {
	if strings.TrimSpace(a.FileName) == "" || strings.TrimSpace(a.ObjectPath) == "" {
		return ErrInvalidAsset
	}
	if a.FileSize < 0 {
		return ErrInvalidAsset
	}
	return nil
}

// ========================================
// Entity (Firestore document: revisionRequests/{autoId})
// ========================================

// Request はクライアント発のクリエイティブ修正依頼です。
// 作成と同時に ClientRecord の hasPendingRevision が立ちます
// （落とすのは管理側でスコープ外）。
type Request struct {
	ID         string
	ClientID   string
	ClientName string
	Notes      string
	Assets     []AssetRef
	Status     string // "pending" on creation
	CreatedAt  time.Time
}

// NewRequest validates and builds a pending request.
func NewRequest(clientID, clientName, notes string, assets []AssetRef) (Request, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return Request{}, ErrInvalidClient
	}
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return Request{}, ErrEmptyNotes
	}
	for _, a := range assets {
		if err := a.Validate(); err != nil {
			return Request{}, err
		}
	}
	return Request{
		ClientID:   clientID,
		ClientName: strings.TrimSpace(clientName),
		Notes:      notes,
		Assets:     append([]AssetRef(nil), assets...),
		Status:     "pending",
	}, nil
}

// ========================================
// Ports
// ========================================

// Repository は修正依頼の永続化ポートです。
type Repository interface {
	Create(ctx context.Context, r Request) (string, error)
	ListByClient(ctx context.Context, clientID string) ([]Request, error)
}

// AssetStore は blob storage のアウトバウンドポートです。
type AssetStore interface {
	// Put uploads bytes to objectPath and returns the stored reference
	// including a download URL.
	Put(ctx context.Context, objectPath string, data []byte, contentType string) (AssetRef, error)
	Delete(ctx context.Context, objectPath string) error
}
