// internal/application/usecase/revision_usecase.go
package usecase

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"leadportal/internal/application/trigger"
	"leadportal/internal/domain/portal"
	"leadportal/internal/domain/revision"
)

// RevisionUpload はフォームから受け取った 1 ファイル分です。
type RevisionUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// RevisionUsecase はクリエイティブ修正依頼の受付を扱います。
type RevisionUsecase struct {
	revisions revision.Repository
	assets    revision.AssetStore
	clients   portal.Repository

	rules      trigger.Rules
	dispatcher *trigger.Dispatcher

	now func() time.Time
}

// NewRevisionUsecase はユースケースを初期化します。
func NewRevisionUsecase(
	revisions revision.Repository,
	assets revision.AssetStore,
	clients portal.Repository,
	rules trigger.Rules,
	dispatcher *trigger.Dispatcher,
) *RevisionUsecase {
	return &RevisionUsecase{
		revisions:  revisions,
		assets:     assets,
		clients:    clients,
		rules:      rules,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// Submit は修正依頼を受け付けます。添付ファイルを blob storage
// （revisions/{clientId}/ 配下）へ先にアップロードし、参照込みで
// 依頼を保存してからクライアントの保留フラグを立てます。
// 依頼の保存に失敗したときはアップロード済みオブジェクトを片付けます。
func (uc *RevisionUsecase) Submit(ctx context.Context, clientID, notes string, uploads []RevisionUpload) (revision.Request, error) {
	c, err := uc.clients.GetByID(ctx, clientID)
	if err != nil {
		return revision.Request{}, err
	}
	if !c.Active {
		return revision.Request{}, portal.ErrInactive
	}

	now := uc.now()
	refs := make([]revision.AssetRef, 0, len(uploads))
	for _, up := range uploads {
		name := sanitizeFileName(up.FileName)
		if name == "" || len(up.Data) == 0 {
			uc.cleanupAssets(ctx, refs)
			return revision.Request{}, revision.ErrInvalidAsset
		}
		objectPath := fmt.Sprintf("revisions/%s/%d_%s", c.ID, now.UnixMilli(), name)
		ref, err := uc.assets.Put(ctx, objectPath, up.Data, up.ContentType)
		if err != nil {
			uc.cleanupAssets(ctx, refs)
			return revision.Request{}, fmt.Errorf("revision usecase: upload %s: %w", name, err)
		}
		ref.FileName = name
		refs = append(refs, ref)
	}

	req, err := revision.NewRequest(c.ID, c.ClientName, notes, refs)
	if err != nil {
		uc.cleanupAssets(ctx, refs)
		return revision.Request{}, err
	}
	req.CreatedAt = now

	id, err := uc.revisions.Create(ctx, req)
	if err != nil {
		uc.cleanupAssets(ctx, refs)
		return revision.Request{}, fmt.Errorf("revision usecase: create: %w", err)
	}
	req.ID = id

	if err := uc.clients.SetRevisionPending(ctx, c.ID, true); err != nil {
		// 依頼自体は保存済みなので戻さず、フラグずれだけ記録します。
		log.Printf("[revision] pending flag update failed: client=%s: %v", c.ID, err)
	}

	uc.dispatcher.Dispatch(ctx, uc.rules.OnRevisionRequested(req))
	return req, nil
}

// ListByClient returns the client's requests newest-first.
func (uc *RevisionUsecase) ListByClient(ctx context.Context, clientID string) ([]revision.Request, error) {
	return uc.revisions.ListByClient(ctx, clientID)
}

// Resolve は管理側が修正対応を終えたときに保留フラグを落とします。
func (uc *RevisionUsecase) Resolve(ctx context.Context, clientID string) error {
	return uc.clients.SetRevisionPending(ctx, clientID, false)
}

func (uc *RevisionUsecase) cleanupAssets(ctx context.Context, refs []revision.AssetRef) {
	for _, ref := range refs {
		if err := uc.assets.Delete(ctx, ref.ObjectPath); err != nil {
			log.Printf("[revision] orphan cleanup failed: %s: %v", ref.ObjectPath, err)
		}
	}
}

// sanitizeFileName は保存名をベース名のみに落とし、パス区切りを除きます。
func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
