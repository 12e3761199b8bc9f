package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadportal/internal/application/trigger"
	"leadportal/internal/domain/notification"
	"leadportal/internal/domain/portal"
	"leadportal/internal/domain/revision"
)

func newRevisionFixture(t *testing.T) (*RevisionUsecase, *memRevisions, *memAssets, *memClients, *memNotifications) {
	t.Helper()
	c, err := portal.NewClientRecord("c1", "Acme", portal.VariantContract)
	require.NoError(t, err)
	clients := newMemClients(c)
	revisions := &memRevisions{}
	assets := newMemAssets()
	notes := &memNotifications{}
	rules := trigger.Rules{AdminBaseURL: "https://admin.example.com"}
	disp := &trigger.Dispatcher{Notifications: notes}
	uc := NewRevisionUsecase(revisions, assets, clients, rules, disp)
	uc.now = func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) }
	return uc, revisions, assets, clients, notes
}

func TestSubmitUploadsAndFlagsClient(t *testing.T) {
	uc, revisions, assets, clients, notes := newRevisionFixture(t)

	req, err := uc.Submit(context.Background(), "c1", "hero image is blurry", []RevisionUpload{
		{FileName: "hero.png", ContentType: "image/png", Data: []byte("png-bytes")},
		{FileName: "logo.svg", ContentType: "image/svg+xml", Data: []byte("<svg/>")},
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", req.ID)
	assert.Equal(t, "pending", req.Status)
	require.Len(t, req.Assets, 2)
	assert.Equal(t, "hero.png", req.Assets[0].FileName)
	assert.Contains(t, req.Assets[0].ObjectPath, "revisions/c1/")

	assert.Len(t, assets.objects, 2)
	assert.True(t, clients.byID["c1"].HasPendingRevision)
	require.Len(t, revisions.requests, 1)
	require.Len(t, notes.records, 1)
	assert.Equal(t, notification.TypeRevisionRequested, notes.records[0].Type)
}

func TestSubmitWithoutFiles(t *testing.T) {
	uc, revisions, _, clients, _ := newRevisionFixture(t)

	req, err := uc.Submit(context.Background(), "c1", "copy tweaks only", nil)
	require.NoError(t, err)
	assert.Empty(t, req.Assets)
	assert.Len(t, revisions.requests, 1)
	assert.True(t, clients.byID["c1"].HasPendingRevision)
}

func TestSubmitEmptyNotesRejected(t *testing.T) {
	uc, revisions, assets, _, _ := newRevisionFixture(t)

	_, err := uc.Submit(context.Background(), "c1", "   ", nil)
	assert.ErrorIs(t, err, revision.ErrEmptyNotes)
	assert.Empty(t, revisions.requests)
	assert.Empty(t, assets.objects)
}

func TestSubmitCreateFailureCleansUpUploads(t *testing.T) {
	uc, _, assets, clients, notes := newRevisionFixture(t)
	uc.revisions.(*memRevisions).createErr = errors.New("firestore unavailable")

	_, err := uc.Submit(context.Background(), "c1", "fix the footer", []RevisionUpload{
		{FileName: "footer.png", ContentType: "image/png", Data: []byte("bytes")},
	})
	require.Error(t, err)
	assert.Empty(t, assets.objects)
	assert.Len(t, assets.deleted, 1)
	assert.False(t, clients.byID["c1"].HasPendingRevision)
	assert.Empty(t, notes.records)
}

func TestSubmitStripsDirectoryFromFileName(t *testing.T) {
	uc, _, _, _, _ := newRevisionFixture(t)

	req, err := uc.Submit(context.Background(), "c1", "replace banner", []RevisionUpload{
		{FileName: "../../etc/banner.png", ContentType: "image/png", Data: []byte("bytes")},
	})
	require.NoError(t, err)
	assert.Equal(t, "banner.png", req.Assets[0].FileName)
	assert.NotContains(t, req.Assets[0].ObjectPath, "..")
}

func TestResolveClearsPendingFlag(t *testing.T) {
	uc, _, _, clients, _ := newRevisionFixture(t)

	_, err := uc.Submit(context.Background(), "c1", "swap testimonial", nil)
	require.NoError(t, err)
	require.True(t, clients.byID["c1"].HasPendingRevision)

	require.NoError(t, uc.Resolve(context.Background(), "c1"))
	assert.False(t, clients.byID["c1"].HasPendingRevision)
}
