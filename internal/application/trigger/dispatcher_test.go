package trigger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadportal/internal/domain/audit"
	"leadportal/internal/domain/common"
	"leadportal/internal/domain/deal"
	"leadportal/internal/domain/notification"
	"leadportal/internal/domain/scorecard"
)

type fakeScorecard struct {
	calls []string
	err   error
}

func (f *fakeScorecard) Increment(_ context.Context, repID, weekID, counter string) error {
	f.calls = append(f.calls, repID+"/"+weekID+"/"+counter)
	return f.err
}

func (f *fakeScorecard) Get(context.Context, string, string) (scorecard.Entry, error) {
	return scorecard.Entry{}, scorecard.ErrNotFound
}

func (f *fakeScorecard) ListWeek(context.Context, string) ([]scorecard.Entry, error) {
	return nil, nil
}

type fakeAudit struct {
	entries []audit.Entry
}

func (f *fakeAudit) Append(_ context.Context, e audit.Entry) (string, error) {
	f.entries = append(f.entries, e)
	return "a1", nil
}

type fakeNotifications struct {
	records []notification.Record
}

func (f *fakeNotifications) Create(_ context.Context, r notification.Record) (string, error) {
	f.records = append(f.records, r)
	return "n1", nil
}

func (f *fakeNotifications) UnreadCount(context.Context, string, notification.RecipientType) (int, error) {
	return 0, nil
}

func (f *fakeNotifications) Watch(context.Context, string, notification.RecipientType, int, func([]notification.Record)) (common.Subscription, error) {
	return common.SubscriptionFunc(func() {}), nil
}

func (f *fakeNotifications) MarkRead(context.Context, []string) error { return nil }

type fakeDeals struct {
	created []deal.Deal
}

func (f *fakeDeals) GetByID(context.Context, string) (deal.Deal, error) {
	return deal.Deal{}, deal.ErrNotFound
}

func (f *fakeDeals) Create(_ context.Context, d deal.Deal) (string, error) {
	f.created = append(f.created, d)
	return "d1", nil
}

func (f *fakeDeals) Save(context.Context, deal.Deal) error                { return nil }
func (f *fakeDeals) SetClientPortalID(context.Context, string, string) error { return nil }
func (f *fakeDeals) ListByRep(context.Context, string) ([]deal.Deal, error)  { return nil, nil }

type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, _ string) error {
	f.sent = append(f.sent, to+": "+subject)
	return f.err
}

func TestDispatchExecutesEveryCommand(t *testing.T) {
	sc := &fakeScorecard{}
	primary := &fakeAudit{}
	mirror := &fakeAudit{}
	notes := &fakeNotifications{}
	deals := &fakeDeals{}
	mail := &fakeMailer{}

	d := &Dispatcher{Scorecard: sc, Audit: primary, AuditMirror: mirror, Notifications: notes, Deals: deals, Mailer: mail}

	rec, err := notification.New(notification.TypeQuoteSubmitted, AdminRecipientID, notification.RecipientAdmin, "new quote")
	require.NoError(t, err)

	d.Dispatch(context.Background(), []Command{
		IncrementScorecard{RepID: "rep-1", WeekID: "2026-W36", Counter: "dealsLive"},
		AppendAudit{Entry: audit.Entry{DealID: "d1", ChangedBy: "system", Changes: map[string]audit.FieldChange{"mrr": {From: 1.0, To: 2.0}}}},
		CreateNotification{Record: rec},
		SendEmail{To: "ops@example.com", Subject: "hello", Body: "world"},
		CreateDeal{Deal: deal.Deal{CompanyName: "Acme", Stage: deal.StageLead}},
	})

	assert.Equal(t, []string{"rep-1/2026-W36/dealsLive"}, sc.calls)
	assert.Len(t, primary.entries, 1)
	assert.Len(t, mirror.entries, 1)
	assert.Len(t, notes.records, 1)
	assert.Equal(t, []string{"ops@example.com: hello"}, mail.sent)
	assert.Len(t, deals.created, 1)
}

func TestDispatchFailureDoesNotStopRemaining(t *testing.T) {
	sc := &fakeScorecard{err: errors.New("unavailable")}
	mail := &fakeMailer{}

	d := &Dispatcher{Scorecard: sc, Mailer: mail}

	d.Dispatch(context.Background(), []Command{
		IncrementScorecard{RepID: "rep-1", WeekID: "2026-W36", Counter: "dealsLive"},
		SendEmail{To: "ops@example.com", Subject: "still sent", Body: "body"},
	})

	assert.Len(t, sc.calls, 1)
	assert.Equal(t, []string{"ops@example.com: still sent"}, mail.sent)
}

func TestDispatchNilPortsAreSkipped(t *testing.T) {
	d := &Dispatcher{}
	d.Dispatch(context.Background(), []Command{
		IncrementScorecard{},
		CreateNotification{},
		SendEmail{},
		CreateDeal{},
	})
}
