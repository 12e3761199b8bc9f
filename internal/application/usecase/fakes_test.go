package usecase

import (
	"context"
	"fmt"
	"strings"

	"leadportal/internal/domain/chat"
	"leadportal/internal/domain/common"
	"leadportal/internal/domain/deal"
	"leadportal/internal/domain/notification"
	"leadportal/internal/domain/portal"
	"leadportal/internal/domain/quote"
	"leadportal/internal/domain/rep"
	"leadportal/internal/domain/revision"
	"leadportal/internal/domain/scorecard"
)

// ----------------------------------------
// in-memory fakes shared by the usecase tests
// ----------------------------------------

type memClients struct {
	byID        map[string]portal.ClientRecord
	saveErr     error
	saveCalls   int
	resetCalls  int
	pendingSet  []bool
	accessFlags int
}

func newMemClients(records ...portal.ClientRecord) *memClients {
	m := &memClients{byID: map[string]portal.ClientRecord{}}
	for _, c := range records {
		m.byID[c.ID] = c
	}
	return m
}

func (m *memClients) GetByID(_ context.Context, id string) (portal.ClientRecord, error) {
	c, ok := m.byID[id]
	if !ok {
		return portal.ClientRecord{}, portal.ErrNotFound
	}
	return c, nil
}

func (m *memClients) Create(_ context.Context, c portal.ClientRecord) (string, error) {
	m.byID[c.ID] = c
	return c.ID, nil
}

func (m *memClients) SaveSteps(_ context.Context, id string, steps []bool) error {
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	c, ok := m.byID[id]
	if !ok {
		return portal.ErrNotFound
	}
	c.Steps = append([]bool(nil), steps...)
	m.byID[id] = c
	return nil
}

func (m *memClients) Reset(_ context.Context, id string, stepCount int) error {
	m.resetCalls++
	c, ok := m.byID[id]
	if !ok {
		return portal.ErrNotFound
	}
	c.Steps = make([]bool, stepCount)
	c.Links = portal.LinkSet{}
	c.HasPendingRevision = false
	c.HasUnreviewedWebsiteAccess = false
	m.byID[id] = c
	return nil
}

func (m *memClients) SetRevisionPending(_ context.Context, id string, pending bool) error {
	m.pendingSet = append(m.pendingSet, pending)
	c, ok := m.byID[id]
	if !ok {
		return portal.ErrNotFound
	}
	c.HasPendingRevision = pending
	m.byID[id] = c
	return nil
}

func (m *memClients) SetWebsiteAccessPending(_ context.Context, id string) error {
	m.accessFlags++
	c, ok := m.byID[id]
	if !ok {
		return portal.ErrNotFound
	}
	c.HasUnreviewedWebsiteAccess = true
	m.byID[id] = c
	return nil
}

type memChats struct {
	threads   map[string][]chat.Message
	summaries map[string]chat.Summary
	postErr   error
}

func newMemChats() *memChats {
	return &memChats{threads: map[string][]chat.Message{}, summaries: map[string]chat.Summary{}}
}

func (m *memChats) Post(_ context.Context, clientID, clientName string, msg chat.Message) error {
	if m.postErr != nil {
		return m.postErr
	}
	m.threads[clientID] = append(m.threads[clientID], msg)
	s := m.summaries[clientID]
	s.ClientID = clientID
	s.ClientName = clientName
	s.LastMessage = msg.Text
	switch msg.Sender {
	case chat.SenderClient:
		s.UnreadByAdmin++
		s.UnreadByClient = 0
	case chat.SenderAdmin:
		s.UnreadByClient++
		s.UnreadByAdmin = 0
	}
	m.summaries[clientID] = s
	return nil
}

func (m *memChats) MarkRead(_ context.Context, clientID string, reader chat.Sender) error {
	s := m.summaries[clientID]
	switch reader {
	case chat.SenderAdmin:
		s.UnreadByAdmin = 0
	case chat.SenderClient:
		s.UnreadByClient = 0
	}
	m.summaries[clientID] = s
	return nil
}

func (m *memChats) List(_ context.Context, clientID string) ([]chat.Message, error) {
	return m.threads[clientID], nil
}

func (m *memChats) GetSummary(_ context.Context, clientID string) (chat.Summary, error) {
	s, ok := m.summaries[clientID]
	if !ok {
		return chat.Summary{}, chat.ErrNotFound
	}
	return s, nil
}

func (m *memChats) WatchThread(_ context.Context, _ string, _ func([]chat.Message)) (common.Subscription, error) {
	return common.SubscriptionFunc(func() {}), nil
}

func (m *memChats) WatchSummary(_ context.Context, _ string, _ func(chat.Summary)) (common.Subscription, error) {
	return common.SubscriptionFunc(func() {}), nil
}

type memNotifications struct {
	records []notification.Record
}

func (m *memNotifications) Create(_ context.Context, r notification.Record) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	m.records = append(m.records, r)
	return fmt.Sprintf("n%d", len(m.records)), nil
}

func (m *memNotifications) UnreadCount(_ context.Context, recipientID string, rt notification.RecipientType) (int, error) {
	n := 0
	for _, r := range m.records {
		if !r.Read && r.RecipientID == recipientID && r.RecipientType == rt {
			n++
		}
	}
	return n, nil
}

func (m *memNotifications) Watch(_ context.Context, _ string, _ notification.RecipientType, _ int, _ func([]notification.Record)) (common.Subscription, error) {
	return common.SubscriptionFunc(func() {}), nil
}

func (m *memNotifications) MarkRead(_ context.Context, ids []string) error {
	for i := range m.records {
		for _, id := range ids {
			if fmt.Sprintf("n%d", i+1) == id {
				m.records[i].Read = true
			}
		}
	}
	return nil
}

type memQuotes struct {
	byID      map[string]quote.Quote
	drafts    int
	completed int
}

func newMemQuotes(quotes ...quote.Quote) *memQuotes {
	m := &memQuotes{byID: map[string]quote.Quote{}}
	for _, q := range quotes {
		m.byID[q.ID] = q
	}
	return m
}

func (m *memQuotes) GetByID(_ context.Context, id string) (quote.Quote, error) {
	q, ok := m.byID[id]
	if !ok {
		return quote.Quote{}, quote.ErrNotFound
	}
	return q, nil
}

func (m *memQuotes) Create(_ context.Context, q quote.Quote) error {
	m.byID[q.ID] = q
	return nil
}

func (m *memQuotes) SaveDraft(_ context.Context, id string, _ map[string]any, completionPercent int) error {
	m.drafts++
	q := m.byID[id]
	q.CompletionPercent = completionPercent
	m.byID[id] = q
	return nil
}

func (m *memQuotes) SetCompleted(_ context.Context, id string) error {
	m.completed++
	q := m.byID[id]
	q.Status = quote.StatusCompleted
	m.byID[id] = q
	return nil
}

type memDealsUC struct {
	byID    map[string]deal.Deal
	created []deal.Deal
	saved   []deal.Deal
	linked  map[string]string
}

func (m *memDealsUC) GetByID(_ context.Context, id string) (deal.Deal, error) {
	d, ok := m.byID[id]
	if !ok {
		return deal.Deal{}, deal.ErrNotFound
	}
	return d, nil
}

func (m *memDealsUC) Create(_ context.Context, d deal.Deal) (string, error) {
	id := fmt.Sprintf("d%d", len(m.created)+1)
	d.ID = id
	m.created = append(m.created, d)
	m.byID[id] = d
	return id, nil
}

func (m *memDealsUC) Save(_ context.Context, d deal.Deal) error {
	if _, ok := m.byID[d.ID]; !ok {
		return deal.ErrNotFound
	}
	m.byID[d.ID] = d
	m.saved = append(m.saved, d)
	return nil
}

func (m *memDealsUC) SetClientPortalID(_ context.Context, dealID, portalID string) error {
	d, ok := m.byID[dealID]
	if !ok {
		return deal.ErrNotFound
	}
	d.ClientPortalID = portalID
	m.byID[dealID] = d
	if m.linked == nil {
		m.linked = map[string]string{}
	}
	m.linked[dealID] = portalID
	return nil
}

func (m *memDealsUC) ListByRep(_ context.Context, repID string) ([]deal.Deal, error) {
	var out []deal.Deal
	for _, d := range m.byID {
		if d.AssignedTo == repID && !d.Archived {
			out = append(out, d)
		}
	}
	return out, nil
}

type memScorecards struct {
	counts map[string]int
}

func (m *memScorecards) Increment(_ context.Context, repID, weekID, counter string) error {
	if m.counts == nil {
		m.counts = map[string]int{}
	}
	m.counts[repID+"/"+weekID+"/"+counter]++
	return nil
}

func (m *memScorecards) Get(_ context.Context, repID, weekID string) (scorecard.Entry, error) {
	e := scorecard.Entry{RepID: repID, WeekID: weekID}
	e.DiscoveryScheduled = m.counts[repID+"/"+weekID+"/"+scorecard.CounterDiscoveryScheduled]
	e.DiscoveryCompleted = m.counts[repID+"/"+weekID+"/"+scorecard.CounterDiscoveryCompleted]
	e.DealsToOnboarding = m.counts[repID+"/"+weekID+"/"+scorecard.CounterDealsToOnboarding]
	e.DealsLive = m.counts[repID+"/"+weekID+"/"+scorecard.CounterDealsLive]
	return e, nil
}

func (m *memScorecards) ListWeek(ctx context.Context, weekID string) ([]scorecard.Entry, error) {
	seen := map[string]bool{}
	var out []scorecard.Entry
	for key := range m.counts {
		parts := strings.SplitN(key, "/", 3)
		if len(parts) != 3 || parts[1] != weekID || seen[parts[0]] {
			continue
		}
		seen[parts[0]] = true
		e, _ := m.Get(ctx, parts[0], weekID)
		out = append(out, e)
	}
	return out, nil
}

type memReps struct {
	reps []rep.SalesRep
}

func (m *memReps) GetByID(_ context.Context, id string) (rep.SalesRep, error) {
	for _, r := range m.reps {
		if r.ID == id {
			return r, nil
		}
	}
	return rep.SalesRep{}, rep.ErrNotFound
}

func (m *memReps) GetByFirebaseUID(_ context.Context, uid string) (rep.SalesRep, error) {
	for _, r := range m.reps {
		if r.FirebaseUID == uid {
			return r, nil
		}
	}
	return rep.SalesRep{}, rep.ErrNotFound
}

func (m *memReps) ListActive(_ context.Context) ([]rep.SalesRep, error) {
	var out []rep.SalesRep
	for _, r := range m.reps {
		if r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}

type memMailer struct {
	sent []string
}

func (m *memMailer) Send(_ context.Context, to, subject, _ string) error {
	m.sent = append(m.sent, to+": "+subject)
	return nil
}

type memRevisions struct {
	requests  []revision.Request
	createErr error
}

func (m *memRevisions) Create(_ context.Context, r revision.Request) (string, error) {
	if m.createErr != nil {
		return "", m.createErr
	}
	m.requests = append(m.requests, r)
	return fmt.Sprintf("r%d", len(m.requests)), nil
}

func (m *memRevisions) ListByClient(_ context.Context, clientID string) ([]revision.Request, error) {
	var out []revision.Request
	for _, r := range m.requests {
		if r.ClientID == clientID {
			out = append(out, r)
		}
	}
	return out, nil
}

type memAssets struct {
	objects map[string][]byte
	deleted []string
	putErr  error
}

func newMemAssets() *memAssets {
	return &memAssets{objects: map[string][]byte{}}
}

func (m *memAssets) Put(_ context.Context, objectPath string, data []byte, contentType string) (revision.AssetRef, error) {
	if m.putErr != nil {
		return revision.AssetRef{}, m.putErr
	}
	m.objects[objectPath] = data
	return revision.AssetRef{
		ObjectPath: objectPath,
		URL:        "https://storage.example.com/" + objectPath,
		FileSize:   int64(len(data)),
		MimeType:   contentType,
	}, nil
}

func (m *memAssets) Delete(_ context.Context, objectPath string) error {
	delete(m.objects, objectPath)
	m.deleted = append(m.deleted, objectPath)
	return nil
}
