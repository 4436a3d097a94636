package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/GTDGit/procure_api/internal/cache"
	"github.com/GTDGit/procure_api/internal/eligibility"
	"github.com/GTDGit/procure_api/internal/models"
	"github.com/GTDGit/procure_api/internal/quote"
	"github.com/GTDGit/procure_api/internal/utils"
	"github.com/GTDGit/procure_api/pkg/webhookproxy"
)

func init() {
	utils.SetJWTSecret("test-secret")
}

type memVendors struct {
	byID map[string]*models.Vendor
}

func newMemVendors(vs ...models.Vendor) *memVendors {
	m := &memVendors{byID: map[string]*models.Vendor{}}
	for i := range vs {
		v := vs[i]
		m.byID[v.ID] = &v
	}
	return m
}

func (m *memVendors) Create(ctx context.Context, v *models.Vendor) error {
	cp := *v
	m.byID[v.ID] = &cp
	return nil
}

func (m *memVendors) GetByID(ctx context.Context, id string) (*models.Vendor, error) {
	v, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *v
	return &cp, nil
}

func (m *memVendors) List(ctx context.Context, filter models.VendorFilter) ([]models.Vendor, error) {
	out := []models.Vendor{}
	for _, v := range m.byID {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memVendors) ListByIDs(ctx context.Context, ids []string) ([]models.Vendor, error) {
	out := []models.Vendor{}
	for _, id := range ids {
		if v, ok := m.byID[id]; ok && v.IsActive {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (m *memVendors) Update(ctx context.Context, v *models.Vendor) error {
	if _, ok := m.byID[v.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *v
	m.byID[v.ID] = &cp
	return nil
}

func (m *memVendors) Deactivate(ctx context.Context, id string) error {
	v, ok := m.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	v.IsActive = false
	return nil
}

type memMaterialRequests struct {
	byID   map[string]*models.MaterialRequest
	getErr error
}

func newMemMaterialRequests(mrs ...models.MaterialRequest) *memMaterialRequests {
	m := &memMaterialRequests{byID: map[string]*models.MaterialRequest{}}
	for i := range mrs {
		mr := mrs[i]
		m.byID[mr.ID] = &mr
	}
	return m
}

func (m *memMaterialRequests) Create(ctx context.Context, mr *models.MaterialRequest) error {
	cp := *mr
	m.byID[mr.ID] = &cp
	return nil
}

func (m *memMaterialRequests) GetByID(ctx context.Context, id string) (*models.MaterialRequest, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	mr, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *mr
	return &cp, nil
}

func (m *memMaterialRequests) ReplaceItems(ctx context.Context, id string, items []models.MaterialRequestItem) error {
	mr, ok := m.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	if !mr.Status.Editable() {
		return utils.ErrMaterialRequestLocked
	}
	mr.Items = items
	return nil
}

func (m *memMaterialRequests) UpdateStatus(ctx context.Context, id string, status models.MaterialRequestStatus) error {
	mr, ok := m.byID[id]
	if !ok || !mr.Status.Editable() {
		return utils.ErrMaterialRequestLocked
	}
	mr.Status = status
	return nil
}

func (m *memMaterialRequests) List(ctx context.Context, limit, offset int) ([]models.MaterialRequest, int, error) {
	out := []models.MaterialRequest{}
	for _, mr := range m.byID {
		out = append(out, *mr)
	}
	return out, len(out), nil
}

type memQuotes struct {
	quotes  []models.VendorQuote
	vendors *memVendors
	listErr error
}

func (m *memQuotes) CreatePending(ctx context.Context, mrID string, vendorIDs []string) error {
	for _, id := range vendorIDs {
		if m.find(mrID, id) == nil {
			m.quotes = append(m.quotes, models.VendorQuote{ID: "q-" + id, MaterialRequestID: mrID, VendorID: id, Status: models.QuoteStatusPending})
		}
	}
	return nil
}

func (m *memQuotes) Submit(ctx context.Context, q *models.VendorQuote) error {
	q.Status = models.QuoteStatusReceived
	if existing := m.find(q.MaterialRequestID, q.VendorID); existing != nil {
		q.ID = existing.ID
		*existing = *q
		return nil
	}
	q.ID = "q-" + q.VendorID
	m.quotes = append(m.quotes, *q)
	return nil
}

func (m *memQuotes) ListByMaterialRequest(ctx context.Context, mrID string) ([]models.VendorQuote, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []models.VendorQuote{}
	for _, q := range m.quotes {
		if q.MaterialRequestID != mrID {
			continue
		}
		if m.vendors != nil {
			if v, ok := m.vendors.byID[q.VendorID]; ok {
				q.VendorName = v.Name
				q.VendorRating = v.Rating
			}
		}
		out = append(out, q)
	}
	return out, nil
}

func (m *memQuotes) find(mrID, vendorID string) *models.VendorQuote {
	for i := range m.quotes {
		if m.quotes[i].MaterialRequestID == mrID && m.quotes[i].VendorID == vendorID {
			return &m.quotes[i]
		}
	}
	return nil
}

type memSessions struct {
	byID map[string]*models.ProcurementSession
	// failUpdates makes the next n Update calls fail.
	failUpdates int
}

func newMemSessions() *memSessions {
	return &memSessions{byID: map[string]*models.ProcurementSession{}}
}

func (m *memSessions) Create(ctx context.Context, s *models.ProcurementSession) error {
	cp := *s
	m.byID[s.ID] = &cp
	return nil
}

func (m *memSessions) GetByID(ctx context.Context, id string) (*models.ProcurementSession, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (m *memSessions) Update(ctx context.Context, s *models.ProcurementSession) error {
	if m.failUpdates > 0 {
		m.failUpdates--
		return errors.New("connection reset")
	}
	cp := *s
	m.byID[s.ID] = &cp
	return nil
}

func (m *memSessions) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for id, s := range m.byID {
		if s.Expired(now) && s.State != models.SessionCompleted {
			delete(m.byID, id)
			n++
		}
	}
	return n, nil
}

type memWebhooks struct {
	rows []*models.WebhookDelivery
}

func (m *memWebhooks) Create(ctx context.Context, d *models.WebhookDelivery) error {
	d.ID = len(m.rows) + 1
	cp := *d
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memWebhooks) Update(ctx context.Context, d *models.WebhookDelivery) error {
	cp := *d
	m.rows[d.ID-1] = &cp
	return nil
}

func (m *memWebhooks) GetPending(ctx context.Context, maxAttempts, limit int) ([]models.WebhookDelivery, error) {
	out := []models.WebhookDelivery{}
	for _, d := range m.rows {
		if !d.IsDelivered && d.NextRetryAt != nil && d.Attempt < maxAttempts {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memWebhooks) List(ctx context.Context, limit, offset int) ([]models.WebhookDelivery, int, error) {
	out := []models.WebhookDelivery{}
	for _, d := range m.rows {
		out = append(out, *d)
	}
	return out, len(out), nil
}

type fakeSender struct {
	mu       sync.Mutex
	status   int
	err      error
	requests []webhookproxy.Request
}

func (f *fakeSender) Send(ctx context.Context, req webhookproxy.Request) (*webhookproxy.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &webhookproxy.Result{StatusCode: f.status, Body: "ok"}, nil
}

type recordingForwarder struct {
	events []models.WebhookEvent
	data   []json.RawMessage
}

func (f *recordingForwarder) Forward(ctx context.Context, event models.WebhookEvent, referenceID string, data json.RawMessage) (*models.WebhookDelivery, error) {
	f.events = append(f.events, event)
	f.data = append(f.data, data)
	return &models.WebhookDelivery{ID: len(f.events), Event: event, ReferenceID: referenceID, Payload: data, Attempt: 1, IsDelivered: true}, nil
}

type memComparisons struct {
	byID map[string]quote.Comparison
}

func newMemComparisons() *memComparisons {
	return &memComparisons{byID: map[string]quote.Comparison{}}
}

func (m *memComparisons) Set(ctx context.Context, cmp quote.Comparison) error {
	if cmp.Demo {
		return nil
	}
	m.byID[cmp.MaterialRequestID] = cmp
	return nil
}

func (m *memComparisons) Get(ctx context.Context, id string) (*quote.Comparison, error) {
	cmp, ok := m.byID[id]
	if !ok {
		return nil, cache.ErrMiss
	}
	return &cmp, nil
}

func (m *memComparisons) Invalidate(ctx context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

type recordingMailer struct {
	mu          sync.Mutex
	eligibility []string
	orders      []string
}

func (r *recordingMailer) EligibilityChecked(ctx context.Context, to, businessName string, res eligibility.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.eligibility = append(r.eligibility, to)
	return nil
}

func (r *recordingMailer) OrderPlaced(ctx context.Context, mr *models.MaterialRequest, vendor *models.Vendor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, mr.ReferenceNo)
	return nil
}
