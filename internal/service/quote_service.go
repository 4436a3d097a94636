package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/procure_api/internal/models"
	"github.com/GTDGit/procure_api/internal/quote"
	"github.com/GTDGit/procure_api/internal/sse"
	"github.com/GTDGit/procure_api/internal/utils"
)

// QuoteService requests, collects and compares vendor quotes.
type QuoteService struct {
	mrRepo     MaterialRequestStore
	vendorRepo VendorStore
	quoteRepo  QuoteStore
	cache      ComparisonStore
	events     sse.QuoteNotifier
	forwarder  Forwarder
	now        func() time.Time
}

// NewQuoteService constructs a QuoteService. cache and forwarder may be nil.
func NewQuoteService(
	mrRepo MaterialRequestStore,
	vendorRepo VendorStore,
	quoteRepo QuoteStore,
	cache ComparisonStore,
	events sse.QuoteNotifier,
	forwarder Forwarder,
) *QuoteService {
	if events == nil {
		events = &sse.NopNotifier{}
	}
	return &QuoteService{
		mrRepo:     mrRepo,
		vendorRepo: vendorRepo,
		quoteRepo:  quoteRepo,
		cache:      cache,
		events:     events,
		forwarder:  forwarder,
		now:        time.Now,
	}
}

// RequestQuotesRequest lists the vendors to ask for a quote.
type RequestQuotesRequest struct {
	VendorIDs []string `json:"vendorIds" binding:"required,min=1,dive,required"`
}

// QuoteRequestResult reports who was asked and how the webhook went.
type QuoteRequestResult struct {
	MaterialRequestID string                  `json:"materialRequestId"`
	Vendors           []models.Vendor         `json:"vendors"`
	Delivery          *models.WebhookDelivery `json:"delivery,omitempty"`
}

// QuoteItemInput prices one order line.
type QuoteItemInput struct {
	ItemID       string   `json:"itemId" binding:"required"`
	QuotedPrice  *float64 `json:"quotedPrice" binding:"required,gte=0"`
	DeliveryDays *int     `json:"deliveryDays" binding:"omitempty,gte=0"`
	Comments     *string  `json:"comments"`
}

// SubmitQuoteRequest is a vendor's full answer to a material request.
type SubmitQuoteRequest struct {
	VendorID string           `json:"vendorId" binding:"required"`
	Notes    *string          `json:"notes"`
	Items    []QuoteItemInput `json:"items" binding:"required,min=1,dive"`
}

// CompareOptions controls ranking and whether demonstration data is used.
type CompareOptions struct {
	Sort      quote.SortKey
	Direction quote.Direction
	Demo      bool
}

// RequestQuotes opens a pending quote for each vendor and notifies the
// third-party webhook so vendors can be contacted.
func (s *QuoteService) RequestQuotes(ctx context.Context, materialRequestID string, vendorIDs []string) (*QuoteRequestResult, error) {
	mr, err := s.mrRepo.GetByID(ctx, materialRequestID)
	if err != nil {
		return nil, mapNotFound(err, utils.ErrMaterialRequestNotFound)
	}
	if !mr.Status.Editable() {
		return nil, utils.ErrMaterialRequestLocked
	}

	ids := uniqueStrings(vendorIDs)
	if len(ids) == 0 {
		return nil, utils.ErrNoVendorsSelected
	}
	vendors, err := s.vendorRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(vendors) != len(ids) {
		return nil, utils.ErrVendorNotFound
	}

	if err := s.quoteRepo.CreatePending(ctx, mr.ID, ids); err != nil {
		return nil, fmt.Errorf("create pending quotes: %w", err)
	}

	s.events.NotifyQuoteRequested(mr, ids)

	res := &QuoteRequestResult{MaterialRequestID: mr.ID, Vendors: vendors}
	res.Delivery = s.forward(ctx, models.WebhookQuoteRequested, mr.ReferenceNo, map[string]interface{}{
		"materialRequest": mr,
		"vendors":         vendors,
	})

	log.Info().
		Str("material_request_id", mr.ID).
		Int("vendors", len(ids)).
		Msg("Quotes requested")
	return res, nil
}

// SubmitQuote records a vendor's prices for a material request.
func (s *QuoteService) SubmitQuote(ctx context.Context, materialRequestID string, req *SubmitQuoteRequest) (*models.VendorQuote, error) {
	mr, err := s.mrRepo.GetByID(ctx, materialRequestID)
	if err != nil {
		return nil, mapNotFound(err, utils.ErrMaterialRequestNotFound)
	}
	if !mr.Status.Editable() {
		return nil, utils.ErrMaterialRequestLocked
	}

	vendor, err := s.vendorRepo.GetByID(ctx, req.VendorID)
	if err != nil {
		return nil, mapNotFound(err, utils.ErrVendorNotFound)
	}
	if !vendor.IsActive {
		return nil, utils.ErrVendorNotFound
	}

	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", utils.ErrInvalidQuote)
	}
	items := make([]models.VendorQuoteItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.ItemID == "" || it.QuotedPrice == nil {
			return nil, fmt.Errorf("%w: itemId and quotedPrice are required", utils.ErrInvalidQuote)
		}
		if p := *it.QuotedPrice; p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("%w: quotedPrice must be zero or positive", utils.ErrInvalidQuote)
		}
		if it.DeliveryDays != nil && *it.DeliveryDays < 0 {
			return nil, fmt.Errorf("%w: deliveryDays must be zero or positive", utils.ErrInvalidQuote)
		}
		items = append(items, models.VendorQuoteItem{
			ItemID:       it.ItemID,
			QuotedPrice:  *it.QuotedPrice,
			DeliveryDays: it.DeliveryDays,
			Comments:     it.Comments,
		})
	}

	q := &models.VendorQuote{
		MaterialRequestID:    mr.ID,
		VendorID:             vendor.ID,
		Notes:                req.Notes,
		VendorName:           vendor.Name,
		VendorLocation:       vendor.Location,
		VendorSpecialization: vendor.Specialization,
		VendorRating:         vendor.Rating,
		Items:                items,
	}
	if err := s.quoteRepo.Submit(ctx, q); err != nil {
		return nil, fmt.Errorf("submit quote: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, mr.ID); err != nil {
			log.Warn().Err(err).Str("material_request_id", mr.ID).Msg("failed to invalidate comparison cache")
		}
	}

	total := quote.Aggregate(mr.Items, []models.VendorQuote{*q})[0].TotalAmount
	s.events.NotifyQuoteReceived(q, total)

	log.Info().
		Str("material_request_id", mr.ID).
		Str("vendor_id", vendor.ID).
		Float64("total_amount", total).
		Msg("Quote received")
	return q, nil
}

// ListQuotes returns the raw quotes on a material request.
func (s *QuoteService) ListQuotes(ctx context.Context, materialRequestID string) ([]models.VendorQuote, error) {
	if _, err := s.mrRepo.GetByID(ctx, materialRequestID); err != nil {
		return nil, mapNotFound(err, utils.ErrMaterialRequestNotFound)
	}
	return s.quoteRepo.ListByMaterialRequest(ctx, materialRequestID)
}

// Compare builds the ranked comparison for a material request. Any failure to
// load the order or its quotes is reported as ErrQuotesUnavailable; callers
// may then offer LastComparison. Demo data is used only when opts.Demo is set
// and the result is flagged accordingly.
func (s *QuoteService) Compare(ctx context.Context, materialRequestID string, opts CompareOptions) (*quote.Comparison, error) {
	if opts.Sort == "" {
		opts.Sort = quote.SortByPrice
	}
	if opts.Direction == "" {
		opts.Direction = opts.Sort.DefaultDirection()
	}

	mr, err := s.mrRepo.GetByID(ctx, materialRequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrMaterialRequestNotFound
		}
		return nil, fmt.Errorf("%w: load material request: %v", utils.ErrQuotesUnavailable, err)
	}

	if opts.Demo {
		cmp := quote.Compare(mr.ID, mr.Items, quote.DemoQuotes(mr.Items), opts.Sort, opts.Direction, s.now())
		cmp.Demo = true
		return &cmp, nil
	}

	quotes, err := s.quoteRepo.ListByMaterialRequest(ctx, mr.ID)
	if err != nil {
		log.Error().Err(err).Str("material_request_id", mr.ID).Msg("failed to load quotes")
		return nil, fmt.Errorf("%w: %v", utils.ErrQuotesUnavailable, err)
	}

	cmp := quote.Compare(mr.ID, mr.Items, quotes, opts.Sort, opts.Direction, s.now())
	if s.cache != nil {
		if err := s.cache.Set(ctx, cmp); err != nil {
			log.Warn().Err(err).Str("material_request_id", mr.ID).Msg("failed to cache comparison")
		}
	}
	return &cmp, nil
}

// LastComparison returns the most recent cached comparison marked stale.
func (s *QuoteService) LastComparison(ctx context.Context, materialRequestID string) (*quote.Comparison, error) {
	if s.cache == nil {
		return nil, utils.ErrQuotesUnavailable
	}
	cmp, err := s.cache.Get(ctx, materialRequestID)
	if err != nil {
		return nil, err
	}
	cmp.Stale = true
	return cmp, nil
}

// forward sends data to the webhook when one is configured. Failures are
// logged; the delivery row carries the retry schedule.
func (s *QuoteService) forward(ctx context.Context, event models.WebhookEvent, referenceID string, data interface{}) *models.WebhookDelivery {
	return forwardEvent(ctx, s.forwarder, event, referenceID, data)
}

func forwardEvent(ctx context.Context, f Forwarder, event models.WebhookEvent, referenceID string, data interface{}) *models.WebhookDelivery {
	if f == nil {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Str("event", string(event)).Msg("failed to marshal webhook data")
		return nil
	}
	d, err := f.Forward(ctx, event, referenceID, raw)
	if err != nil {
		if !errors.Is(err, utils.ErrWebhookNotConfigured) {
			log.Error().Err(err).Str("event", string(event)).Str("reference_id", referenceID).Msg("failed to forward webhook")
		}
		return nil
	}
	return d
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
