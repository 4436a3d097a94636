package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/procure_api/internal/models"
	"github.com/GTDGit/procure_api/internal/notify"
	"github.com/GTDGit/procure_api/internal/quote"
	"github.com/GTDGit/procure_api/internal/sse"
	"github.com/GTDGit/procure_api/internal/utils"
)

// SessionService drives a buyer through vendor selection, quote request,
// comparison and order placement. State lives in the database; clients hold
// only a signed session token.
type SessionService struct {
	sessionRepo SessionStore
	vendorRepo  VendorStore
	mrService   *MaterialRequestService
	quotes      *QuoteService
	forwarder   Forwarder
	events      sse.QuoteNotifier
	mailer      notify.Notifier
	ttl         time.Duration
	now         func() time.Time
}

// NewSessionService constructs a SessionService.
func NewSessionService(
	sessionRepo SessionStore,
	vendorRepo VendorStore,
	mrService *MaterialRequestService,
	quotes *QuoteService,
	forwarder Forwarder,
	events sse.QuoteNotifier,
	mailer notify.Notifier,
	ttl time.Duration,
) *SessionService {
	if events == nil {
		events = &sse.NopNotifier{}
	}
	if mailer == nil {
		mailer = notify.NopNotifier{}
	}
	return &SessionService{
		sessionRepo: sessionRepo,
		vendorRepo:  vendorRepo,
		mrService:   mrService,
		quotes:      quotes,
		forwarder:   forwarder,
		events:      events,
		mailer:      mailer,
		ttl:         ttl,
		now:         time.Now,
	}
}

// StartSessionRequest optionally binds the session to an existing order.
type StartSessionRequest struct {
	MaterialRequestID string `json:"materialRequestId"`
}

// SelectVendorsRequest picks the vendors to ask for quotes.
type SelectVendorsRequest struct {
	MaterialRequestID string   `json:"materialRequestId"`
	VendorIDs         []string `json:"vendorIds" binding:"required,min=1,dive,required"`
}

// ChooseVendorRequest picks the winning quote.
type ChooseVendorRequest struct {
	VendorID string `json:"vendorId" binding:"required"`
}

// StartedSession is a new session with its bearer token.
type StartedSession struct {
	Session *models.ProcurementSession `json:"session"`
	Token   string                     `json:"token"`
}

// OrderResult describes a placed order.
type OrderResult struct {
	Session         *models.ProcurementSession `json:"session"`
	MaterialRequest *models.MaterialRequest    `json:"materialRequest"`
	Vendor          *models.Vendor             `json:"vendor"`
	Delivery        *models.WebhookDelivery    `json:"delivery,omitempty"`
}

// Start opens a session in vendor selection.
func (s *SessionService) Start(ctx context.Context, req *StartSessionRequest) (*StartedSession, error) {
	sess := &models.ProcurementSession{
		ID:                uuid.NewString(),
		State:             models.SessionVendorSelection,
		SelectedVendorIDs: []string{},
		ExpiresAt:         s.now().Add(s.ttl),
	}
	if req != nil && req.MaterialRequestID != "" {
		if err := s.bindMaterialRequest(ctx, sess, req.MaterialRequestID); err != nil {
			return nil, err
		}
	}

	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := utils.GenerateSessionToken(sess.ID, sess.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	log.Info().Str("session_id", sess.ID).Msg("Procurement session started")
	return &StartedSession{Session: sess, Token: token}, nil
}

// Get loads a live session.
func (s *SessionService) Get(ctx context.Context, id string) (*models.ProcurementSession, error) {
	sess, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, utils.ErrSessionNotFound)
	}
	if !sess.State.Terminal() && sess.Expired(s.now()) {
		return nil, utils.ErrSessionExpired
	}
	return sess, nil
}

// SelectVendors records the vendor shortlist. Coming back from quote request
// re-opens selection.
func (s *SessionService) SelectVendors(ctx context.Context, id string, req *SelectVendorsRequest) (*models.ProcurementSession, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.State == models.SessionQuoteRequest {
		if err := sess.Transition(models.SessionVendorSelection); err != nil {
			return nil, err
		}
	}
	if sess.State != models.SessionVendorSelection {
		return nil, fmt.Errorf("%w: cannot select vendors in %s", utils.ErrInvalidTransition, sess.State)
	}

	if req.MaterialRequestID != "" {
		if err := s.bindMaterialRequest(ctx, sess, req.MaterialRequestID); err != nil {
			return nil, err
		}
	}

	ids := uniqueStrings(req.VendorIDs)
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

	sess.SelectedVendorIDs = ids
	if err := s.sessionRepo.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return sess, nil
}

// RequestQuotes asks the selected vendors to quote and moves to quote request.
func (s *SessionService) RequestQuotes(ctx context.Context, id string) (*models.ProcurementSession, *QuoteRequestResult, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if sess.MaterialRequestID == nil {
		return nil, nil, utils.ErrMaterialRequestNotFound
	}
	if len(sess.SelectedVendorIDs) == 0 {
		return nil, nil, utils.ErrNoVendorsSelected
	}
	if err := sess.Transition(models.SessionQuoteRequest); err != nil {
		return nil, nil, err
	}

	res, err := s.quotes.RequestQuotes(ctx, *sess.MaterialRequestID, sess.SelectedVendorIDs)
	if err != nil {
		return nil, nil, err
	}

	if err := s.sessionRepo.Update(ctx, sess); err != nil {
		return nil, nil, fmt.Errorf("update session: %w", err)
	}
	return sess, res, nil
}

// Compare returns the comparison for the session's order. The first look at
// the comparison moves the session from quote request to quote comparison.
func (s *SessionService) Compare(ctx context.Context, id string, opts CompareOptions) (*models.ProcurementSession, *quote.Comparison, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	switch sess.State {
	case models.SessionQuoteRequest, models.SessionQuoteComparison, models.SessionOrderPlacement:
	default:
		return nil, nil, fmt.Errorf("%w: no quotes requested in %s", utils.ErrInvalidTransition, sess.State)
	}

	cmp, err := s.quotes.Compare(ctx, *sess.MaterialRequestID, opts)
	if err != nil {
		return sess, nil, err
	}

	if sess.State == models.SessionQuoteRequest {
		if err := sess.Transition(models.SessionQuoteComparison); err != nil {
			return nil, nil, err
		}
		if err := s.sessionRepo.Update(ctx, sess); err != nil {
			return nil, nil, fmt.Errorf("update session: %w", err)
		}
	}
	return sess, cmp, nil
}

// ChooseVendor picks the winning vendor. The vendor must have been selected
// and must have answered with prices.
func (s *SessionService) ChooseVendor(ctx context.Context, id string, req *ChooseVendorRequest) (*models.ProcurementSession, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.State == models.SessionOrderPlacement {
		if err := sess.Transition(models.SessionQuoteComparison); err != nil {
			return nil, err
		}
	}
	if sess.State != models.SessionQuoteComparison {
		return nil, fmt.Errorf("%w: cannot choose a vendor in %s", utils.ErrInvalidTransition, sess.State)
	}
	if !sess.HasVendor(req.VendorID) {
		return nil, utils.ErrVendorNotSelected
	}

	quotes, err := s.quotes.ListQuotes(ctx, *sess.MaterialRequestID)
	if err != nil {
		return nil, err
	}
	if !hasReceivedQuote(quotes, req.VendorID) {
		return nil, utils.ErrQuoteNotReceived
	}

	chosen := req.VendorID
	sess.ChosenVendorID = &chosen
	if err := sess.Transition(models.SessionOrderPlacement); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return sess, nil
}

// PlaceOrder finalizes the order with the chosen vendor, completes the
// session and notifies the webhook, live listeners and the customer.
func (s *SessionService) PlaceOrder(ctx context.Context, id string) (*OrderResult, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.State != models.SessionOrderPlacement || sess.ChosenVendorID == nil {
		return nil, fmt.Errorf("%w: cannot place order in %s", utils.ErrInvalidTransition, sess.State)
	}

	vendor, err := s.vendorRepo.GetByID(ctx, *sess.ChosenVendorID)
	if err != nil {
		return nil, mapNotFound(err, utils.ErrVendorNotFound)
	}

	mr, err := s.finalizeOrder(ctx, *sess.MaterialRequestID)
	if err != nil {
		return nil, err
	}

	if err := sess.Transition(models.SessionCompleted); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	res := &OrderResult{Session: sess, MaterialRequest: mr, Vendor: vendor}
	res.Delivery = forwardEvent(ctx, s.forwarder, models.WebhookOrderPlaced, mr.ReferenceNo, map[string]interface{}{
		"materialRequest": mr,
		"vendor":          vendor,
	})
	s.events.NotifyOrderPlaced(mr, vendor.ID)
	if err := s.mailer.OrderPlaced(ctx, mr, vendor); err != nil {
		log.Warn().Err(err).Str("material_request_id", mr.ID).Msg("failed to send order confirmation")
	}

	log.Info().
		Str("session_id", sess.ID).
		Str("material_request_id", mr.ID).
		Str("vendor_id", vendor.ID).
		Msg("Order placed")
	return res, nil
}

// finalizeOrder finalizes the request. A request already finalized by an
// earlier attempt whose session update failed counts as success, so the
// caller can retry PlaceOrder.
func (s *SessionService) finalizeOrder(ctx context.Context, mrID string) (*models.MaterialRequest, error) {
	mr, err := s.mrService.Finalize(ctx, mrID)
	if err == nil {
		return mr, nil
	}
	if !errors.Is(err, utils.ErrMaterialRequestLocked) {
		return nil, err
	}
	current, getErr := s.mrService.Get(ctx, mrID)
	if getErr != nil || current.Status != models.MaterialRequestFinalized {
		return nil, err
	}
	log.Info().Str("material_request_id", mrID).Msg("Material request already finalized, resuming order placement")
	return current, nil
}

// Cancel abandons the session. The order itself is left untouched.
func (s *SessionService) Cancel(ctx context.Context, id string) (*models.ProcurementSession, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.Transition(models.SessionCancelled); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	log.Info().Str("session_id", sess.ID).Msg("Procurement session cancelled")
	return sess, nil
}

// Quotes returns the quote service backing the session flow.
func (s *SessionService) Quotes() *QuoteService {
	return s.quotes
}

// SweepExpired deletes expired sessions that never completed.
func (s *SessionService) SweepExpired(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx, s.now())
}

func (s *SessionService) bindMaterialRequest(ctx context.Context, sess *models.ProcurementSession, materialRequestID string) error {
	mr, err := s.mrService.Get(ctx, materialRequestID)
	if err != nil {
		return err
	}
	if !mr.Status.Editable() {
		return utils.ErrMaterialRequestLocked
	}
	if sess.MaterialRequestID != nil && *sess.MaterialRequestID != mr.ID {
		// Quotes belong to the old order; the shortlist starts over.
		sess.SelectedVendorIDs = []string{}
	}
	id := mr.ID
	sess.MaterialRequestID = &id
	return nil
}

func hasReceivedQuote(quotes []models.VendorQuote, vendorID string) bool {
	for _, q := range quotes {
		if q.VendorID == vendorID && len(q.Items) > 0 {
			return true
		}
	}
	return false
}
