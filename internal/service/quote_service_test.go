package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/procure_api/internal/models"
	"github.com/GTDGit/procure_api/internal/quote"
	"github.com/GTDGit/procure_api/internal/utils"
)

type quoteFixture struct {
	svc       *QuoteService
	mrs       *memMaterialRequests
	vendors   *memVendors
	quotes    *memQuotes
	cache     *memComparisons
	forwarder *recordingForwarder
}

func newQuoteFixture() *quoteFixture {
	vendors := newMemVendors(
		models.Vendor{ID: "v1", Name: "Shree Cement", Rating: 4.5, IsActive: true},
		models.Vendor{ID: "v2", Name: "Bharat Steel", Rating: 4.1, IsActive: true},
		models.Vendor{ID: "v3", Name: "Closed Traders", Rating: 3.0, IsActive: false},
	)
	mrs := newMemMaterialRequests(
		models.MaterialRequest{
			ID:          "mr-1",
			ReferenceNo: "MR-20260301-0001",
			Status:      models.MaterialRequestSubmitted,
			Items: []models.MaterialRequestItem{
				{ID: "i1", MaterialName: "Cement", Quantity: 10},
				{ID: "i2", MaterialName: "TMT Bar", Quantity: 2},
			},
		},
		models.MaterialRequest{ID: "mr-done", ReferenceNo: "MR-20260301-0002", Status: models.MaterialRequestFinalized},
	)
	f := &quoteFixture{
		mrs:       mrs,
		vendors:   vendors,
		quotes:    &memQuotes{vendors: vendors},
		cache:     newMemComparisons(),
		forwarder: &recordingForwarder{},
	}
	f.svc = NewQuoteService(f.mrs, f.vendors, f.quotes, f.cache, nil, f.forwarder)
	f.svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func price(v float64) *float64 { return &v }

func days(v int) *int { return &v }

func TestQuoteService_RequestQuotes(t *testing.T) {
	f := newQuoteFixture()

	res, err := f.svc.RequestQuotes(context.Background(), "mr-1", []string{"v1", "v2", "v1", ""})
	require.NoError(t, err)
	assert.Len(t, res.Vendors, 2)
	assert.NotNil(t, res.Delivery)
	assert.Equal(t, []models.WebhookEvent{models.WebhookQuoteRequested}, f.forwarder.events)

	quotes, err := f.svc.ListQuotes(context.Background(), "mr-1")
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	for _, q := range quotes {
		assert.Equal(t, models.QuoteStatusPending, q.Status)
	}
}

func TestQuoteService_RequestQuotesErrors(t *testing.T) {
	f := newQuoteFixture()
	ctx := context.Background()

	_, err := f.svc.RequestQuotes(ctx, "missing", []string{"v1"})
	assert.ErrorIs(t, err, utils.ErrMaterialRequestNotFound)

	_, err = f.svc.RequestQuotes(ctx, "mr-done", []string{"v1"})
	assert.ErrorIs(t, err, utils.ErrMaterialRequestLocked)

	_, err = f.svc.RequestQuotes(ctx, "mr-1", []string{""})
	assert.ErrorIs(t, err, utils.ErrNoVendorsSelected)

	_, err = f.svc.RequestQuotes(ctx, "mr-1", []string{"v1", "v3"})
	assert.ErrorIs(t, err, utils.ErrVendorNotFound)
}

func TestQuoteService_SubmitQuote(t *testing.T) {
	f := newQuoteFixture()
	ctx := context.Background()

	_, err := f.svc.Compare(ctx, "mr-1", CompareOptions{})
	require.NoError(t, err)
	require.Contains(t, f.cache.byID, "mr-1")

	q, err := f.svc.SubmitQuote(ctx, "mr-1", &SubmitQuoteRequest{
		VendorID: "v1",
		Items: []QuoteItemInput{
			{ItemID: "i1", QuotedPrice: price(350), DeliveryDays: days(4)},
			{ItemID: "i2", QuotedPrice: price(1200)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusReceived, q.Status)
	assert.NotContains(t, f.cache.byID, "mr-1")
}

func TestQuoteService_SubmitQuoteValidation(t *testing.T) {
	f := newQuoteFixture()
	ctx := context.Background()

	tests := []struct {
		name string
		mrID string
		req  SubmitQuoteRequest
		want error
	}{
		{name: "unknown order", mrID: "missing", req: SubmitQuoteRequest{VendorID: "v1"}, want: utils.ErrMaterialRequestNotFound},
		{name: "locked order", mrID: "mr-done", req: SubmitQuoteRequest{VendorID: "v1"}, want: utils.ErrMaterialRequestLocked},
		{name: "unknown vendor", mrID: "mr-1", req: SubmitQuoteRequest{VendorID: "nope"}, want: utils.ErrVendorNotFound},
		{name: "inactive vendor", mrID: "mr-1", req: SubmitQuoteRequest{VendorID: "v3"}, want: utils.ErrVendorNotFound},
		{name: "no items", mrID: "mr-1", req: SubmitQuoteRequest{VendorID: "v1"}, want: utils.ErrInvalidQuote},
		{
			name: "negative price",
			mrID: "mr-1",
			req:  SubmitQuoteRequest{VendorID: "v1", Items: []QuoteItemInput{{ItemID: "i1", QuotedPrice: price(-1)}}},
			want: utils.ErrInvalidQuote,
		},
		{
			name: "missing price",
			mrID: "mr-1",
			req:  SubmitQuoteRequest{VendorID: "v1", Items: []QuoteItemInput{{ItemID: "i1"}}},
			want: utils.ErrInvalidQuote,
		},
		{
			name: "negative delivery",
			mrID: "mr-1",
			req:  SubmitQuoteRequest{VendorID: "v1", Items: []QuoteItemInput{{ItemID: "i1", QuotedPrice: price(1), DeliveryDays: days(-2)}}},
			want: utils.ErrInvalidQuote,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.svc.SubmitQuote(ctx, tt.mrID, &req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestQuoteService_Compare(t *testing.T) {
	f := newQuoteFixture()
	ctx := context.Background()

	_, err := f.svc.RequestQuotes(ctx, "mr-1", []string{"v1", "v2"})
	require.NoError(t, err)
	_, err = f.svc.SubmitQuote(ctx, "mr-1", &SubmitQuoteRequest{
		VendorID: "v2",
		Items: []QuoteItemInput{
			{ItemID: "i1", QuotedPrice: price(300), DeliveryDays: days(7)},
			{ItemID: "i2", QuotedPrice: price(1000)},
		},
	})
	require.NoError(t, err)

	cmp, err := f.svc.Compare(ctx, "mr-1", CompareOptions{})
	require.NoError(t, err)
	assert.Equal(t, quote.SortByPrice, cmp.Sort)
	assert.Equal(t, quote.Ascending, cmp.Direction)
	assert.False(t, cmp.Demo)
	require.Len(t, cmp.Quotes, 2)
	assert.Equal(t, "v2", cmp.Quotes[0].VendorID)
	assert.Equal(t, float64(5000), cmp.Quotes[0].TotalAmount)
	assert.True(t, cmp.Quotes[1].Pending())
	assert.Contains(t, f.cache.byID, "mr-1")
}

func TestQuoteService_CompareUnavailable(t *testing.T) {
	f := newQuoteFixture()
	ctx := context.Background()

	_, err := f.svc.Compare(ctx, "mr-1", CompareOptions{})
	require.NoError(t, err)

	f.quotes.listErr = errors.New("connection reset")
	_, err = f.svc.Compare(ctx, "mr-1", CompareOptions{Sort: quote.SortByRating})
	assert.ErrorIs(t, err, utils.ErrQuotesUnavailable)

	last, err := f.svc.LastComparison(ctx, "mr-1")
	require.NoError(t, err)
	assert.True(t, last.Stale)
	assert.Equal(t, "mr-1", last.MaterialRequestID)

	f.mrs.getErr = errors.New("database is down")
	_, err = f.svc.Compare(ctx, "mr-1", CompareOptions{})
	assert.ErrorIs(t, err, utils.ErrQuotesUnavailable)
}

func TestQuoteService_CompareNotFound(t *testing.T) {
	f := newQuoteFixture()
	_, err := f.svc.Compare(context.Background(), "missing", CompareOptions{})
	assert.ErrorIs(t, err, utils.ErrMaterialRequestNotFound)
}

func TestQuoteService_CompareDemo(t *testing.T) {
	f := newQuoteFixture()
	f.quotes.listErr = errors.New("never called")

	cmp, err := f.svc.Compare(context.Background(), "mr-1", CompareOptions{Demo: true})
	require.NoError(t, err)
	assert.True(t, cmp.Demo)
	assert.Len(t, cmp.Quotes, 3)
	assert.Empty(t, f.cache.byID)
}

func TestQuoteService_LastComparisonMiss(t *testing.T) {
	f := newQuoteFixture()
	_, err := f.svc.LastComparison(context.Background(), "mr-1")
	assert.Error(t, err)

	noCache := NewQuoteService(f.mrs, f.vendors, f.quotes, nil, nil, nil)
	_, err = noCache.LastComparison(context.Background(), "mr-1")
	assert.ErrorIs(t, err, utils.ErrQuotesUnavailable)
}
