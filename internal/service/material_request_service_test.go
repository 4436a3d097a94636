package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/procure_api/internal/models"
	"github.com/GTDGit/procure_api/internal/utils"
)

func TestMaterialRequestService_Create(t *testing.T) {
	store := newMemMaterialRequests()
	svc := NewMaterialRequestService(store)

	mr, err := svc.Create(context.Background(), &CreateMaterialRequestRequest{
		CustomerName:  "  Ravi Kumar ",
		CustomerEmail: "ravi@example.com",
		Items: []ItemInput{
			{MaterialName: "Cement", Quantity: 50, Unit: "bags"},
			{Title: "  River Sand "},
			{Quantity: -3},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Ravi Kumar", mr.CustomerName)
	assert.Equal(t, models.MaterialRequestSubmitted, mr.Status)
	assert.Regexp(t, `^MR-`, mr.ReferenceNo)
	require.Len(t, mr.Items, 3)
	assert.Equal(t, "Cement", mr.Items[0].MaterialName)
	assert.Equal(t, 50, mr.Items[0].Quantity)
	assert.Equal(t, "River Sand", mr.Items[1].MaterialName)
	assert.Equal(t, 1, mr.Items[1].Quantity)
	assert.Equal(t, "Material Item", mr.Items[2].MaterialName)
	assert.Equal(t, 1, mr.Items[2].Quantity)
	assert.NotEqual(t, mr.Items[0].ID, mr.Items[1].ID)
}

func TestMaterialRequestService_Lifecycle(t *testing.T) {
	store := newMemMaterialRequests(models.MaterialRequest{ID: "mr-1", Status: models.MaterialRequestSubmitted})
	svc := NewMaterialRequestService(store)
	ctx := context.Background()

	mr, err := svc.UpdateItems(ctx, "mr-1", &UpdateItemsRequest{Items: []ItemInput{{Name: "Bricks", Quantity: 1000}}})
	require.NoError(t, err)
	require.Len(t, mr.Items, 1)
	assert.Equal(t, "Bricks", mr.Items[0].MaterialName)

	mr, err = svc.Finalize(ctx, "mr-1")
	require.NoError(t, err)
	assert.Equal(t, models.MaterialRequestFinalized, mr.Status)

	_, err = svc.UpdateItems(ctx, "mr-1", &UpdateItemsRequest{Items: []ItemInput{{Name: "Bricks"}}})
	assert.ErrorIs(t, err, utils.ErrMaterialRequestLocked)

	_, err = svc.Cancel(ctx, "mr-1")
	assert.ErrorIs(t, err, utils.ErrMaterialRequestLocked)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, utils.ErrMaterialRequestNotFound)

	_, err = svc.Cancel(ctx, "missing")
	assert.ErrorIs(t, err, utils.ErrMaterialRequestNotFound)
}

func TestPageOffset(t *testing.T) {
	tests := []struct {
		page, limit             int
		wantPage, wantLimit, wo int
	}{
		{0, 0, 1, 50, 0},
		{3, 20, 3, 20, 40},
		{2, 500, 2, 50, 50},
	}
	for _, tt := range tests {
		p, l, o := pageOffset(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, p)
		assert.Equal(t, tt.wantLimit, l)
		assert.Equal(t, tt.wo, o)
	}
}
