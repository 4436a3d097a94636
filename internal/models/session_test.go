package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/procure_api/internal/utils"
)

func TestSessionState_HappyPath(t *testing.T) {
	s := &ProcurementSession{State: SessionVendorSelection}

	for _, next := range []SessionState{
		SessionQuoteRequest,
		SessionQuoteComparison,
		SessionOrderPlacement,
		SessionCompleted,
	} {
		require.NoError(t, s.Transition(next))
		assert.Equal(t, next, s.State)
	}
	assert.True(t, s.State.Terminal())
}

func TestSessionState_RejectsSkips(t *testing.T) {
	tests := []struct {
		from SessionState
		to   SessionState
	}{
		{SessionVendorSelection, SessionQuoteComparison},
		{SessionVendorSelection, SessionCompleted},
		{SessionQuoteRequest, SessionOrderPlacement},
		{SessionQuoteComparison, SessionCompleted},
		{SessionCompleted, SessionCancelled},
		{SessionCancelled, SessionVendorSelection},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			s := &ProcurementSession{State: tt.from}
			err := s.Transition(tt.to)
			require.Error(t, err)
			assert.True(t, errors.Is(err, utils.ErrInvalidTransition))
			assert.Equal(t, tt.from, s.State)
		})
	}
}

func TestSessionState_CancelFromAnyOpenState(t *testing.T) {
	for _, from := range []SessionState{
		SessionVendorSelection,
		SessionQuoteRequest,
		SessionQuoteComparison,
		SessionOrderPlacement,
	} {
		assert.True(t, from.CanTransition(SessionCancelled), from)
		assert.False(t, from.Terminal(), from)
	}
}

func TestProcurementSession_Helpers(t *testing.T) {
	now := time.Now()
	s := &ProcurementSession{
		SelectedVendorIDs: []string{"v1", "v2"},
		ExpiresAt:         now.Add(time.Minute),
	}

	assert.True(t, s.HasVendor("v2"))
	assert.False(t, s.HasVendor("v3"))
	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(time.Minute)))
}

func TestMaterialRequestStatus_Editable(t *testing.T) {
	assert.True(t, MaterialRequestSubmitted.Editable())
	assert.False(t, MaterialRequestFinalized.Editable())
	assert.False(t, MaterialRequestCancelled.Editable())
}
