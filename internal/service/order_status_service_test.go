package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateStatusReturnedRaisesAdjustments(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	order := f.seedOrder(model.StatusBooking, 3, 2)

	resp, err := f.statusSvc.UpdateStatus(ctx, order.ID.String(), f.actorID, UpdateOrderStatusRequest{
		Status: "RETURNED",
		Notes:  "customer refused delivery",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusBooking, resp.PreviousStatus)
	assert.Equal(t, model.StatusReturned, resp.Status)

	require.Len(t, resp.LineResults, 2)
	for _, result := range resp.LineResults {
		assert.True(t, result.Created)
		assert.NotEmpty(t, result.AdjustmentID)
		assert.Empty(t, result.Error)
	}

	lineIDs := map[string]bool{
		order.Items[0].ID.String(): true,
		order.Items[1].ID.String(): true,
	}
	require.Len(t, f.adjustmentRepo.adjustments, 2)
	for _, adj := range f.adjustmentRepo.adjustments {
		assert.Equal(t, model.AdjustmentPending, adj.Status)
		assert.Equal(t, model.QualityGood, adj.Quality)
		assert.Equal(t, model.SourceReturnedOrder, adj.SourceType)
		require.NotNil(t, adj.OrderItemID)
		assert.True(t, lineIDs[adj.OrderItemID.String()])
	}

	stored, err := f.orderRepo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReturned, stored.Status)

	history, err := f.statusSvc.GetStatusHistory(ctx, order.ID.String())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.StatusReturned, history[0].Status)
	assert.Equal(t, "customer refused delivery", history[0].Notes)
}

func TestUpdateStatusCancelledProposesNewQuality(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	order := f.seedOrder(model.StatusApproved, 4)

	resp, err := f.statusSvc.UpdateStatus(ctx, order.ID.String(), f.actorID, UpdateOrderStatusRequest{Status: "CANCELLED"})
	require.NoError(t, err)
	require.Len(t, resp.LineResults, 1)

	require.Len(t, f.adjustmentRepo.adjustments, 1)
	for _, adj := range f.adjustmentRepo.adjustments {
		assert.Equal(t, model.QualityNew, adj.Quality)
		assert.Equal(t, model.SourceCancelledOrder, adj.SourceType)
		assert.Equal(t, 4, adj.Quantity)
	}
}

func TestUpdateStatusInvalidTransition(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	order := f.seedOrder(model.StatusOrderCreated, 3)

	_, err := f.statusSvc.UpdateStatus(ctx, order.ID.String(), f.actorID, UpdateOrderStatusRequest{Status: "DELIVERED"})
	var transitionErr *model.StatusTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, model.StatusOrderCreated, transitionErr.Current)
	assert.Equal(t, model.StatusDelivered, transitionErr.Attempted)

	// Nothing moved: no status change, no history, no adjustments.
	stored, err := f.orderRepo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOrderCreated, stored.Status)
	assert.Empty(t, f.orderRepo.history)
	assert.Empty(t, f.adjustmentRepo.adjustments)
}

func TestUpdateStatusUnknownStatus(t *testing.T) {
	f := newStoreFixture()
	order := f.seedOrder(model.StatusOrderCreated, 1)

	_, err := f.statusSvc.UpdateStatus(context.Background(), order.ID.String(), f.actorID, UpdateOrderStatusRequest{Status: "SHIPPED"})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	f := newStoreFixture()

	_, err := f.statusSvc.UpdateStatus(context.Background(), uuid.NewString(), f.actorID, UpdateOrderStatusRequest{Status: "APPROVED"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.statusSvc.UpdateStatus(context.Background(), "not-a-uuid", f.actorID, UpdateOrderStatusRequest{Status: "APPROVED"})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestUpdateStatusRepeatedReturnedDoesNotDuplicateAdjustments(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	order := f.seedOrder(model.StatusBooking, 3, 2)

	_, err := f.statusSvc.UpdateStatus(ctx, order.ID.String(), f.actorID, UpdateOrderStatusRequest{Status: "RETURNED"})
	require.NoError(t, err)

	// Re-applying the same status is a valid no-op transition; the
	// fan-out runs again but every line already has its adjustment.
	resp, err := f.statusSvc.UpdateStatus(ctx, order.ID.String(), f.actorID, UpdateOrderStatusRequest{Status: "RETURNED"})
	require.NoError(t, err)
	require.Len(t, resp.LineResults, 2)
	for _, result := range resp.LineResults {
		assert.False(t, result.Created)
		assert.Empty(t, result.Error)
	}
	assert.Len(t, f.adjustmentRepo.adjustments, 2)
}

func TestUpdateStatusPartialFanOutFailure(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	order := f.seedOrder(model.StatusBooking, 3, 2)
	failingLine := order.Items[0].ID
	f.adjustmentRepo.failCreateFor[failingLine] = true

	resp, err := f.statusSvc.UpdateStatus(ctx, order.ID.String(), f.actorID, UpdateOrderStatusRequest{Status: "RETURNED"})
	require.NoError(t, err, "a failing line must not fail the status change")
	assert.Equal(t, model.StatusReturned, resp.Status)

	require.Len(t, resp.LineResults, 2)
	byLine := make(map[string]LineAdjustmentResult, 2)
	for _, result := range resp.LineResults {
		byLine[result.OrderItemID] = result
	}
	assert.False(t, byLine[failingLine.String()].Created)
	assert.NotEmpty(t, byLine[failingLine.String()].Error)
	assert.True(t, byLine[order.Items[1].ID.String()].Created)

	stored, err := f.orderRepo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReturned, stored.Status)
	assert.Len(t, f.adjustmentRepo.adjustments, 1)
}

func TestUpdateStatusNonTerminalDoesNotTouchStore(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	order := f.seedOrder(model.StatusOrderCreated, 3)

	resp, err := f.statusSvc.UpdateStatus(ctx, order.ID.String(), f.actorID, UpdateOrderStatusRequest{Status: "APPROVED"})
	require.NoError(t, err)
	assert.Empty(t, resp.LineResults)
	assert.Empty(t, f.adjustmentRepo.adjustments)
}

func TestValidNextStatusesService(t *testing.T) {
	f := newStoreFixture()

	next, err := f.statusSvc.ValidNextStatuses("BOOKING")
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.OrderStatus{
		model.StatusDelivered, model.StatusReturned, model.StatusCancelled, model.StatusOnHold,
	}, next)

	_, err = f.statusSvc.ValidNextStatuses("SHIPPED")
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}
