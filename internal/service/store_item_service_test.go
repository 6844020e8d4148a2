package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUseDeductsAndRecordsLedger(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	item := f.seedItem(3, model.QualityGood)

	resp, err := f.itemSvc.Use(ctx, item.ID.String(), f.actorID, UseItemRequest{Quantity: 2, Notes: "resale"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Quantity)

	entries := f.storeTxRepo.byItem(item.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, model.StoreTxUse, entries[0].Kind)
	assert.Equal(t, 2, entries[0].Quantity)
	assert.Equal(t, "resale", entries[0].Notes)
}

func TestUseRejectsInsufficientQuantity(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	item := f.seedItem(3, model.QualityGood)

	_, err := f.itemSvc.Use(ctx, item.ID.String(), f.actorID, UseItemRequest{Quantity: 5})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	// Item untouched, ledger untouched.
	stored, err := f.itemRepo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Quantity)
	assert.Empty(t, f.storeTxRepo.entries)
}

func TestWriteOffZeroesItem(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	item := f.seedItem(3, model.QualityGood)

	resp, err := f.itemSvc.WriteOff(ctx, item.ID.String(), f.actorID, WriteOffRequest{Notes: "mold damage"})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Quantity)
	assert.Equal(t, string(model.QualityWriteOff), resp.Quality)

	entries := f.storeTxRepo.byItem(item.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, model.StoreTxWriteOff, entries[0].Kind)
	assert.Equal(t, 3, entries[0].Quantity, "write off records the quantity removed")
	require.NotNil(t, entries[0].QualityBefore)
	assert.Equal(t, model.QualityGood, *entries[0].QualityBefore)
	require.NotNil(t, entries[0].QualityAfter)
	assert.Equal(t, model.QualityWriteOff, *entries[0].QualityAfter)
}

func TestAdjustQuantity(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	item := f.seedItem(3, model.QualityGood)

	resp, err := f.itemSvc.AdjustQuantity(ctx, item.ID.String(), f.actorID, AdjustQuantityRequest{Delta: 4, Notes: "recount"})
	require.NoError(t, err)
	assert.Equal(t, 7, resp.Quantity)

	resp, err = f.itemSvc.AdjustQuantity(ctx, item.ID.String(), f.actorID, AdjustQuantityRequest{Delta: -2})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Quantity)

	entries := f.storeTxRepo.byItem(item.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, model.StoreTxAdjust, entries[0].Kind)
	assert.Equal(t, 4, entries[0].Quantity)
	assert.Equal(t, model.StoreTxAdjust, entries[1].Kind)
	assert.Equal(t, 2, entries[1].Quantity, "ledger stores the magnitude of the delta")
}

func TestAdjustQuantityCannotGoNegative(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	item := f.seedItem(3, model.QualityGood)

	_, err := f.itemSvc.AdjustQuantity(ctx, item.ID.String(), f.actorID, AdjustQuantityRequest{Delta: -5})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	stored, err := f.itemRepo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Quantity)
	assert.Empty(t, f.storeTxRepo.entries)
}

func TestChangeQuality(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	item := f.seedItem(3, model.QualityGood)

	resp, err := f.itemSvc.ChangeQuality(ctx, item.ID.String(), f.actorID, ChangeQualityRequest{Quality: "DAMAGED", Notes: "water stain"})
	require.NoError(t, err)
	assert.Equal(t, string(model.QualityDamaged), resp.Quality)
	assert.Equal(t, 3, resp.Quantity, "quality change does not touch quantity")

	entries := f.storeTxRepo.byItem(item.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, model.StoreTxQualityChange, entries[0].Kind)
	assert.Equal(t, 0, entries[0].Quantity)
	require.NotNil(t, entries[0].QualityBefore)
	assert.Equal(t, model.QualityGood, *entries[0].QualityBefore)
	require.NotNil(t, entries[0].QualityAfter)
	assert.Equal(t, model.QualityDamaged, *entries[0].QualityAfter)
}

func TestChangeQualityUnknownGrade(t *testing.T) {
	f := newStoreFixture()
	item := f.seedItem(3, model.QualityGood)

	_, err := f.itemSvc.ChangeQuality(context.Background(), item.ID.String(), f.actorID, ChangeQualityRequest{Quality: "OKAYISH"})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	assert.Empty(t, f.storeTxRepo.entries)
}

func TestEveryMutationAppendsExactlyOneLedgerEntry(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	item := f.seedItem(10, model.QualityNew)

	_, err := f.itemSvc.ChangeQuality(ctx, item.ID.String(), f.actorID, ChangeQualityRequest{Quality: "GOOD"})
	require.NoError(t, err)
	_, err = f.itemSvc.AdjustQuantity(ctx, item.ID.String(), f.actorID, AdjustQuantityRequest{Delta: -3})
	require.NoError(t, err)
	_, err = f.itemSvc.Use(ctx, item.ID.String(), f.actorID, UseItemRequest{Quantity: 2})
	require.NoError(t, err)
	_, err = f.itemSvc.WriteOff(ctx, item.ID.String(), f.actorID, WriteOffRequest{})
	require.NoError(t, err)

	entries := f.storeTxRepo.byItem(item.ID)
	require.Len(t, entries, 4)
	assert.Equal(t, model.StoreTxQualityChange, entries[0].Kind)
	assert.Equal(t, model.StoreTxAdjust, entries[1].Kind)
	assert.Equal(t, model.StoreTxUse, entries[2].Kind)
	assert.Equal(t, model.StoreTxWriteOff, entries[3].Kind)

	// Replaying the trail lands on the stored state.
	stored, err := f.itemRepo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Quantity)
	assert.Equal(t, model.QualityWriteOff, stored.Quality)
}

func TestDeleteItemWritesNoLedgerEntry(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	item := f.seedItem(3, model.QualityGood)

	err := f.itemSvc.DeleteItem(ctx, item.ID.String(), f.actorID)
	require.NoError(t, err)

	_, err = f.itemRepo.FindByID(ctx, item.ID)
	assert.Error(t, err)
	assert.Empty(t, f.storeTxRepo.entries)
	assert.Contains(t, f.auditRepo.actions(), model.ActionDeleteStoreItem)
}

func TestGetItemUnknown(t *testing.T) {
	f := newStoreFixture()

	_, err := f.itemSvc.GetItem(context.Background(), "550e8400-e29b-41d4-a716-446655440000")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.itemSvc.GetItem(context.Background(), "garbage")
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}
