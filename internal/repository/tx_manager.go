package repository

import (
	"context"

	"gorm.io/gorm"
)

// txKey carries the open *gorm.DB transaction through a context. A
// struct key cannot collide with the string-keyed values middleware
// puts on the request context.
type txKey struct{}

// TransactionManager runs a function inside a single database
// transaction. Multi-repository writes go through it so they commit or
// roll back together: approving an adjustment touches the adjustment,
// the store item, the ledger and the audit log in one unit.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type transactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &transactionManager{db: db}
}

func (t *transactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// GetDB returns the transaction carried by ctx, or rootDB outside one.
// Every repository call site goes through it, so the same method works
// inside and outside RunInTx.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}
