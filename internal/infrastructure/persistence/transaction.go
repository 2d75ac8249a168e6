package persistence

import (
	"context"

	"github.com/erp/orderdesk/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type txKey struct{}

// GormTransactionManager runs work in a GORM transaction carried by the context.
// Repositories pick the transaction up through dbFor, so a service can
// combine several repository calls and event handlers into one commit.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a new GormTransactionManager
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// Transaction runs fn in a transaction. A call made inside another
// transaction joins it instead of opening a new one.
func (m *GormTransactionManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFor returns the transaction carried by ctx, or db when there is none
func dbFor(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// lockingDBFor is dbFor plus SELECT ... FOR UPDATE when ctx carries a
// postgres transaction. Rows read through it stay locked until commit.
func lockingDBFor(ctx context.Context, db *gorm.DB) *gorm.DB {
	query := dbFor(ctx, db)
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok && db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return query
}

// inTransaction runs fn in the caller's transaction, or in a new one
func inTransaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(tx.WithContext(ctx))
	}
	return db.WithContext(ctx).Transaction(fn)
}

var _ shared.TransactionManager = (*GormTransactionManager)(nil)
