package service

import (
	"context"

	"gorm.io/gorm"
)

// TxRunner runs a function inside one atomic unit of work. The flag mutation
// and its audit record go through the same runner call, so both commit or
// both roll back.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
