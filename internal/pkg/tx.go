package pkg

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// TxFunc is the body of a transaction. Returning an error rolls back.
type TxFunc func(tx *gorm.DB) error

// WithTx runs fn in a read-write transaction bound to ctx. It commits when
// fn returns nil and rolls back on error or panic; panics are re-raised.
func WithTx(ctx context.Context, db *gorm.DB, fn TxFunc) error {
	return run(db.WithContext(ctx), nil, fn)
}

// WithReadTx runs fn in a transaction whose statements share one snapshot.
// PostgreSQL gets REPEATABLE READ, READ ONLY; SQLite transactions are
// serializable already and keep the driver default.
func WithReadTx(ctx context.Context, db *gorm.DB, fn TxFunc) error {
	db = db.WithContext(ctx)
	return run(db, readTxOptions(db), fn)
}

func readTxOptions(db *gorm.DB) *sql.TxOptions {
	if db.Dialector == nil || db.Dialector.Name() != "postgres" {
		return nil
	}
	return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
}

func run(db *gorm.DB, opts *sql.TxOptions, fn TxFunc) error {
	var tx *gorm.DB
	if opts != nil {
		tx = db.Begin(opts)
	} else {
		tx = db.Begin()
	}
	if tx.Error != nil {
		return tx.Error
	}

	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	committed = true
	return tx.Commit().Error
}
