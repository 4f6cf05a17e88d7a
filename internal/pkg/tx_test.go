package pkg

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// fakeConn is a gorm connection pool whose transactions only record their
// outcome.
type fakeConn struct {
	beginErr   error
	committed  bool
	rolledBack bool
}

func (f *fakeConn) PrepareContext(context.Context, string) (*sql.Stmt, error) { return nil, nil }
func (f *fakeConn) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, nil
}
func (f *fakeConn) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, nil
}
func (f *fakeConn) QueryRowContext(context.Context, string, ...any) *sql.Row { return nil }

func (f *fakeConn) BeginTx(context.Context, *sql.TxOptions) (gorm.ConnPool, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return &fakeTx{f}, nil
}

type fakeTx struct{ *fakeConn }

func (t *fakeTx) Commit() error   { t.committed = true; return nil }
func (t *fakeTx) Rollback() error { t.rolledBack = true; return nil }

func newFakeDB(conn *fakeConn) *gorm.DB {
	db := &gorm.DB{Config: &gorm.Config{}}
	db.Statement = &gorm.Statement{DB: db, ConnPool: conn}
	return db
}

func TestTxOutcome(t *testing.T) {
	errFn := errors.New("insert failed")

	tests := []struct {
		name         string
		fn           TxFunc
		wantErr      error
		wantCommit   bool
		wantRollback bool
	}{
		{"commit", func(*gorm.DB) error { return nil }, nil, true, false},
		{"rollback on error", func(*gorm.DB) error { return errFn }, errFn, false, true},
	}

	runners := map[string]func(*gorm.DB, TxFunc) error{
		"WithTx": func(db *gorm.DB, fn TxFunc) error { return WithTx(context.Background(), db, fn) },
		"WithReadTx": func(db *gorm.DB, fn TxFunc) error {
			return WithReadTx(context.Background(), db, fn)
		},
	}

	for runnerName, runTx := range runners {
		for _, tt := range tests {
			t.Run(runnerName+"/"+tt.name, func(t *testing.T) {
				conn := &fakeConn{}
				err := runTx(newFakeDB(conn), tt.fn)

				if err != tt.wantErr {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				if conn.committed != tt.wantCommit || conn.rolledBack != tt.wantRollback {
					t.Errorf("committed=%v rolledBack=%v", conn.committed, conn.rolledBack)
				}
			})
		}
	}
}

func TestWithTx_PanicRollsBackAndRepanics(t *testing.T) {
	conn := &fakeConn{}
	defer func() {
		if r := recover(); r != "boom" {
			t.Fatalf("recovered %v, want boom", r)
		}
		if !conn.rolledBack || conn.committed {
			t.Errorf("committed=%v rolledBack=%v", conn.committed, conn.rolledBack)
		}
	}()

	_ = WithTx(context.Background(), newFakeDB(conn), func(*gorm.DB) error { panic("boom") })
}

func TestWithTx_BeginError(t *testing.T) {
	errBegin := errors.New("begin failed")
	called := false

	err := WithTx(context.Background(), newFakeDB(&fakeConn{beginErr: errBegin}), func(*gorm.DB) error {
		called = true
		return nil
	})
	if !errors.Is(err, errBegin) || called {
		t.Fatalf("err = %v, called = %v", err, called)
	}
}

type txPost struct {
	ID    uint
	Title string
	Draft bool
}

func newTxTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.AutoMigrate(&txPost{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func countPosts(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&txPost{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestWithTx_SQLite(t *testing.T) {
	db := newTxTestDB(t)
	ctx := context.Background()
	insert := func(tx *gorm.DB) error { return tx.Create(&txPost{Title: "Hello"}).Error }

	if err := WithTx(ctx, db, insert); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if n := countPosts(t, db); n != 1 {
		t.Fatalf("rows after commit = %d, want 1", n)
	}

	errAbort := errors.New("abort")
	err := WithTx(ctx, db, func(tx *gorm.DB) error {
		if err := insert(tx); err != nil {
			return err
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("err = %v, want abort", err)
	}
	if n := countPosts(t, db); n != 1 {
		t.Errorf("rows after rollback = %d, want 1", n)
	}

	func() {
		defer func() { _ = recover() }()
		_ = WithTx(ctx, db, func(tx *gorm.DB) error {
			_ = insert(tx)
			panic("crash")
		})
	}()
	if n := countPosts(t, db); n != 1 {
		t.Errorf("rows after panic = %d, want 1", n)
	}
}

func TestWithReadTx_SQLiteSnapshot(t *testing.T) {
	db := newTxTestDB(t)
	if err := db.Create(&[]txPost{{Title: "a"}, {Title: "b", Draft: true}}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if opts := readTxOptions(db); opts != nil {
		t.Fatalf("sqlite should use driver default options, got %+v", opts)
	}

	var total int64
	var rows []txPost
	err := WithReadTx(context.Background(), db, func(tx *gorm.DB) error {
		if err := tx.Model(&txPost{}).Where("draft = ?", false).Count(&total).Error; err != nil {
			return err
		}
		return tx.Where("draft = ?", false).Find(&rows).Error
	})
	if err != nil {
		t.Fatalf("WithReadTx: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Title != "a" {
		t.Fatalf("total=%d rows=%+v", total, rows)
	}
}
