package pkg

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/simp-lee/blogapi/internal/domain"
)

func TestMapDBError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"record not found", gorm.ErrRecordNotFound, domain.IsNotFound},
		{"wrapped not found", fmt.Errorf("query: %w", gorm.ErrRecordNotFound), domain.IsNotFound},
		{"duplicated key", gorm.ErrDuplicatedKey, domain.IsAlreadyExists},
		{"sqlite unique", errors.New("UNIQUE constraint failed: users.email"), domain.IsAlreadyExists},
		{"postgres unique", errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email"`), domain.IsAlreadyExists},
		{"other", errors.New("connection refused"), domain.IsInternal},
		{"app error passthrough", domain.ErrForbidden, func(err error) bool { return err == domain.ErrForbidden }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapDBError(tt.err)
			if !tt.check(got) {
				t.Errorf("MapDBError(%v) = %v", tt.err, got)
			}
		})
	}
}

func TestMapDBError_Nil(t *testing.T) {
	if err := MapDBError(nil); err != nil {
		t.Errorf("MapDBError(nil) = %v; want nil", err)
	}
}

func TestMapDBError_InternalKeepsCause(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := MapDBError(cause)
	if !errors.Is(err, cause) {
		t.Error("internal database error should wrap the driver error")
	}
}
