package pkg

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/blogapi/internal/domain"
)

func TestParseIDParam(t *testing.T) {
	tests := []struct {
		name    string
		param   string
		wantID  uint
		wantErr bool
	}{
		{"valid", "1", 1, false},
		{"large", "42", 42, false},
		{"zero", "0", 0, true},
		{"negative", "-1", 0, true},
		{"non-numeric", "abc", 0, true},
		{"empty", "", 0, true},
		{"overflow", "99999999999999999999999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Params = gin.Params{{Key: "id", Value: tt.param}}

			id, err := ParseIDParam(c, "id")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseIDParam() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !domain.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
			if id != tt.wantID {
				t.Errorf("ParseIDParam() = %v, want %v", id, tt.wantID)
			}
		})
	}
}
