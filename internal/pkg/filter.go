package pkg

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/blogapi/internal/domain"
)

// likeEscaper escapes LIKE wildcards so user text is matched literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// FilterParam binds a query parameter to a column predicate.
// Coerce converts the raw value for PredicateEquals; a false result drops the
// parameter. When Coerce is nil the raw string is used.
type FilterParam struct {
	Query  string
	Field  string
	Kind   domain.PredicateKind
	Coerce func(raw string) (any, bool)
}

// BuildFilter turns known query parameters into typed predicates and appends
// the fixed constraints chosen by the call site. Missing, empty, or
// uncoercible values impose no constraint.
func BuildFilter(query url.Values, params []FilterParam, fixed ...domain.Predicate) domain.FilterSpec {
	var spec domain.FilterSpec

	for _, p := range params {
		raw := strings.TrimSpace(query.Get(p.Query))
		if raw == "" {
			continue
		}

		switch p.Kind {
		case domain.PredicateContains:
			spec = spec.With(domain.Contains(p.Field, raw))
		case domain.PredicateEquals:
			var v any = raw
			if p.Coerce != nil {
				coerced, ok := p.Coerce(raw)
				if !ok {
					continue
				}
				v = coerced
			}
			spec = spec.With(domain.Equals(p.Field, v))
		case domain.PredicateBoolEquals:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				continue
			}
			spec = spec.With(domain.BoolEquals(p.Field, b))
		}
	}

	for _, f := range fixed {
		spec = spec.With(f)
	}
	return spec
}

// ParseFilter is BuildFilter over the request's query string.
func ParseFilter(c *gin.Context, params []FilterParam, fixed ...domain.Predicate) domain.FilterSpec {
	return BuildFilter(c.Request.URL.Query(), params, fixed...)
}

// CoerceID parses a positive decimal identifier.
func CoerceID(raw string) (any, bool) {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 || n > uint64(^uint(0)) {
		return nil, false
	}
	return uint(n), true
}

// Where returns a GORM scope that ANDs every predicate of spec onto the query.
// An invalid field name or unknown kind fails the query instead of silently
// widening it.
func Where(spec domain.FilterSpec) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, p := range spec.Predicates() {
			if !validFieldName.MatchString(p.Field) {
				_ = db.AddError(fmt.Errorf("invalid filter field %q", p.Field))
				return db
			}

			switch p.Kind {
			case domain.PredicateContains:
				pattern := "%" + likeEscaper.Replace(strings.ToLower(p.Text)) + "%"
				db = db.Where("LOWER("+p.Field+") LIKE ? ESCAPE '\\'", pattern)
			case domain.PredicateEquals:
				db = db.Where(p.Field+" = ?", p.Value)
			case domain.PredicateBoolEquals:
				db = db.Where(p.Field+" = ?", p.Bool)
			default:
				_ = db.AddError(fmt.Errorf("unsupported predicate %s on %q", p.Kind, p.Field))
				return db
			}
		}
		return db
	}
}
