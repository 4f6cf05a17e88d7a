package pkg

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/blogapi/internal/domain"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
	defaultSort     = "id:desc"

	// maxPageNumber bounds page so that (page-1)*pageSize cannot overflow.
	maxPageNumber = math.MaxInt32
)

// validFieldName matches only alphanumeric characters and underscores.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PageOptions holds the defaults applied when parsing page requests.
type PageOptions struct {
	DefaultPageSize int
	MaxPageSize     int
	DefaultSort     string
}

// DefaultPageOptions returns the built-in pagination defaults.
func DefaultPageOptions() PageOptions {
	return PageOptions{
		DefaultPageSize: defaultPageSize,
		MaxPageSize:     maxPageSize,
		DefaultSort:     defaultSort,
	}
}

func (o PageOptions) normalized() PageOptions {
	if o.DefaultPageSize < 1 {
		o.DefaultPageSize = defaultPageSize
	}
	if o.MaxPageSize < 1 {
		o.MaxPageSize = maxPageSize
	}
	if o.DefaultPageSize > o.MaxPageSize {
		o.DefaultPageSize = o.MaxPageSize
	}
	if strings.TrimSpace(o.DefaultSort) == "" {
		o.DefaultSort = defaultSort
	}
	return o
}

// Parse extracts page, pageSize (alias page_size) and sort from raw query values.
// Missing, non-numeric, zero or negative values fall back to the defaults;
// a page size above MaxPageSize is clamped to it.
func (o PageOptions) Parse(query url.Values) domain.PageRequest {
	o = o.normalized()

	page := parsePositive(query.Get("page"), defaultPage)
	if page > maxPageNumber {
		page = defaultPage
	}

	rawSize := query.Get("pageSize")
	if strings.TrimSpace(rawSize) == "" {
		rawSize = query.Get("page_size")
	}
	pageSize := parsePositive(rawSize, o.DefaultPageSize)
	if pageSize > o.MaxPageSize {
		pageSize = o.MaxPageSize
	}

	sort := strings.TrimSpace(query.Get("sort"))
	if sort == "" {
		sort = o.DefaultSort
	}

	return domain.PageRequest{
		Page:     page,
		PageSize: pageSize,
		Sort:     sort,
	}
}

// ParsePageRequest extracts pagination and sorting parameters from query params.
func ParsePageRequest(c *gin.Context, opts PageOptions) domain.PageRequest {
	return opts.Parse(c.Request.URL.Query())
}

func parsePositive(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// ComputePagination derives the offset/limit window and page count for req
// given the number of rows matching the listing filter.
// The requested page is never clamped to TotalPages: a page past the end
// yields a Skip at or beyond totalItems and an empty fetch.
func ComputePagination(req domain.PageRequest, totalItems int64) domain.PaginationResult {
	page := req.Page
	if page < 1 || page > maxPageNumber {
		page = defaultPage
	}
	limit := req.PageSize
	if limit < 1 {
		limit = defaultPageSize
	}
	if totalItems < 0 {
		totalItems = 0
	}

	return domain.PaginationResult{
		Skip:       (page - 1) * limit,
		Limit:      limit,
		Page:       page,
		TotalPages: int((totalItems + int64(limit) - 1) / int64(limit)),
	}
}

// BuildPaginatedResponse maps records element-wise, in order, and wraps them in
// the listing envelope. The first mapper error aborts the whole response, and
// more records than p.Limit is a caller error rather than something to trim.
func BuildPaginatedResponse[R, T any](records []R, mapper func(R) (T, error), totalItems int64, p domain.PaginationResult) (*domain.PaginatedResponse[T], error) {
	if mapper == nil {
		return nil, fmt.Errorf("build paginated response: mapper is nil")
	}
	if p.Limit > 0 && len(records) > p.Limit {
		return nil, fmt.Errorf("build paginated response: %d records exceed page size %d", len(records), p.Limit)
	}

	content := make([]T, 0, len(records))
	for i, r := range records {
		v, err := mapper(r)
		if err != nil {
			return nil, fmt.Errorf("map record %d: %w", i, err)
		}
		content = append(content, v)
	}

	return &domain.PaginatedResponse[T]{
		Content:     content,
		TotalItems:  totalItems,
		TotalPages:  p.TotalPages,
		CurrentPage: p.Page,
		PageSize:    p.Limit,
	}, nil
}

// FetchPage runs the count and the page fetch for model T inside one read
// transaction so both observe the same snapshot. Extra scopes (preloads) apply
// to the fetch only.
func FetchPage[T any](ctx context.Context, db *gorm.DB, filter domain.FilterSpec, req domain.PageRequest, allowedSort []string, scopes ...func(*gorm.DB) *gorm.DB) ([]T, int64, domain.PaginationResult, error) {
	var (
		items []T
		total int64
		p     domain.PaginationResult
	)

	err := WithReadTx(ctx, db, func(tx *gorm.DB) error {
		if err := tx.Model(new(T)).Scopes(Where(filter)).Count(&total).Error; err != nil {
			return err
		}

		p = ComputePagination(req, total)
		if total == 0 || int64(p.Skip) >= total {
			return nil
		}

		return tx.Model(new(T)).
			Scopes(Where(filter), Sort(req.Sort, allowedSort), Paginate(p)).
			Scopes(scopes...).
			Find(&items).Error
	})
	if err != nil {
		return nil, 0, domain.PaginationResult{}, err
	}

	if items == nil {
		items = []T{}
	}
	return items, total, p, nil
}

// Paginate returns a GORM scope that applies LIMIT and OFFSET from a computed window.
func Paginate(p domain.PaginationResult) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Skip).Limit(p.Limit)
	}
}

// Sort returns a GORM scope that applies ORDER BY for a "field:direction" value.
// Only whitelisted fields matching a strict identifier pattern are accepted.
// Anything else orders by "id desc" so pages stay deterministic. A secondary
// id ordering breaks ties on non-unique fields.
func Sort(sort string, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		field, direction, ok := parseSort(sort, allowed)
		if !ok {
			return db.Order("id desc")
		}

		db = db.Order(field + " " + direction)
		if field != "id" {
			db = db.Order("id " + direction)
		}
		return db
	}
}

func parseSort(sort string, allowed []string) (field, direction string, ok bool) {
	field, direction, found := strings.Cut(sort, ":")
	if !found {
		return "", "", false
	}
	field = strings.TrimSpace(field)
	direction = strings.ToLower(strings.TrimSpace(direction))

	if direction != "asc" && direction != "desc" {
		return "", "", false
	}
	if !validFieldName.MatchString(field) || !isAllowed(field, allowed) {
		return "", "", false
	}
	return field, direction, true
}

// isAllowed checks if a field name is in the allowed list.
func isAllowed(field string, allowed []string) bool {
	return slices.Contains(allowed, field)
}
