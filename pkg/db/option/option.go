package option

import (
	"fmt"
	"strings"

	"github.com/tecnomade/clouget-pos/pkg/db/pagination"
	"gorm.io/gorm"
)

// QueryOption customizes a gorm query built by the generic repository.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type Operator string

const (
	EQ  Operator = "="
	GT  Operator = ">"
	GTE Operator = ">="
	LT  Operator = "<"
	LTE Operator = "<="
)

type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

type operatorOption struct {
	cond Condition
}

func (o operatorOption) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(fmt.Sprintf("%s %s ?", o.cond.Field, o.cond.Operator), o.cond.Value)
}

// ApplyOperator adds a comparison condition against a single column.
func ApplyOperator(cond Condition) QueryOption {
	return operatorOption{cond: cond}
}

type QuerySortBy struct {
	Field string
	Desc  bool
	// Allow restricts sortable columns; an empty map allows none.
	Allow map[string]bool
}

type sortOption struct {
	sort QuerySortBy
}

func (o sortOption) Apply(db *gorm.DB) *gorm.DB {
	field := o.sort.Field
	if field == "" {
		field = "created_at"
	}
	if len(o.sort.Allow) > 0 && !o.sort.Allow[field] {
		return db
	}
	dir := "ASC"
	if o.sort.Desc {
		dir = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", field, dir))
}

func WithSortBy(sort QuerySortBy) QueryOption {
	return sortOption{sort: sort}
}

// WithQuerySortBy builds a QuerySortBy from raw query parameters.
func WithQuerySortBy(field, order string, allow map[string]bool) QuerySortBy {
	return QuerySortBy{
		Field: strings.TrimSpace(field),
		Desc:  strings.EqualFold(strings.TrimSpace(order), "desc"),
		Allow: allow,
	}
}

type limitOption struct {
	limit int
}

func (o limitOption) Apply(db *gorm.DB) *gorm.DB {
	if o.limit <= 0 {
		return db
	}
	return db.Limit(o.limit)
}

func WithLimit(limit int) QueryOption {
	return limitOption{limit: limit}
}

type paginationOption struct {
	page pagination.Pagination
}

func (o paginationOption) Apply(db *gorm.DB) *gorm.DB {
	size := o.page.PageSize
	if size <= 0 {
		size = 10
	}
	if o.page.PageToken != "" {
		if cursor, err := pagination.DecodeCursor(o.page.PageToken); err == nil && cursor != nil {
			db = db.Where("created_at < ?", cursor.CreatedAt)
		}
	}
	// one extra row so the caller can detect another page
	return db.Limit(size + 1)
}

// ApplyPagination applies cursor-based pagination. The caller orders by
// created_at desc and trims the overflow row itself.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return paginationOption{page: page}
}
