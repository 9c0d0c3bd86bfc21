package repository

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortColumns maps accepted sortBy names to columns. Anything else is ignored.
var sortColumns = map[string]string{
	"description": "description",
	"completed":   "completed",
	"created_at":  "created_at",
	"createdAt":   "created_at",
	"updated_at":  "updated_at",
	"updatedAt":   "updated_at",
}

// SortField is a column and its direction.
type SortField struct {
	Column string
	Desc   bool
}

// TaskQuery is the one way tasks are listed: an owner plus optional filter,
// sort and page bounds. Nil or zero fields mean no restriction.
type TaskQuery struct {
	OwnerID   uuid.UUID
	Completed *bool
	Sort      *SortField
	Limit     int
	Skip      int
}

// ParseTaskQuery reads completed, sortBy, limit and skip from params.
// Malformed values never fail the query; they are dropped.
func ParseTaskQuery(ownerID uuid.UUID, params url.Values) TaskQuery {
	q := TaskQuery{OwnerID: ownerID}

	if v := params.Get("completed"); v != "" {
		completed := v == "true"
		q.Completed = &completed
	}

	if v := params.Get("sortBy"); v != "" {
		parts := strings.SplitN(v, ":", 2)
		if column, ok := sortColumns[parts[0]]; ok {
			q.Sort = &SortField{Column: column, Desc: len(parts) == 2 && parts[1] == "desc"}
		}
	}

	q.Limit = parseBound(params.Get("limit"))
	q.Skip = parseBound(params.Get("skip"))
	return q
}

func parseBound(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// OwnedBy restricts a statement to rows owned by ownerID.
func OwnedBy(ownerID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ?", ownerID)
	}
}

// Scope applies the owner predicate, filter, ordering and page bounds.
func (q TaskQuery) Scope(db *gorm.DB) *gorm.DB {
	db = db.Scopes(OwnedBy(q.OwnerID))

	if q.Completed != nil {
		db = db.Where("completed = ?", *q.Completed)
	}

	if q.Sort != nil {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: q.Sort.Column}, Desc: q.Sort.Desc})
	}
	if q.Sort == nil || q.Sort.Column != "created_at" {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}})
	}
	db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})

	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	if q.Skip > 0 {
		if q.Limit == 0 {
			db = db.Limit(math.MaxInt32)
		}
		db = db.Offset(q.Skip)
	}
	return db
}
