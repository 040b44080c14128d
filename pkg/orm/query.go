package orm

import (
	"context"
	"errors"

	"github.com/elchascon/botilleria/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned by First when no row matches.
var ErrNotFound = errors.New("record not found")

// Query is a thin chainable wrapper over *gorm.DB. Every call returns a
// new Query so a base value can be shared between goroutines.
type Query struct {
	db *gorm.DB
}

// DB wraps the global connection from pkg/database.
func DB() *Query {
	return &Query{db: database.DB}
}

// New wraps an explicit connection or transaction handle.
func New(db *gorm.DB) *Query {
	return &Query{db: db}
}

// Gorm exposes the underlying handle for calls the wrapper does not cover.
func (q *Query) Gorm() *gorm.DB { return q.db }

func (q *Query) WithContext(ctx context.Context) *Query {
	return &Query{db: q.db.WithContext(ctx)}
}

func (q *Query) Model(v interface{}) *Query {
	return &Query{db: q.db.Model(v)}
}

func (q *Query) Where(query interface{}, args ...interface{}) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

func (q *Query) Preload(assoc string, args ...interface{}) *Query {
	return &Query{db: q.db.Preload(assoc, args...)}
}

func (q *Query) Order(value interface{}) *Query {
	return &Query{db: q.db.Order(value)}
}

func (q *Query) Limit(n int) *Query {
	return &Query{db: q.db.Limit(n)}
}

// ForUpdate adds an exclusive row lock (SELECT ... FOR UPDATE) held until
// the enclosing transaction ends. Dialects without row locks ignore it.
func (q *Query) ForUpdate() *Query {
	return &Query{db: q.db.Clauses(clause.Locking{Strength: "UPDATE"})}
}

// Unscoped includes soft-deleted rows.
func (q *Query) Unscoped() *Query {
	return &Query{db: q.db.Unscoped()}
}

func (q *Query) Get(dest interface{}) error {
	return q.db.Find(dest).Error
}

// First loads the first row ordered by primary key; ErrNotFound when none.
func (q *Query) First(dest interface{}, conds ...interface{}) error {
	err := q.db.First(dest, conds...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (q *Query) Count() (int64, error) {
	var n int64
	err := q.db.Count(&n).Error
	return n, err
}

func (q *Query) Create(v interface{}) error {
	return q.db.Create(v).Error
}

func (q *Query) Save(v interface{}) error {
	return q.db.Save(v).Error
}

// Updates writes the given column map on the current model/scope and
// returns the number of affected rows.
func (q *Query) Updates(values map[string]interface{}) (int64, error) {
	res := q.db.Updates(values)
	return res.RowsAffected, res.Error
}

// Transaction runs fn inside a database transaction. Returning an error
// from fn rolls back; a nil return commits.
func (q *Query) Transaction(fn func(tx *Query) error) error {
	return q.db.Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// ── Pagination ───────────────────────────────────────────────────────────────

// Pagination describes one page of a listing.
type Pagination struct {
	Page     int   `json:"page"`
	Limit    int   `json:"limit"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
}

const maxPageSize = 100

// Paginate counts the scoped rows, then loads page into dest with the
// given associations preloaded. Preloads belong here, not on the scope,
// so the count query stays a plain COUNT.
// page starts at 1; limit is clamped to [1, 100] with 20 as default.
func (q *Query) Paginate(page, limit int, dest interface{}, preloads ...string) (Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	var total int64
	if err := q.db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Pagination{}, err
	}

	find := q.db.Offset((page - 1) * limit).Limit(limit)
	for _, p := range preloads {
		find = find.Preload(p)
	}
	if err := find.Find(dest).Error; err != nil {
		return Pagination{}, err
	}

	last := int((total + int64(limit) - 1) / int64(limit))
	if last == 0 {
		last = 1
	}

	return Pagination{Page: page, Limit: limit, Total: total, LastPage: last}, nil
}
