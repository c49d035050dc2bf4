package query

import (
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params are the directory query parameters shared by admin listings
type Params struct {
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
	Search    string `query:"search"`
	Role      string `query:"role"`
	Status    string `query:"status"`
	Published string `query:"published"`
	Action    string `query:"action"`
	Resource  string `query:"resource"`
}

// Normalize clamps page and limit into range and trims the search text
func (p *Params) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	p.Search = strings.TrimSpace(p.Search)
}

// Offset is the number of rows skipped before the current page
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Paginate is a GORM scope applying p's offset and limit
func Paginate(p Params) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.Limit)
	}
}

// Like builds a lowercase substring pattern with LIKE wildcards escaped.
// Use it with "LOWER(col) LIKE ? ESCAPE '\'".
func Like(search string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(search))
	return "%" + escaped + "%"
}
