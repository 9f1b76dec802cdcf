package dto

const (
	// PublicPageSize is the page size of the public event listing
	PublicPageSize = 12
	defaultLimit   = 20
	maxLimit       = 100
)

// PageQuery is the common ?page=&limit= pair
type PageQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// SetDefaults clamps page to >= 1 and limit to (0, maxLimit]
func (q *PageQuery) SetDefaults(limit int) {
	if q.Page < 1 {
		q.Page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if q.Limit <= 0 || q.Limit > maxLimit {
		q.Limit = limit
	}
}

func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}
