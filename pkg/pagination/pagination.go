package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any paginated query can request.
	MaxLimit = 100
)

// Params holds page/limit pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Normalize clamps the inputs to their supported ranges.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	p.Limit = NormalizeLimit(p.Limit)
	return p
}

// Offset returns the number of rows skipped for the normalized page.
func (p Params) Offset() int {
	norm := p.Normalize()
	return (norm.Page - 1) * norm.Limit
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Meta describes one page of results alongside the overall row count.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewMeta derives the response metadata for the provided params and total.
func NewMeta(params Params, total int64) Meta {
	norm := params.Normalize()
	pages := int(total) / norm.Limit
	if int(total)%norm.Limit != 0 {
		pages++
	}
	return Meta{
		Page:       norm.Page,
		Limit:      norm.Limit,
		Total:      total,
		TotalPages: pages,
	}
}
