package incidents

import (
	"math"
	"sort"
	"strings"

	"github.com/bissquit/incident-tracker/internal/domain"
)

// Pagination defaults and bounds.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// SortColumn is a sortable incident column.
type SortColumn string

// Sort columns.
const (
	SortByCreatedAt SortColumn = "createdAt"
	SortByUpdatedAt SortColumn = "updatedAt"
	SortByTitle     SortColumn = "title"
	SortByService   SortColumn = "service"
	SortBySeverity  SortColumn = "severity"
	SortByStatus    SortColumn = "status"
)

var sortColumns = map[string]SortColumn{
	"title":     SortByTitle,
	"service":   SortByService,
	"severity":  SortBySeverity,
	"status":    SortByStatus,
	"updatedat": SortByUpdatedAt,
}

// ListParams holds raw list parameters as received from the caller.
type ListParams struct {
	Page      int
	PageSize  int
	Search    string
	Service   string
	Severity  *domain.Severity
	Status    *domain.IncidentStatus
	SortBy    string
	SortOrder string
}

// DefaultListParams returns the parameters used when the caller supplies none.
func DefaultListParams() ListParams {
	return ListParams{
		Page:      DefaultPage,
		PageSize:  DefaultPageSize,
		SortBy:    string(SortByCreatedAt),
		SortOrder: "desc",
	}
}

// Query is a normalized list request: a conjunction of filters, a single sort
// column with direction, and a page window. Stores either evaluate it directly
// (Apply) or translate it to their query language.
type Query struct {
	Search     string
	Service    string
	Severity   *domain.Severity
	Status     *domain.IncidentStatus
	SortBy     SortColumn
	Descending bool
	Page       int
	PageSize   int
}

// NewQuery normalizes list parameters.
func NewQuery(p ListParams) Query {
	q := Query{
		Severity:   p.Severity,
		Status:     p.Status,
		SortBy:     resolveSortColumn(p.SortBy),
		Descending: !strings.EqualFold(p.SortOrder, "asc"),
		Page:       max(1, p.Page),
		PageSize:   min(max(p.PageSize, 1), MaxPageSize),
	}
	if strings.TrimSpace(p.Search) != "" {
		q.Search = p.Search
	}
	if strings.TrimSpace(p.Service) != "" {
		q.Service = p.Service
	}
	return q
}

// ColumnName returns the storage column backing c.
func (c SortColumn) ColumnName() string {
	switch c {
	case SortByTitle:
		return "title"
	case SortByService:
		return "service"
	case SortBySeverity:
		return "severity"
	case SortByStatus:
		return "status"
	case SortByUpdatedAt:
		return "updated_at"
	default:
		return "created_at"
	}
}

func resolveSortColumn(s string) SortColumn {
	if col, ok := sortColumns[strings.ToLower(s)]; ok {
		return col
	}
	return SortByCreatedAt
}

// Offset returns the number of filtered rows to skip.
func (q Query) Offset() int {
	if q.Page-1 > math.MaxInt/q.PageSize {
		return math.MaxInt
	}
	return (q.Page - 1) * q.PageSize
}

// Limit returns the maximum number of rows in the window.
func (q Query) Limit() int {
	return q.PageSize
}

// SearchTerm returns the lower-cased search string, or "" when search is off.
func (q Query) SearchTerm() string {
	return strings.ToLower(q.Search)
}

// Matches reports whether inc satisfies every filter of the query.
func (q Query) Matches(inc *domain.Incident) bool {
	if q.Search != "" && !matchesSearch(inc, q.SearchTerm()) {
		return false
	}
	if q.Service != "" && inc.Service != q.Service {
		return false
	}
	if q.Severity != nil && inc.Severity != *q.Severity {
		return false
	}
	if q.Status != nil && inc.Status != *q.Status {
		return false
	}
	return true
}

func matchesSearch(inc *domain.Incident, term string) bool {
	if strings.Contains(strings.ToLower(inc.Title), term) ||
		strings.Contains(strings.ToLower(inc.Service), term) {
		return true
	}
	if inc.Owner != nil && strings.Contains(strings.ToLower(*inc.Owner), term) {
		return true
	}
	return inc.Summary != nil && strings.Contains(strings.ToLower(*inc.Summary), term)
}

// Less orders a before b by the sort column and direction. Ties are broken by
// id ascending so that every window over the same data is reproducible.
func (q Query) Less(a, b *domain.Incident) bool {
	c := compareColumn(q.SortBy, a, b)
	if c == 0 {
		return a.ID < b.ID
	}
	if q.Descending {
		return c > 0
	}
	return c < 0
}

// Enumerations compare by canonical name, matching how they are stored.
func compareColumn(col SortColumn, a, b *domain.Incident) int {
	switch col {
	case SortByTitle:
		return strings.Compare(a.Title, b.Title)
	case SortByService:
		return strings.Compare(a.Service, b.Service)
	case SortBySeverity:
		return strings.Compare(string(a.Severity), string(b.Severity))
	case SortByStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	case SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// Apply filters, sorts and windows incidents in memory. It returns the window and
// the size of the filtered set.
func (q Query) Apply(all []*domain.Incident) ([]*domain.Incident, int) {
	filtered := make([]*domain.Incident, 0, len(all))
	for _, inc := range all {
		if q.Matches(inc) {
			filtered = append(filtered, inc)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return q.Less(filtered[i], filtered[j])
	})

	total := len(filtered)
	offset := q.Offset()
	if offset >= total {
		return []*domain.Incident{}, total
	}
	end := min(offset+q.Limit(), total)
	return filtered[offset:end], total
}

// Page is one window of a list query.
type Page struct {
	Items      []*domain.Incident
	Page       int
	PageSize   int
	TotalCount int
	TotalPages int
}

// NewPage assembles a page for q from a window and the filtered total.
func NewPage(q Query, items []*domain.Incident, total int) *Page {
	if items == nil {
		items = []*domain.Incident{}
	}
	return &Page{
		Items:      items,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalCount: total,
		TotalPages: TotalPages(total, q.PageSize),
	}
}

// TotalPages returns ceil(total / pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
