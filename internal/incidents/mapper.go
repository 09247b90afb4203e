package incidents

import (
	"time"

	"github.com/bissquit/incident-tracker/internal/domain"
)

// IncidentResponse is the wire representation of an incident.
type IncidentResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Service   string    `json:"service"`
	Severity  string    `json:"severity"`
	Status    string    `json:"status"`
	Owner     *string   `json:"owner"`
	Summary   *string   `json:"summary"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PageResponse is the wire representation of a list window.
type PageResponse struct {
	Data       []IncidentResponse `json:"data"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalCount int                `json:"totalCount"`
	TotalPages int                `json:"totalPages"`
}

// ToResponse maps an incident to its wire form.
func ToResponse(inc *domain.Incident) IncidentResponse {
	return IncidentResponse{
		ID:        inc.ID,
		Title:     inc.Title,
		Service:   inc.Service,
		Severity:  string(inc.Severity),
		Status:    string(inc.Status),
		Owner:     copyString(inc.Owner),
		Summary:   copyString(inc.Summary),
		CreatedAt: inc.CreatedAt.UTC(),
		UpdatedAt: inc.UpdatedAt.UTC(),
	}
}

// ToPageResponse maps a page to its wire form. Data is never null.
func ToPageResponse(p *Page) PageResponse {
	data := make([]IncidentResponse, 0, len(p.Items))
	for _, inc := range p.Items {
		data = append(data, ToResponse(inc))
	}
	return PageResponse{
		Data:       data,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalCount: p.TotalCount,
		TotalPages: p.TotalPages,
	}
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
