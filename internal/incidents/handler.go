package incidents

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bissquit/incident-tracker/internal/domain"
	"github.com/bissquit/incident-tracker/internal/pkg/ctxlog"
	"github.com/bissquit/incident-tracker/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/nullable"
)

// Query parameter messages.
const (
	MsgPageNotInteger     = "Page must be an integer"
	MsgPageSizeNotInteger = "PageSize must be an integer"
)

// MsgIncidentNotFound is the body message of a 404 response.
const MsgIncidentNotFound = "Incident not found"

var errorMappings = []httputil.ErrorMapping{
	{Error: ErrIncidentNotFound, Status: http.StatusNotFound, Message: MsgIncidentNotFound},
}

// Handler handles HTTP requests for incidents.
type Handler struct {
	service   *Service
	validator *Validator
}

// NewHandler creates a new incidents handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: NewValidator(),
	}
}

// RegisterRoutes registers the incident routes under /incidents.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/incidents", func(r chi.Router) {
		r.Get("/", h.ListIncidents)
		r.Post("/", h.CreateIncident)
		r.Get("/{id}", h.GetIncident)
		r.Patch("/{id}", h.UpdateIncident)
	})
}

// CreateIncidentRequest represents the request body for creating an incident.
type CreateIncidentRequest struct {
	Title    string  `json:"title"`
	Service  string  `json:"service"`
	Severity string  `json:"severity"`
	Status   string  `json:"status"`
	Owner    *string `json:"owner"`
	Summary  *string `json:"summary"`
}

// ToInput converts a validated request to service input.
func (r *CreateIncidentRequest) ToInput() CreateInput {
	return CreateInput{
		Title:    r.Title,
		Service:  r.Service,
		Severity: domain.Severity(r.Severity),
		Status:   domain.IncidentStatus(r.Status),
		Owner:    r.Owner,
		Summary:  r.Summary,
	}
}

// UpdateIncidentRequest represents the request body for a partial update.
// Omitted keys, null and values are told apart.
type UpdateIncidentRequest struct {
	Title    nullable.Nullable[string] `json:"title"`
	Service  nullable.Nullable[string] `json:"service"`
	Severity nullable.Nullable[string] `json:"severity"`
	Status   nullable.Nullable[string] `json:"status"`
	Owner    nullable.Nullable[string] `json:"owner"`
	Summary  nullable.Nullable[string] `json:"summary"`
}

// ToInput converts a validated request to service input.
func (r *UpdateIncidentRequest) ToInput() UpdateInput {
	return UpdateInput{
		Title:    r.Title,
		Service:  r.Service,
		Severity: convert(r.Severity, func(v string) domain.Severity { return domain.Severity(v) }),
		Status:   convert(r.Status, func(v string) domain.IncidentStatus { return domain.IncidentStatus(v) }),
		Owner:    r.Owner,
		Summary:  r.Summary,
	}
}

// CreateIncident handles POST /incidents request.
func (h *Handler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	var req CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.ValidationErrors(w, []string{MsgInvalidJSONBody})
		return
	}

	if err := h.validator.ValidateCreate(req); err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	incident, err := h.service.Create(r.Context(), req.ToInput())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	w.Header().Set("Location", "/incidents/"+incident.ID)
	httputil.JSON(w, http.StatusCreated, ToResponse(incident))
}

// GetIncident handles GET /incidents/{id} request.
func (h *Handler) GetIncident(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := ctxlog.With(r.Context(), "incident_id", id)

	incident, err := h.service.Get(ctx, id)
	if err != nil {
		httputil.HandleError(ctx, w, err, errorMappings)
		return
	}

	httputil.JSON(w, http.StatusOK, ToResponse(incident))
}

// ListIncidents handles GET /incidents request.
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	params, problems := parseListParams(r.URL.Query())
	if len(problems) > 0 {
		httputil.ValidationErrors(w, problems)
		return
	}

	page, err := h.service.List(r.Context(), params)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.JSON(w, http.StatusOK, ToPageResponse(page))
}

// UpdateIncident handles PATCH /incidents/{id} request.
func (h *Handler) UpdateIncident(w http.ResponseWriter, r *http.Request) {
	var req UpdateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.ValidationErrors(w, []string{MsgInvalidJSONBody})
		return
	}

	if err := h.validator.ValidateUpdate(req); err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	id := chi.URLParam(r, "id")
	ctx := ctxlog.With(r.Context(), "incident_id", id)

	incident, err := h.service.Update(ctx, id, req.ToInput())
	if err != nil {
		httputil.HandleError(ctx, w, err, errorMappings)
		return
	}

	httputil.JSON(w, http.StatusOK, ToResponse(incident))
}

// parseListParams reads list parameters from the query string. Absent or empty
// parameters keep their defaults. Severity and status are matched against the
// canonical names ignoring case.
func parseListParams(values url.Values) (ListParams, []string) {
	params := DefaultListParams()
	var problems []string

	if v := values.Get("page"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			problems = append(problems, MsgPageNotInteger)
		}
		params.Page = n
	}
	if v := values.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			problems = append(problems, MsgPageSizeNotInteger)
		}
		params.PageSize = n
	}

	params.Search = values.Get("search")
	params.Service = values.Get("service")

	if v := values.Get("severity"); v != "" {
		sev, ok := domain.ParseSeverity(strings.ToUpper(strings.TrimSpace(v)))
		if !ok {
			problems = append(problems, MsgInvalidSeverity)
		}
		params.Severity = &sev
	}
	if v := values.Get("status"); v != "" {
		st, ok := domain.ParseIncidentStatus(strings.ToUpper(strings.TrimSpace(v)))
		if !ok {
			problems = append(problems, MsgInvalidStatus)
		}
		params.Status = &st
	}

	if v := values.Get("sortBy"); v != "" {
		params.SortBy = v
	}
	if v := values.Get("sortOrder"); v != "" {
		params.SortOrder = v
	}

	return params, problems
}
