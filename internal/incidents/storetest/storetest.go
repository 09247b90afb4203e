// Package storetest holds behaviour tests shared by every incidents.Repository
// implementation.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bissquit/incident-tracker/internal/domain"
	"github.com/bissquit/incident-tracker/internal/incidents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty repository for one subtest.
type Factory func(t *testing.T) incidents.Repository

var baseTime = time.Date(2026, 3, 1, 9, 30, 0, 123456000, time.UTC)

// NewIncident returns a valid incident with the given id.
func NewIncident(id string) *domain.Incident {
	owner := "alice"
	return &domain.Incident{
		ID:        id,
		Title:     "DB down",
		Service:   "DB",
		Severity:  domain.SeveritySEV1,
		Status:    domain.IncidentStatusOpen,
		Owner:     &owner,
		CreatedAt: baseTime,
		UpdatedAt: baseTime,
	}
}

func fixtureID(n int) string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
}

func strPtr(s string) *string { return &s }

// Fixtures returns a small data set exercising every filter and sort column.
func Fixtures() []*domain.Incident {
	mk := func(n int, title, service string, sev domain.Severity, st domain.IncidentStatus, owner, summary *string) *domain.Incident {
		return &domain.Incident{
			ID:        fixtureID(n),
			Title:     title,
			Service:   service,
			Severity:  sev,
			Status:    st,
			Owner:     owner,
			Summary:   summary,
			CreatedAt: baseTime.Add(time.Duration(n) * time.Hour),
			UpdatedAt: baseTime.Add(time.Duration(100-n) * time.Hour),
		}
	}
	return []*domain.Incident{
		mk(1, "DB down", "DB", domain.SeveritySEV1, domain.IncidentStatusOpen, nil, nil),
		mk(2, "Cache misses", "Cache", domain.SeveritySEV3, domain.IncidentStatusMitigated, strPtr("Alice"), nil),
		mk(3, "Slow queries", "DB", domain.SeveritySEV2, domain.IncidentStatusResolved, nil, strPtr("Replica lag on db-2")),
		mk(4, "Auth errors", "Auth Service", domain.SeveritySEV1, domain.IncidentStatusResolved, strPtr(""), strPtr("")),
		mk(5, "Login latency", "Auth Service", domain.SeveritySEV4, domain.IncidentStatusOpen, strPtr("bob"), strPtr("p99 spikes")),
		mk(6, "cache stampede", "Cache", domain.SeveritySEV2, domain.IncidentStatusOpen, strPtr("carol"), strPtr("Thundering herd")),
		mk(7, "DB failover", "DB", domain.SeveritySEV2, domain.IncidentStatusMitigated, strPtr("dave"), nil),
	}
}

// RunRepositoryTests runs the shared behaviour suite against repositories built
// by newRepo.
func RunRepositoryTests(t *testing.T, newRepo Factory) {
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, newRepo(t)) })
	t.Run("GetUnknown", func(t *testing.T) { testGetUnknown(t, newRepo(t)) })
	t.Run("CreateDuplicate", func(t *testing.T) { testCreateDuplicate(t, newRepo(t)) })
	t.Run("OptionalFieldsRoundTrip", func(t *testing.T) { testOptionalFields(t, newRepo(t)) })
	t.Run("Update", func(t *testing.T) { testUpdate(t, newRepo(t)) })
	t.Run("UpdateUnknown", func(t *testing.T) { testUpdateUnknown(t, newRepo(t)) })
	t.Run("Count", func(t *testing.T) { testCount(t, newRepo(t)) })
	t.Run("List", func(t *testing.T) { testList(t, newRepo(t)) })
}

// AssertSameIncident compares two incidents field by field, comparing times as
// instants.
func AssertSameIncident(t *testing.T, want, got *domain.Incident) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Service, got.Service)
	assert.Equal(t, want.Severity, got.Severity)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.Owner, got.Owner)
	assert.Equal(t, want.Summary, got.Summary)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "createdAt: want %s, got %s", want.CreatedAt, got.CreatedAt)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updatedAt: want %s, got %s", want.UpdatedAt, got.UpdatedAt)
	assert.Equal(t, time.UTC, got.CreatedAt.Location())
	assert.Equal(t, time.UTC, got.UpdatedAt.Location())
}

func testCreateAndGet(t *testing.T, repo incidents.Repository) {
	ctx := context.Background()
	inc := NewIncident(fixtureID(1))

	require.NoError(t, repo.Create(ctx, inc))

	got, err := repo.Get(ctx, inc.ID)
	require.NoError(t, err)
	AssertSameIncident(t, inc, got)
}

func testGetUnknown(t *testing.T, repo incidents.Repository) {
	_, err := repo.Get(context.Background(), fixtureID(404))
	assert.ErrorIs(t, err, incidents.ErrIncidentNotFound)
}

func testCreateDuplicate(t *testing.T, repo incidents.Repository) {
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, NewIncident(fixtureID(1))))

	err := repo.Create(ctx, NewIncident(fixtureID(1)))
	assert.ErrorIs(t, err, incidents.ErrDuplicateID)
}

func testOptionalFields(t *testing.T, repo incidents.Repository) {
	ctx := context.Background()

	unset := NewIncident(fixtureID(1))
	unset.Owner = nil
	unset.Summary = nil

	empty := NewIncident(fixtureID(2))
	empty.Owner = strPtr("")
	empty.Summary = strPtr("")

	for _, inc := range []*domain.Incident{unset, empty} {
		require.NoError(t, repo.Create(ctx, inc))
		got, err := repo.Get(ctx, inc.ID)
		require.NoError(t, err)
		AssertSameIncident(t, inc, got)
	}
}

func testUpdate(t *testing.T, repo incidents.Repository) {
	ctx := context.Background()
	inc := NewIncident(fixtureID(1))
	require.NoError(t, repo.Create(ctx, inc))

	next := inc.Clone()
	next.Title = "DB recovered"
	next.Status = domain.IncidentStatusResolved
	next.Owner = strPtr("")
	next.Summary = strPtr("failover to replica")
	next.UpdatedAt = inc.UpdatedAt.Add(time.Minute)
	require.NoError(t, repo.Update(ctx, next))

	got, err := repo.Get(ctx, inc.ID)
	require.NoError(t, err)
	AssertSameIncident(t, next, got)
	assert.True(t, inc.CreatedAt.Equal(got.CreatedAt))
}

func testUpdateUnknown(t *testing.T, repo incidents.Repository) {
	err := repo.Update(context.Background(), NewIncident(fixtureID(404)))
	assert.ErrorIs(t, err, incidents.ErrIncidentNotFound)
}

func testCount(t *testing.T, repo incidents.Repository) {
	ctx := context.Background()

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	for _, inc := range Fixtures() {
		require.NoError(t, repo.Create(ctx, inc))
	}

	n, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(Fixtures()), n)
}

// testList checks the repository against the in-memory evaluation of the same
// query over the same data.
func testList(t *testing.T, repo incidents.Repository) {
	ctx := context.Background()
	for _, inc := range Fixtures() {
		require.NoError(t, repo.Create(ctx, inc))
	}

	sev2 := domain.SeveritySEV2
	open := domain.IncidentStatusOpen

	cases := map[string]incidents.ListParams{
		"defaults":         incidents.DefaultListParams(),
		"search title":     {Search: "db", PageSize: 100},
		"search owner":     {Search: "ALICE", PageSize: 100},
		"search summary":   {Search: "herd", PageSize: 100},
		"search none":      {Search: "zzz", PageSize: 100},
		"service exact":    {Service: "Cache", PageSize: 100},
		"service case":     {Service: "cache", PageSize: 100},
		"severity":         {Severity: &sev2, PageSize: 100, SortOrder: "asc"},
		"status":           {Status: &open, PageSize: 100, SortBy: "title", SortOrder: "asc"},
		"conjunction":      {Service: "DB", Severity: &sev2, Search: "fail", PageSize: 100},
		"sort title asc":   {SortBy: "title", SortOrder: "asc", PageSize: 100},
		"sort title desc":  {SortBy: "Title", SortOrder: "desc", PageSize: 100},
		"sort service":     {SortBy: "service", SortOrder: "asc", PageSize: 100},
		"sort severity":    {SortBy: "severity", SortOrder: "asc", PageSize: 100},
		"sort status desc": {SortBy: "STATUS", PageSize: 100},
		"sort updatedAt":   {SortBy: "updatedAt", SortOrder: "asc", PageSize: 100},
		"sort unknown":     {SortBy: "priority", SortOrder: "asc", PageSize: 100},
		"page 1":           {Page: 1, PageSize: 3, SortBy: "severity", SortOrder: "asc"},
		"page 2":           {Page: 2, PageSize: 3, SortBy: "severity", SortOrder: "asc"},
		"page 3":           {Page: 3, PageSize: 3, SortBy: "severity", SortOrder: "asc"},
		"page past end":    {Page: 9, PageSize: 3},
		"filtered page":    {Page: 2, PageSize: 1, Service: "DB", SortOrder: "asc"},
	}

	for name, params := range cases {
		t.Run(name, func(t *testing.T) {
			q := incidents.NewQuery(params)
			wantItems, wantTotal := q.Apply(Fixtures())

			items, total, err := repo.List(ctx, q)
			require.NoError(t, err)
			assert.Equal(t, wantTotal, total)
			require.Len(t, items, len(wantItems))
			for i := range wantItems {
				AssertSameIncident(t, wantItems[i], items[i])
			}
		})
	}
}
