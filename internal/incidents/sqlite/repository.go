// Package sqlite provides SQLite implementation of the incidents repository.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bissquit/incident-tracker/internal/domain"
	"github.com/bissquit/incident-tracker/internal/incidents"
	pkgsqlite "github.com/bissquit/incident-tracker/internal/pkg/sqlite"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// timeLayout keeps a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

const selectColumns = `id, title, service, severity, status, owner, summary, created_at, updated_at`

// Repository implements the incidents.Repository interface using SQLite.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new incident.
func (r *Repository) Create(ctx context.Context, incident *domain.Incident) error {
	query := `
		INSERT INTO incidents (id, title, service, severity, status, owner, summary, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		incident.ID,
		incident.Title,
		incident.Service,
		string(incident.Severity),
		string(incident.Status),
		nullString(incident.Owner),
		nullString(incident.Summary),
		formatTime(incident.CreatedAt),
		formatTime(incident.UpdatedAt),
	)
	if err != nil {
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			return fmt.Errorf("create incident %s: %w", incident.ID, incidents.ErrDuplicateID)
		}
		return fmt.Errorf("create incident: %w", err)
	}
	return nil
}

// Get retrieves an incident by its ID.
func (r *Repository) Get(ctx context.Context, id string) (*domain.Incident, error) {
	query := `SELECT ` + selectColumns + ` FROM incidents WHERE id = ?`

	inc, err := scanIncident(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("get incident: %w", err)
	}
	return inc, nil
}

// Update overwrites every mutable column of an existing incident.
func (r *Repository) Update(ctx context.Context, incident *domain.Incident) error {
	query := `
		UPDATE incidents
		SET title = ?, service = ?, severity = ?, status = ?,
		    owner = ?, summary = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, query,
		incident.Title,
		incident.Service,
		string(incident.Severity),
		string(incident.Status),
		nullString(incident.Owner),
		nullString(incident.Summary),
		formatTime(incident.UpdatedAt),
		incident.ID,
	)
	if err != nil {
		return fmt.Errorf("update incident: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update incident: %w", err)
	}
	if n == 0 {
		return incidents.ErrIncidentNotFound
	}
	return nil
}

// List returns one window of the filtered set and the filtered total.
func (r *Repository) List(ctx context.Context, q incidents.Query) ([]*domain.Incident, int, error) {
	where, args := buildWhere(q)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM incidents`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count incidents: %w", err)
	}

	result := make([]*domain.Incident, 0, min(q.Limit(), total))
	if q.Offset() >= total {
		return result, total, nil
	}

	query := `SELECT ` + selectColumns + ` FROM incidents` + where + orderBy(q) + ` LIMIT ? OFFSET ?`
	args = append(args, q.Limit(), q.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan incident: %w", err)
		}
		result = append(result, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate incidents: %w", err)
	}

	return result, total, nil
}

// Count returns the number of stored incidents.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM incidents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count incidents: %w", err)
	}
	return n, nil
}

func buildWhere(q incidents.Query) (string, []any) {
	var conds []string
	var args []any

	if q.Search != "" {
		lower := pkgsqlite.LowerFunc
		conds = append(conds, fmt.Sprintf(
			"(instr(%[1]s(title), ?) > 0 OR instr(%[1]s(service), ?) > 0"+
				" OR instr(%[1]s(owner), ?) > 0 OR instr(%[1]s(summary), ?) > 0)", lower))
		term := q.SearchTerm()
		args = append(args, term, term, term, term)
	}
	if q.Service != "" {
		conds = append(conds, "service = ?")
		args = append(args, q.Service)
	}
	if q.Severity != nil {
		conds = append(conds, "severity = ?")
		args = append(args, string(*q.Severity))
	}
	if q.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*q.Status))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderBy(q incidents.Query) string {
	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id ASC", q.SortBy.ColumnName(), dir)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncident(row rowScanner) (*domain.Incident, error) {
	var inc domain.Incident
	var severity, status, createdAt, updatedAt string
	var owner, summary sql.NullString
	err := row.Scan(
		&inc.ID,
		&inc.Title,
		&inc.Service,
		&severity,
		&status,
		&owner,
		&summary,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	inc.Severity = domain.Severity(severity)
	inc.Status = domain.IncidentStatus(status)
	if owner.Valid {
		inc.Owner = &owner.String
	}
	if summary.Valid {
		inc.Summary = &summary.String
	}
	if inc.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if inc.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &inc, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
