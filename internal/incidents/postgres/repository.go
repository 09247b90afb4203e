// Package postgres provides PostgreSQL implementation of the incidents repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bissquit/incident-tracker/internal/domain"
	"github.com/bissquit/incident-tracker/internal/incidents"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const selectColumns = `id, title, service, severity, status, owner, summary, created_at, updated_at`

// Repository implements the incidents.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new incident.
func (r *Repository) Create(ctx context.Context, incident *domain.Incident) error {
	query := `
		INSERT INTO incidents (id, title, service, severity, status, owner, summary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		incident.ID,
		incident.Title,
		incident.Service,
		string(incident.Severity),
		string(incident.Status),
		incident.Owner,
		incident.Summary,
		incident.CreatedAt,
		incident.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("create incident %s: %w", incident.ID, incidents.ErrDuplicateID)
		}
		return fmt.Errorf("create incident: %w", err)
	}
	return nil
}

// Get retrieves an incident by its ID.
func (r *Repository) Get(ctx context.Context, id string) (*domain.Incident, error) {
	query := `SELECT ` + selectColumns + ` FROM incidents WHERE id = $1`

	inc, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
		SET title = $2, service = $3, severity = $4, status = $5,
		    owner = $6, summary = $7, updated_at = $8
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		incident.ID,
		incident.Title,
		incident.Service,
		string(incident.Severity),
		string(incident.Status),
		incident.Owner,
		incident.Summary,
		incident.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update incident: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return incidents.ErrIncidentNotFound
	}
	return nil
}

// List returns one window of the filtered set and the filtered total.
func (r *Repository) List(ctx context.Context, q incidents.Query) ([]*domain.Incident, int, error) {
	where, args := buildWhere(q)

	var total int
	countQuery := `SELECT COUNT(*) FROM incidents` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count incidents: %w", err)
	}

	result := make([]*domain.Incident, 0, min(q.Limit(), total))
	if q.Offset() >= total {
		return result, total, nil
	}

	argNum := len(args) + 1
	query := `SELECT ` + selectColumns + ` FROM incidents` + where + orderBy(q) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, q.Limit(), q.Offset())

	rows, err := r.db.Query(ctx, query, args...)
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
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM incidents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count incidents: %w", err)
	}
	return n, nil
}

func buildWhere(q incidents.Query) (string, []any) {
	var conds []string
	var args []any
	argNum := 1

	if q.Search != "" {
		// NULL owner/summary yield NULL, which never satisfies the OR on its own.
		conds = append(conds, fmt.Sprintf(
			"(strpos(lower(title), $%[1]d) > 0 OR strpos(lower(service), $%[1]d) > 0"+
				" OR strpos(lower(owner), $%[1]d) > 0 OR strpos(lower(summary), $%[1]d) > 0)", argNum))
		args = append(args, q.SearchTerm())
		argNum++
	}
	if q.Service != "" {
		conds = append(conds, fmt.Sprintf("service = $%d", argNum))
		args = append(args, q.Service)
		argNum++
	}
	if q.Severity != nil {
		conds = append(conds, fmt.Sprintf("severity = $%d", argNum))
		args = append(args, string(*q.Severity))
		argNum++
	}
	if q.Status != nil {
		conds = append(conds, fmt.Sprintf("status = $%d", argNum))
		args = append(args, string(*q.Status))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Text columns sort bytewise so the order does not depend on the server locale.
func orderBy(q incidents.Query) string {
	col := q.SortBy.ColumnName()
	switch q.SortBy {
	case incidents.SortByCreatedAt, incidents.SortByUpdatedAt:
	default:
		col += ` COLLATE "C"`
	}

	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id ASC", col, dir)
}

func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var inc domain.Incident
	var severity, status string
	err := row.Scan(
		&inc.ID,
		&inc.Title,
		&inc.Service,
		&severity,
		&status,
		&inc.Owner,
		&inc.Summary,
		&inc.CreatedAt,
		&inc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	inc.Severity = domain.Severity(severity)
	inc.Status = domain.IncidentStatus(status)
	inc.CreatedAt = inc.CreatedAt.UTC()
	inc.UpdatedAt = inc.UpdatedAt.UTC()
	return &inc, nil
}
