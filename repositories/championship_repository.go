package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/championship-system/models"
)

var (
	ErrChampionshipNotFound         = errors.New("championship not found")
	ErrChampionshipOrganizerInvalid = errors.New("invalid organizer reference")
)

// PublicFilter narrows the public directory. Empty fields match everything.
type PublicFilter struct {
	Sport string
	Query string
	Limit int
}

type ChampionshipRepository interface {
	Create(ctx context.Context, exec SQLExecutor, c *models.Championship) error
	GetByID(ctx context.Context, id int) (*models.Championship, error)
	// LockForUpdate reads the row with SELECT ... FOR UPDATE; exec must be a transaction.
	LockForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Championship, error)
	ListByOrganizer(ctx context.Context, organizerID int) ([]*models.Championship, error)
	// ListPublic returns non-draft championships, newest start date first.
	ListPublic(ctx context.Context, filter PublicFilter) ([]*models.Championship, error)
	CountActiveByOrganizer(ctx context.Context, exec SQLExecutor, organizerID int) (int, error)
	Update(ctx context.Context, c *models.Championship) error
	UpdateStatus(ctx context.Context, id int, status models.ChampionshipStatus) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	UpdateCoverKey(ctx context.Context, id int, coverKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresChampionshipRepository struct {
	db *sql.DB
}

func NewPostgresChampionshipRepository(db *sql.DB) ChampionshipRepository {
	return &postgresChampionshipRepository{db: db}
}

const championshipColumns = `id, organizer_id, name, sport, type, start_date, end_date, location, description,
		status, config, logo_key, cover_key, created_at`

func (r *postgresChampionshipRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func scanChampionship(row rowScanner) (*models.Championship, error) {
	c := &models.Championship{}
	err := row.Scan(
		&c.ID,
		&c.OrganizerID,
		&c.Name,
		&c.Sport,
		&c.Type,
		&c.StartDate,
		&c.EndDate,
		&c.Location,
		&c.Description,
		&c.Status,
		&c.Config,
		&c.LogoKey,
		&c.CoverKey,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *postgresChampionshipRepository) Create(ctx context.Context, exec SQLExecutor, c *models.Championship) error {
	query := `
		INSERT INTO championships
			(organizer_id, name, sport, type, start_date, end_date, location, description, status, config)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		c.OrganizerID,
		c.Name,
		c.Sport,
		c.Type,
		c.StartDate,
		c.EndDate,
		c.Location,
		c.Description,
		c.Status,
		c.Config,
	).Scan(&c.ID, &c.CreatedAt)

	return r.handleChampionshipError(err)
}

func (r *postgresChampionshipRepository) GetByID(ctx context.Context, id int) (*models.Championship, error) {
	query := `SELECT ` + championshipColumns + ` FROM championships WHERE id = $1`
	c, err := scanChampionship(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChampionshipNotFound
		}
		return nil, fmt.Errorf("failed to get championship %d: %w", id, err)
	}
	return c, nil
}

func (r *postgresChampionshipRepository) LockForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Championship, error) {
	query := `SELECT ` + championshipColumns + ` FROM championships WHERE id = $1 FOR UPDATE`
	c, err := scanChampionship(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChampionshipNotFound
		}
		return nil, fmt.Errorf("failed to lock championship %d: %w", id, err)
	}
	return c, nil
}

func (r *postgresChampionshipRepository) ListByOrganizer(ctx context.Context, organizerID int) ([]*models.Championship, error) {
	query := `SELECT ` + championshipColumns + ` FROM championships WHERE organizer_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list championships: %w", err)
	}
	return collectChampionships(rows)
}

func (r *postgresChampionshipRepository) ListPublic(ctx context.Context, filter PublicFilter) ([]*models.Championship, error) {
	query := `SELECT ` + championshipColumns + ` FROM championships
		WHERE status <> $1
			AND ($2 = '' OR sport = $2)
			AND ($3 = '' OR name ILIKE '%' || $3 || '%')
		ORDER BY start_date DESC NULLS LAST, id DESC
		LIMIT $4`
	rows, err := r.db.QueryContext(ctx, query, models.ChampionshipDraft, filter.Sport, filter.Query, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list public championships: %w", err)
	}
	return collectChampionships(rows)
}

func collectChampionships(rows *sql.Rows) ([]*models.Championship, error) {
	defer rows.Close()

	championships := make([]*models.Championship, 0)
	for rows.Next() {
		c, scanErr := scanChampionship(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan championship row: %w", scanErr)
		}
		championships = append(championships, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating championship rows: %w", err)
	}
	return championships, nil
}

func (r *postgresChampionshipRepository) CountActiveByOrganizer(ctx context.Context, exec SQLExecutor, organizerID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM championships WHERE organizer_id = $1 AND status <> $2`
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, organizerID, models.ChampionshipFinished).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count championships: %w", err)
	}
	return count, nil
}

func (r *postgresChampionshipRepository) Update(ctx context.Context, c *models.Championship) error {
	query := `
		UPDATE championships
		SET name = $1, sport = $2, type = $3, start_date = $4, end_date = $5,
			location = $6, description = $7, config = $8
		WHERE id = $9`

	result, err := r.db.ExecContext(ctx, query,
		c.Name, c.Sport, c.Type, c.StartDate, c.EndDate, c.Location, c.Description, c.Config, c.ID,
	)
	if err != nil {
		return r.handleChampionshipError(err)
	}
	return checkAffectedRows(result, ErrChampionshipNotFound)
}

func (r *postgresChampionshipRepository) UpdateStatus(ctx context.Context, id int, status models.ChampionshipStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE championships SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update championship status: %w", err)
	}
	return checkAffectedRows(result, ErrChampionshipNotFound)
}

func (r *postgresChampionshipRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE championships SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update championship logo: %w", err)
	}
	return checkAffectedRows(result, ErrChampionshipNotFound)
}

func (r *postgresChampionshipRepository) UpdateCoverKey(ctx context.Context, id int, coverKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE championships SET cover_key = $1 WHERE id = $2`, coverKey, id)
	if err != nil {
		return fmt.Errorf("failed to update championship cover: %w", err)
	}
	return checkAffectedRows(result, ErrChampionshipNotFound)
}

func (r *postgresChampionshipRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM championships WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete championship: %w", err)
	}
	return checkAffectedRows(result, ErrChampionshipNotFound)
}

func (r *postgresChampionshipRepository) handleChampionshipError(err error) error {
	if err == nil {
		return nil
	}
	if code, constraint, ok := asPQError(err); ok && code == pqForeignKeyViolation {
		if constraint == "championships_organizer_id_fkey" {
			return ErrChampionshipOrganizerInvalid
		}
	}
	return err
}
