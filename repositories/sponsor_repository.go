package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/championship-system/models"
)

var ErrSponsorNotFound = errors.New("sponsor not found")

type SponsorRepository interface {
	Create(ctx context.Context, s *models.Sponsor) error
	GetByID(ctx context.Context, id int) (*models.Sponsor, error)
	ListByTeam(ctx context.Context, teamID int) ([]*models.Sponsor, error)
	ListByChampionship(ctx context.Context, championshipID int) ([]*models.Sponsor, error)
	Delete(ctx context.Context, id int) error
}

type postgresSponsorRepository struct {
	db *sql.DB
}

func NewPostgresSponsorRepository(db *sql.DB) SponsorRepository {
	return &postgresSponsorRepository{db: db}
}

func (r *postgresSponsorRepository) Create(ctx context.Context, s *models.Sponsor) error {
	query := `INSERT INTO team_sponsors (team_id, name, logo_key) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, s.TeamID, s.Name, s.LogoKey).Scan(&s.ID); err != nil {
		if code, _, ok := asPQError(err); ok && code == pqForeignKeyViolation {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to create sponsor: %w", err)
	}
	return nil
}

func (r *postgresSponsorRepository) GetByID(ctx context.Context, id int) (*models.Sponsor, error) {
	s := &models.Sponsor{}
	err := r.db.QueryRowContext(ctx, `SELECT id, team_id, name, logo_key FROM team_sponsors WHERE id = $1`, id).
		Scan(&s.ID, &s.TeamID, &s.Name, &s.LogoKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSponsorNotFound
		}
		return nil, fmt.Errorf("failed to get sponsor %d: %w", id, err)
	}
	return s, nil
}

func (r *postgresSponsorRepository) list(ctx context.Context, query string, arg int) ([]*models.Sponsor, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list sponsors: %w", err)
	}
	defer rows.Close()

	sponsors := make([]*models.Sponsor, 0)
	for rows.Next() {
		var s models.Sponsor
		if err := rows.Scan(&s.ID, &s.TeamID, &s.Name, &s.LogoKey); err != nil {
			return nil, fmt.Errorf("failed to scan sponsor row: %w", err)
		}
		sponsors = append(sponsors, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sponsor rows: %w", err)
	}
	return sponsors, nil
}

func (r *postgresSponsorRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.Sponsor, error) {
	return r.list(ctx, `SELECT id, team_id, name, logo_key FROM team_sponsors WHERE team_id = $1 ORDER BY id`, teamID)
}

func (r *postgresSponsorRepository) ListByChampionship(ctx context.Context, championshipID int) ([]*models.Sponsor, error) {
	query := `
		SELECT s.id, s.team_id, s.name, s.logo_key
		FROM team_sponsors s
		JOIN teams t ON t.id = s.team_id
		WHERE t.championship_id = $1
		ORDER BY s.team_id, s.id`
	return r.list(ctx, query, championshipID)
}

func (r *postgresSponsorRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM team_sponsors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sponsor: %w", err)
	}
	return checkAffectedRows(result, ErrSponsorNotFound)
}
