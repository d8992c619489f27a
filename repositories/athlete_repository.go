package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/championship-system/models"
)

var (
	ErrAthleteNotFound    = errors.New("athlete not found")
	ErrAthleteTeamInvalid = errors.New("invalid team reference")
)

type AthleteRepository interface {
	Create(ctx context.Context, a *models.Athlete) error
	GetByID(ctx context.Context, id int) (*models.Athlete, error)
	ListByTeam(ctx context.Context, teamID int) ([]*models.Athlete, error)
	ListByChampionship(ctx context.Context, championshipID int) ([]*models.Athlete, error)
	Update(ctx context.Context, a *models.Athlete) error
	Delete(ctx context.Context, id int) error
}

type postgresAthleteRepository struct {
	db *sql.DB
}

func NewPostgresAthleteRepository(db *sql.DB) AthleteRepository {
	return &postgresAthleteRepository{db: db}
}

func scanAthlete(row rowScanner) (*models.Athlete, error) {
	a := &models.Athlete{}
	if err := row.Scan(&a.ID, &a.TeamID, &a.Name, &a.ShirtNumber, &a.Position, &a.Document, &a.CreatedAt); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *postgresAthleteRepository) Create(ctx context.Context, a *models.Athlete) error {
	query := `
		INSERT INTO athletes (team_id, name, shirt_number, position, document)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, a.TeamID, a.Name, a.ShirtNumber, a.Position, a.Document).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if code, _, ok := asPQError(err); ok && code == pqForeignKeyViolation {
			return ErrAthleteTeamInvalid
		}
		return fmt.Errorf("failed to create athlete: %w", err)
	}
	return nil
}

func (r *postgresAthleteRepository) GetByID(ctx context.Context, id int) (*models.Athlete, error) {
	query := `SELECT id, team_id, name, shirt_number, position, document, created_at FROM athletes WHERE id = $1`
	a, err := scanAthlete(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAthleteNotFound
		}
		return nil, fmt.Errorf("failed to get athlete %d: %w", id, err)
	}
	return a, nil
}

func (r *postgresAthleteRepository) list(ctx context.Context, query string, arg int) ([]*models.Athlete, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list athletes: %w", err)
	}
	defer rows.Close()

	athletes := make([]*models.Athlete, 0)
	for rows.Next() {
		a, scanErr := scanAthlete(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan athlete row: %w", scanErr)
		}
		athletes = append(athletes, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating athlete rows: %w", err)
	}
	return athletes, nil
}

func (r *postgresAthleteRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.Athlete, error) {
	query := `
		SELECT id, team_id, name, shirt_number, position, document, created_at
		FROM athletes
		WHERE team_id = $1
		ORDER BY shirt_number ASC NULLS LAST, name ASC`
	return r.list(ctx, query, teamID)
}

func (r *postgresAthleteRepository) ListByChampionship(ctx context.Context, championshipID int) ([]*models.Athlete, error) {
	query := `
		SELECT a.id, a.team_id, a.name, a.shirt_number, a.position, a.document, a.created_at
		FROM athletes a
		JOIN teams t ON t.id = a.team_id
		WHERE t.championship_id = $1
		ORDER BY a.team_id ASC, a.shirt_number ASC NULLS LAST, a.name ASC`
	return r.list(ctx, query, championshipID)
}

func (r *postgresAthleteRepository) Update(ctx context.Context, a *models.Athlete) error {
	query := `UPDATE athletes SET name = $1, shirt_number = $2, position = $3, document = $4 WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, a.Name, a.ShirtNumber, a.Position, a.Document, a.ID)
	if err != nil {
		return fmt.Errorf("failed to update athlete: %w", err)
	}
	return checkAffectedRows(result, ErrAthleteNotFound)
}

func (r *postgresAthleteRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM athletes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete athlete: %w", err)
	}
	return checkAffectedRows(result, ErrAthleteNotFound)
}
