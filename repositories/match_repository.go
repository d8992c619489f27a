package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/championship-system/models"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchTeamInvalid = errors.New("match team reference is invalid")
)

// Rows per INSERT statement; 7 params each keeps well under the protocol limit.
const matchInsertBatchSize = 500

type MatchCounts struct {
	Total    int
	Recorded int
	// ResultsDigest changes whenever any match score or status changes.
	ResultsDigest string
}

type MatchRepository interface {
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByChampionship(ctx context.Context, championshipID int, round *int) ([]*models.Match, error)
	CountByChampionship(ctx context.Context, exec SQLExecutor, championshipID int) (MatchCounts, error)
	UpdateResult(ctx context.Context, id int, homeScore, awayScore *int, status models.MatchStatus) error
	UpdateScheduledAt(ctx context.Context, id int, scheduledAt *time.Time) error
	// ReplaceForChampionship deletes every match of the championship and
	// inserts matches in their place. It does not open a transaction; pass a
	// *sql.Tx so both steps commit or roll back together. Inserted rows get
	// their ID and CreatedAt filled in. It returns how many rows were deleted.
	ReplaceForChampionship(ctx context.Context, exec SQLExecutor, championshipID int, matches []*models.Match) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, championship_id, round, sequence, home_team_id, away_team_id,
		home_score, away_score, status, scheduled_at, created_at`

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func scanMatch(row rowScanner) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(
		&m.ID,
		&m.ChampionshipID,
		&m.Round,
		&m.Sequence,
		&m.HomeTeamID,
		&m.AwayTeamID,
		&m.HomeScore,
		&m.AwayScore,
		&m.Status,
		&m.ScheduledAt,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	m, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByChampionship(ctx context.Context, championshipID int, roundFilter *int) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE championship_id = $1`)

	args := []interface{}{championshipID}
	if roundFilter != nil {
		queryBuilder.WriteString(" AND round = $2")
		args = append(args, *roundFilter)
	}
	queryBuilder.WriteString(" ORDER BY round ASC, sequence ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) CountByChampionship(ctx context.Context, exec SQLExecutor, championshipID int) (MatchCounts, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = $2 AND home_score IS NOT NULL AND away_score IS NOT NULL),
			md5(COALESCE(string_agg(
				id::text || ':' || status || ':' || COALESCE(home_score::text, '') || '-' || COALESCE(away_score::text, ''),
				',' ORDER BY id), ''))
		FROM matches
		WHERE championship_id = $1`

	var counts MatchCounts
	err := r.getExecutor(exec).QueryRowContext(ctx, query, championshipID, models.MatchStatusCompleted).
		Scan(&counts.Total, &counts.Recorded, &counts.ResultsDigest)
	if err != nil {
		return MatchCounts{}, fmt.Errorf("failed to count matches: %w", err)
	}
	return counts, nil
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, id int, homeScore, awayScore *int, status models.MatchStatus) error {
	query := `UPDATE matches SET home_score = $1, away_score = $2, status = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, homeScore, awayScore, status, id)
	if err != nil {
		return fmt.Errorf("failed to update match result: %w", err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateScheduledAt(ctx context.Context, id int, scheduledAt *time.Time) error {
	result, err := r.db.ExecContext(ctx, `UPDATE matches SET scheduled_at = $1 WHERE id = $2`, scheduledAt, id)
	if err != nil {
		return fmt.Errorf("failed to update match date: %w", err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) ReplaceForChampionship(ctx context.Context, exec SQLExecutor, championshipID int, matches []*models.Match) (int, error) {
	executor := r.getExecutor(exec)

	result, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE championship_id = $1`, championshipID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches of championship %d: %w", championshipID, err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}

	for start := 0; start < len(matches); start += matchInsertBatchSize {
		end := start + matchInsertBatchSize
		if end > len(matches) {
			end = len(matches)
		}
		if err := r.insertBatch(ctx, executor, championshipID, matches[start:end]); err != nil {
			return 0, err
		}
	}

	return int(deleted), nil
}

func (r *postgresMatchRepository) insertBatch(ctx context.Context, executor SQLExecutor, championshipID int, batch []*models.Match) error {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		INSERT INTO matches (championship_id, round, sequence, home_team_id, away_team_id, status, scheduled_at)
		VALUES `)

	args := make([]interface{}, 0, len(batch)*7)
	byPosition := make(map[[2]int]*models.Match, len(batch))
	for i, m := range batch {
		m.ChampionshipID = championshipID
		if m.Status == "" {
			m.Status = models.MatchStatusScheduled
		}
		if i > 0 {
			queryBuilder.WriteString(", ")
		}
		queryBuilder.WriteString("(")
		for col := 0; col < 7; col++ {
			if col > 0 {
				queryBuilder.WriteString(", ")
			}
			queryBuilder.WriteString("$")
			queryBuilder.WriteString(strconv.Itoa(len(args) + col + 1))
		}
		queryBuilder.WriteString(")")
		args = append(args, m.ChampionshipID, m.Round, m.Sequence, m.HomeTeamID, m.AwayTeamID, m.Status, m.ScheduledAt)
		byPosition[[2]int{m.Round, m.Sequence}] = m
	}
	queryBuilder.WriteString(" RETURNING id, round, sequence, created_at")

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		if code, _, ok := asPQError(err); ok && (code == pqForeignKeyViolation || code == pqCheckViolation) {
			return ErrMatchTeamInvalid
		}
		return fmt.Errorf("failed to insert matches: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, round, sequence int
			createdAt           time.Time
		)
		if err := rows.Scan(&id, &round, &sequence, &createdAt); err != nil {
			return fmt.Errorf("failed to scan inserted match: %w", err)
		}
		if m, ok := byPosition[[2]int{round, sequence}]; ok {
			m.ID = id
			m.CreatedAt = createdAt
		}
	}
	if err := rows.Err(); err != nil {
		if code, _, ok := asPQError(err); ok && (code == pqForeignKeyViolation || code == pqCheckViolation) {
			return ErrMatchTeamInvalid
		}
		return fmt.Errorf("error iterating inserted matches: %w", err)
	}
	return nil
}
