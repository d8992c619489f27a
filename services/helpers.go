package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Dosada05/championship-system/models"
	"github.com/Dosada05/championship-system/repositories"
	"github.com/Dosada05/championship-system/storage"
)

// --- Транзакции ---

// txBeginner is satisfied by *sql.DB.
type txBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// runInTx commits when fn returns nil and rolls back otherwise, including on panic.
func runInTx(ctx context.Context, db txBeginner, logger *slog.Logger, fn func(tx *sql.Tx) error) (txErr error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.ErrorContext(ctx, "rollback failed", slog.Any("error", rbErr), slog.Any("cause", txErr))
				txErr = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	txErr = fn(tx)
	return txErr
}

// --- Доступ организатора ---

func loadOwnedChampionship(ctx context.Context, repo repositories.ChampionshipRepository, organizerID, championshipID int) (*models.Championship, error) {
	championship, err := repo.GetByID(ctx, championshipID)
	if err != nil {
		if errors.Is(err, repositories.ErrChampionshipNotFound) {
			return nil, ErrChampionshipNotFound
		}
		return nil, fmt.Errorf("failed to get championship %d: %w", championshipID, err)
	}
	if championship.OrganizerID != organizerID {
		return nil, ErrForbiddenOperation
	}
	return championship, nil
}

func loadOwnedTeam(ctx context.Context, teamRepo repositories.TeamRepository, champRepo repositories.ChampionshipRepository, organizerID, teamID int) (*models.Team, *models.Championship, error) {
	team, err := teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, nil, ErrTeamNotFound
		}
		return nil, nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	championship, err := loadOwnedChampionship(ctx, champRepo, organizerID, team.ChampionshipID)
	if err != nil {
		return nil, nil, err
	}
	return team, championship, nil
}

// --- Общие хелперы ---

// trimmedOrNil turns blank optional strings into NULLs.
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func publicURL(uploader storage.FileUploader, key *string) *string {
	if key == nil || *key == "" || uploader == nil {
		return nil
	}
	url := uploader.GetPublicURL(*key)
	if url == "" {
		return nil
	}
	return &url
}

func populateChampionshipMedia(c *models.Championship, uploader storage.FileUploader) {
	if c == nil {
		return
	}
	c.LogoURL = publicURL(uploader, c.LogoKey)
	c.CoverURL = publicURL(uploader, c.CoverKey)
}

func populateTeamMedia(t *models.Team, uploader storage.FileUploader) {
	if t == nil {
		return
	}
	t.LogoURL = publicURL(uploader, t.LogoKey)
	for i := range t.Sponsors {
		t.Sponsors[i].LogoURL = publicURL(uploader, t.Sponsors[i].LogoKey)
	}
}

// replaceObject uploads a new object and points the entity at it via save.
// The previous object is removed only after save succeeds; the new one is
// removed if save fails.
func replaceObject(
	ctx context.Context,
	uploader storage.FileUploader,
	logger *slog.Logger,
	key string,
	contentType string,
	body io.Reader,
	oldKey *string,
	save func(newKey *string) error,
) error {
	if _, err := uploader.Upload(ctx, key, contentType, body); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	if err := save(&key); err != nil {
		if delErr := uploader.Delete(ctx, key); delErr != nil {
			logger.WarnContext(ctx, "failed to clean up orphaned upload", slog.String("key", key), slog.Any("error", delErr))
		}
		return err
	}

	if oldKey != nil && *oldKey != "" && *oldKey != key {
		if err := uploader.Delete(ctx, *oldKey); err != nil {
			logger.WarnContext(ctx, "failed to delete previous object", slog.String("key", *oldKey), slog.Any("error", err))
		}
	}
	return nil
}
