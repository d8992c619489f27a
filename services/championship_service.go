package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Dosada05/championship-system/models"
	"github.com/Dosada05/championship-system/repositories"
	"github.com/Dosada05/championship-system/storage"
	"golang.org/x/sync/errgroup"
)

type ChampionshipService interface {
	Create(ctx context.Context, organizerID int, input ChampionshipInput) (*models.Championship, error)
	Get(ctx context.Context, organizerID, championshipID int) (*models.Championship, error)
	ListMine(ctx context.Context, organizerID int) ([]*models.Championship, error)
	Update(ctx context.Context, organizerID, championshipID int, input ChampionshipInput) (*models.Championship, error)
	UpdateStatus(ctx context.Context, organizerID, championshipID int, status models.ChampionshipStatus) (*models.Championship, error)
	Delete(ctx context.Context, organizerID, championshipID int) error
	UploadLogo(ctx context.Context, organizerID, championshipID int, file io.Reader, contentType string) (*models.Championship, error)
	UploadCover(ctx context.Context, organizerID, championshipID int, file io.Reader, contentType string) (*models.Championship, error)
	Overview(ctx context.Context, organizerID, championshipID int) (*models.ChampionshipOverview, error)
}

// ChampionshipInput is used for both create and full update. A nil Config
// keeps the defaults on create and the stored config on update.
type ChampionshipInput struct {
	Name        string                     `json:"name"`
	Sport       string                     `json:"sport"`
	Type        string                     `json:"type"`
	StartDate   *time.Time                 `json:"start_date,omitempty"`
	EndDate     *time.Time                 `json:"end_date,omitempty"`
	Location    *string                    `json:"location,omitempty"`
	Description *string                    `json:"description,omitempty"`
	Config      *models.ChampionshipConfig `json:"config,omitempty"`
}

type championshipService struct {
	db          *sql.DB
	champRepo   repositories.ChampionshipRepository
	userRepo    repositories.UserRepository
	teamRepo    repositories.TeamRepository
	athleteRepo repositories.AthleteRepository
	sponsorRepo repositories.SponsorRepository
	matchRepo   repositories.MatchRepository
	uploader    storage.FileUploader
	logger      *slog.Logger
}

func NewChampionshipService(
	db *sql.DB,
	champRepo repositories.ChampionshipRepository,
	userRepo repositories.UserRepository,
	teamRepo repositories.TeamRepository,
	athleteRepo repositories.AthleteRepository,
	sponsorRepo repositories.SponsorRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) ChampionshipService {
	return &championshipService{
		db:          db,
		champRepo:   champRepo,
		userRepo:    userRepo,
		teamRepo:    teamRepo,
		athleteRepo: athleteRepo,
		sponsorRepo: sponsorRepo,
		matchRepo:   matchRepo,
		uploader:    uploader,
		logger:      logger,
	}
}

func (s *championshipService) Create(ctx context.Context, organizerID int, input ChampionshipInput) (*models.Championship, error) {
	championship := &models.Championship{
		OrganizerID: organizerID,
		Status:      models.ChampionshipDraft,
		Config:      models.DefaultChampionshipConfig(),
	}
	if err := applyChampionshipInput(championship, input); err != nil {
		return nil, err
	}

	err := runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		// Лок на организаторе: параллельные создания не обходят лимит тарифа.
		organizer, err := s.userRepo.LockForUpdate(ctx, tx, organizerID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to load organizer %d: %w", organizerID, err)
		}
		maxChampionships, _ := PlanLimits(organizer.Plan)
		current, err := s.champRepo.CountActiveByOrganizer(ctx, tx, organizerID)
		if err != nil {
			return fmt.Errorf("failed to count championships: %w", err)
		}
		if !withinLimit(current, maxChampionships) {
			return fmt.Errorf("%w: %s allows %d active championships", ErrPlanLimitReached, organizer.Plan, maxChampionships)
		}

		if err := s.champRepo.Create(ctx, tx, championship); err != nil {
			if errors.Is(err, repositories.ErrChampionshipOrganizerInvalid) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to create championship: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "championship created",
		slog.Int("championship_id", championship.ID),
		slog.Int("organizer_id", organizerID))
	return championship, nil
}

func (s *championshipService) Get(ctx context.Context, organizerID, championshipID int) (*models.Championship, error) {
	championship, err := loadOwnedChampionship(ctx, s.champRepo, organizerID, championshipID)
	if err != nil {
		return nil, err
	}
	populateChampionshipMedia(championship, s.uploader)
	return championship, nil
}

func (s *championshipService) ListMine(ctx context.Context, organizerID int) ([]*models.Championship, error) {
	championships, err := s.champRepo.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list championships: %w", err)
	}
	if championships == nil {
		return []*models.Championship{}, nil
	}
	for _, c := range championships {
		populateChampionshipMedia(c, s.uploader)
	}
	return championships, nil
}

func (s *championshipService) Update(ctx context.Context, organizerID, championshipID int, input ChampionshipInput) (*models.Championship, error) {
	championship, err := loadOwnedChampionship(ctx, s.champRepo, organizerID, championshipID)
	if err != nil {
		return nil, err
	}
	if championship.Status == models.ChampionshipFinished {
		return nil, ErrChampionshipFinished
	}
	if err := applyChampionshipInput(championship, input); err != nil {
		return nil, err
	}

	if err := s.champRepo.Update(ctx, championship); err != nil {
		if errors.Is(err, repositories.ErrChampionshipNotFound) {
			return nil, ErrChampionshipNotFound
		}
		return nil, fmt.Errorf("failed to update championship %d: %w", championshipID, err)
	}
	populateChampionshipMedia(championship, s.uploader)
	return championship, nil
}

func (s *championshipService) UpdateStatus(ctx context.Context, organizerID, championshipID int, status models.ChampionshipStatus) (*models.Championship, error) {
	if !isValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	championship, err := loadOwnedChampionship(ctx, s.champRepo, organizerID, championshipID)
	if err != nil {
		return nil, err
	}
	if !isValidStatusTransition(championship.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, championship.Status, status)
	}
	if championship.Status == status {
		populateChampionshipMedia(championship, s.uploader)
		return championship, nil
	}

	if err := s.champRepo.UpdateStatus(ctx, championshipID, status); err != nil {
		if errors.Is(err, repositories.ErrChampionshipNotFound) {
			return nil, ErrChampionshipNotFound
		}
		return nil, fmt.Errorf("failed to update status of championship %d: %w", championshipID, err)
	}
	s.logger.InfoContext(ctx, "championship status changed",
		slog.Int("championship_id", championshipID),
		slog.String("from", string(championship.Status)),
		slog.String("to", string(status)))

	championship.Status = status
	populateChampionshipMedia(championship, s.uploader)
	return championship, nil
}

func (s *championshipService) Delete(ctx context.Context, organizerID, championshipID int) error {
	championship, err := loadOwnedChampionship(ctx, s.champRepo, organizerID, championshipID)
	if err != nil {
		return err
	}
	if err := s.champRepo.Delete(ctx, championshipID); err != nil {
		if errors.Is(err, repositories.ErrChampionshipNotFound) {
			return ErrChampionshipNotFound
		}
		return fmt.Errorf("failed to delete championship %d: %w", championshipID, err)
	}

	for _, key := range []*string{championship.LogoKey, championship.CoverKey} {
		if key == nil || *key == "" {
			continue
		}
		if err := s.uploader.Delete(ctx, *key); err != nil {
			s.logger.WarnContext(ctx, "failed to delete championship media", slog.String("key", *key), slog.Any("error", err))
		}
	}
	return nil
}

func (s *championshipService) UploadLogo(ctx context.Context, organizerID, championshipID int, file io.Reader, contentType string) (*models.Championship, error) {
	return s.uploadMedia(ctx, organizerID, championshipID, file, contentType, "logo")
}

func (s *championshipService) UploadCover(ctx context.Context, organizerID, championshipID int, file io.Reader, contentType string) (*models.Championship, error) {
	return s.uploadMedia(ctx, organizerID, championshipID, file, contentType, "cover")
}

func (s *championshipService) uploadMedia(ctx context.Context, organizerID, championshipID int, file io.Reader, contentType, kind string) (*models.Championship, error) {
	championship, err := loadOwnedChampionship(ctx, s.champRepo, organizerID, championshipID)
	if err != nil {
		return nil, err
	}

	key, err := storage.ObjectKey("championships", championshipID, kind, contentType)
	if err != nil {
		return nil, err
	}

	oldKey, save := championship.LogoKey, s.champRepo.UpdateLogoKey
	if kind == "cover" {
		oldKey, save = championship.CoverKey, s.champRepo.UpdateCoverKey
	}

	err = replaceObject(ctx, s.uploader, s.logger, key, contentType, file, oldKey, func(newKey *string) error {
		return save(ctx, championshipID, newKey)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrChampionshipNotFound) {
			return nil, ErrChampionshipNotFound
		}
		return nil, err
	}

	if kind == "cover" {
		championship.CoverKey = &key
	} else {
		championship.LogoKey = &key
	}
	populateChampionshipMedia(championship, s.uploader)
	return championship, nil
}

func (s *championshipService) Overview(ctx context.Context, organizerID, championshipID int) (*models.ChampionshipOverview, error) {
	if _, err := loadOwnedChampionship(ctx, s.champRepo, organizerID, championshipID); err != nil {
		return nil, err
	}

	overview := &models.ChampionshipOverview{ChampionshipID: championshipID}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		teams, err := s.teamRepo.CountByChampionship(gctx, nil, championshipID)
		if err != nil {
			return fmt.Errorf("failed to count teams: %w", err)
		}
		overview.TeamsTotal = teams
		return nil
	})
	g.Go(func() error {
		athletes, err := s.athleteRepo.ListByChampionship(gctx, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list athletes: %w", err)
		}
		overview.AthletesTotal = len(athletes)
		return nil
	})
	g.Go(func() error {
		sponsors, err := s.sponsorRepo.ListByChampionship(gctx, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list sponsors: %w", err)
		}
		overview.SponsorsTotal = len(sponsors)
		return nil
	})
	g.Go(func() error {
		matches, err := s.matchRepo.ListByChampionship(gctx, championshipID, nil)
		if err != nil {
			return fmt.Errorf("failed to list matches: %w", err)
		}
		overview.MatchesTotal = len(matches)
		for _, m := range matches {
			if m.HasResult() {
				overview.MatchesPlayed++
			}
			if m.Round > overview.RoundsTotal {
				overview.RoundsTotal = m.Round
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return overview, nil
}

func applyChampionshipInput(c *models.Championship, input ChampionshipInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ErrNameRequired
	}
	sport := strings.ToLower(strings.TrimSpace(input.Sport))
	if sport == "" {
		sport = models.Sports[0]
	}
	if !slices.Contains(models.Sports, sport) {
		return fmt.Errorf("%w: %q", ErrInvalidSport, input.Sport)
	}
	championshipType := strings.TrimSpace(input.Type)
	if championshipType == "" {
		championshipType = models.TypeLeague
	}
	if !isValidChampionshipType(championshipType) {
		return fmt.Errorf("%w: %q", ErrInvalidChampionshipType, input.Type)
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return ErrInvalidDateRange
	}
	if input.Config != nil {
		if err := validateChampionshipConfig(*input.Config); err != nil {
			return err
		}
		c.Config = *input.Config
	}

	c.Name = name
	c.Sport = sport
	c.Type = championshipType
	c.StartDate = input.StartDate
	c.EndDate = input.EndDate
	c.Location = trimmedOrNil(input.Location)
	c.Description = trimmedOrNil(input.Description)
	return nil
}

func validateChampionshipConfig(cfg models.ChampionshipConfig) error {
	if cfg.PointsWin < 0 || cfg.PointsDraw < 0 || cfg.PointsLoss < 0 {
		return fmt.Errorf("%w: points must be non-negative", ErrInvalidConfig)
	}
	if cfg.PointsWin <= cfg.PointsLoss || cfg.PointsDraw > cfg.PointsWin {
		return fmt.Errorf("%w: a win must be worth more than a loss and at least a draw", ErrInvalidConfig)
	}
	if cfg.Legs != 1 && cfg.Legs != 2 {
		return fmt.Errorf("%w: legs must be 1 or 2", ErrInvalidConfig)
	}
	seen := make(map[models.TieBreaker]bool, len(cfg.TieBreakers))
	for _, tb := range cfg.TieBreakers {
		if !slices.Contains(validTieBreakers, tb) {
			return fmt.Errorf("%w: unknown tie-breaker %q", ErrInvalidConfig, tb)
		}
		if seen[tb] {
			return fmt.Errorf("%w: duplicate tie-breaker %q", ErrInvalidConfig, tb)
		}
		seen[tb] = true
	}
	if cfg.Suspensions.YellowCards < 0 || cfg.Suspensions.RedCards < 0 {
		return fmt.Errorf("%w: suspension thresholds must be non-negative", ErrInvalidConfig)
	}
	return nil
}

func isValidStatus(status models.ChampionshipStatus) bool {
	switch status {
	case models.ChampionshipDraft, models.ChampionshipActive, models.ChampionshipFinished:
		return true
	}
	return false
}

func isValidStatusTransition(current, next models.ChampionshipStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.ChampionshipStatus][]models.ChampionshipStatus{
		models.ChampionshipDraft:    {models.ChampionshipActive},
		models.ChampionshipActive:   {models.ChampionshipFinished},
		models.ChampionshipFinished: {},
	}
	return slices.Contains(allowedTransitions[current], next)
}
