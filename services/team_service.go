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

type TeamService interface {
	Create(ctx context.Context, organizerID, championshipID int, input TeamInput) (*models.Team, error)
	List(ctx context.Context, organizerID, championshipID int) ([]*models.Team, error)
	// Get returns the team with its athletes and sponsors.
	Get(ctx context.Context, organizerID, teamID int) (*models.Team, error)
	Update(ctx context.Context, organizerID, teamID int, input TeamInput) (*models.Team, error)
	Delete(ctx context.Context, organizerID, teamID int) error
	UploadLogo(ctx context.Context, organizerID, teamID int, file io.Reader, contentType string) (*models.Team, error)
}

type TeamInput struct {
	Name         string  `json:"name"`
	Coach        *string `json:"coach,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
}

type teamService struct {
	db          *sql.DB
	teamRepo    repositories.TeamRepository
	champRepo   repositories.ChampionshipRepository
	userRepo    repositories.UserRepository
	athleteRepo repositories.AthleteRepository
	sponsorRepo repositories.SponsorRepository
	uploader    storage.FileUploader
	logger      *slog.Logger
}

func NewTeamService(
	db *sql.DB,
	teamRepo repositories.TeamRepository,
	champRepo repositories.ChampionshipRepository,
	userRepo repositories.UserRepository,
	athleteRepo repositories.AthleteRepository,
	sponsorRepo repositories.SponsorRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		db:          db,
		teamRepo:    teamRepo,
		champRepo:   champRepo,
		userRepo:    userRepo,
		athleteRepo: athleteRepo,
		sponsorRepo: sponsorRepo,
		uploader:    uploader,
		logger:      logger,
	}
}

func (s *teamService) Create(ctx context.Context, organizerID, championshipID int, input TeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	championship, err := loadOwnedChampionship(ctx, s.champRepo, organizerID, championshipID)
	if err != nil {
		return nil, err
	}
	if championship.Status == models.ChampionshipFinished {
		return nil, ErrChampionshipFinished
	}

	organizer, err := s.userRepo.GetByID(ctx, organizerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load organizer %d: %w", organizerID, err)
	}
	_, maxTeams := PlanLimits(organizer.Plan)

	team := &models.Team{
		ChampionshipID: championshipID,
		Name:           name,
		Coach:          trimmedOrNil(input.Coach),
		ContactPhone:   trimmedOrNil(input.ContactPhone),
	}
	err = runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		// Лок на чемпионате: подсчёт и вставка идут под одной блокировкой.
		locked, err := s.champRepo.LockForUpdate(ctx, tx, championshipID)
		if err != nil {
			if errors.Is(err, repositories.ErrChampionshipNotFound) {
				return ErrChampionshipNotFound
			}
			return fmt.Errorf("failed to lock championship: %w", err)
		}
		if locked.Status == models.ChampionshipFinished {
			return ErrChampionshipFinished
		}
		count, err := s.teamRepo.CountByChampionship(ctx, tx, championshipID)
		if err != nil {
			return fmt.Errorf("failed to count teams: %w", err)
		}
		if !withinLimit(count, maxTeams) {
			return fmt.Errorf("%w: %s allows %d teams per championship", ErrPlanLimitReached, organizer.Plan, maxTeams)
		}

		if err := s.teamRepo.Create(ctx, tx, team); err != nil {
			switch {
			case errors.Is(err, repositories.ErrTeamNameConflict):
				return ErrTeamNameConflict
			case errors.Is(err, repositories.ErrTeamChampionshipInvalid):
				return ErrChampionshipNotFound
			default:
				return fmt.Errorf("failed to create team: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamService) List(ctx context.Context, organizerID, championshipID int) ([]*models.Team, error) {
	if _, err := loadOwnedChampionship(ctx, s.champRepo, organizerID, championshipID); err != nil {
		return nil, err
	}
	teams, err := s.teamRepo.ListByChampionship(ctx, nil, championshipID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	if teams == nil {
		return []*models.Team{}, nil
	}
	for _, t := range teams {
		populateTeamMedia(t, s.uploader)
	}
	return teams, nil
}

func (s *teamService) Get(ctx context.Context, organizerID, teamID int) (*models.Team, error) {
	team, _, err := loadOwnedTeam(ctx, s.teamRepo, s.champRepo, organizerID, teamID)
	if err != nil {
		return nil, err
	}

	athletes, err := s.athleteRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list athletes of team %d: %w", teamID, err)
	}
	sponsors, err := s.sponsorRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sponsors of team %d: %w", teamID, err)
	}

	team.Athletes = make([]models.Athlete, 0, len(athletes))
	for _, a := range athletes {
		team.Athletes = append(team.Athletes, *a)
	}
	team.Sponsors = make([]models.Sponsor, 0, len(sponsors))
	for _, sp := range sponsors {
		team.Sponsors = append(team.Sponsors, *sp)
	}
	populateTeamMedia(team, s.uploader)
	return team, nil
}

func (s *teamService) Update(ctx context.Context, organizerID, teamID int, input TeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	team, _, err := loadOwnedTeam(ctx, s.teamRepo, s.champRepo, organizerID, teamID)
	if err != nil {
		return nil, err
	}

	team.Name = name
	team.Coach = trimmedOrNil(input.Coach)
	team.ContactPhone = trimmedOrNil(input.ContactPhone)
	if err := s.teamRepo.Update(ctx, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNotFound):
			return nil, ErrTeamNotFound
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrTeamNameConflict
		default:
			return nil, fmt.Errorf("failed to update team %d: %w", teamID, err)
		}
	}
	populateTeamMedia(team, s.uploader)
	return team, nil
}

// Delete removes the team. Its fixtures go with it, so the schedule should be
// regenerated afterwards.
func (s *teamService) Delete(ctx context.Context, organizerID, teamID int) error {
	team, championship, err := loadOwnedTeam(ctx, s.teamRepo, s.champRepo, organizerID, teamID)
	if err != nil {
		return err
	}
	if championship.Status == models.ChampionshipFinished {
		return ErrChampionshipFinished
	}
	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to delete team %d: %w", teamID, err)
	}
	if team.LogoKey != nil && *team.LogoKey != "" {
		if err := s.uploader.Delete(ctx, *team.LogoKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete team logo", slog.String("key", *team.LogoKey), slog.Any("error", err))
		}
	}
	return nil
}

func (s *teamService) UploadLogo(ctx context.Context, organizerID, teamID int, file io.Reader, contentType string) (*models.Team, error) {
	team, _, err := loadOwnedTeam(ctx, s.teamRepo, s.champRepo, organizerID, teamID)
	if err != nil {
		return nil, err
	}
	key, err := storage.ObjectKey("teams", teamID, "logo", contentType)
	if err != nil {
		return nil, err
	}

	err = replaceObject(ctx, s.uploader, s.logger, key, contentType, file, team.LogoKey, func(newKey *string) error {
		return s.teamRepo.UpdateLogoKey(ctx, teamID, newKey)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	team.LogoKey = &key
	populateTeamMedia(team, s.uploader)
	return team, nil
}
