package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Dosada05/championship-system/charts"
	"github.com/Dosada05/championship-system/models"
	"github.com/Dosada05/championship-system/repositories"
	"github.com/Dosada05/championship-system/storage"
	"golang.org/x/sync/errgroup"
)

const publicDirectoryLimit = 50

// PublicService serves read-only championship pages; no organizer check.
type PublicService interface {
	// List is the public directory: published championships filtered by
	// sport and a name fragment.
	List(ctx context.Context, sport, query string) ([]*models.Championship, error)
	Get(ctx context.Context, championshipID int) (*models.PublicChampionship, error)
	Standings(ctx context.Context, championshipID int) ([]models.Standing, error)
	StandingsChart(ctx context.Context, championshipID int) ([]byte, error)
	// CheckPublished returns ErrChampionshipNotPublic for drafts.
	CheckPublished(ctx context.Context, championshipID int) error
}

type publicService struct {
	champRepo   repositories.ChampionshipRepository
	teamRepo    repositories.TeamRepository
	athleteRepo repositories.AthleteRepository
	sponsorRepo repositories.SponsorRepository
	matchRepo   repositories.MatchRepository
	uploader    storage.FileUploader
	logger      *slog.Logger
}

func NewPublicService(
	champRepo repositories.ChampionshipRepository,
	teamRepo repositories.TeamRepository,
	athleteRepo repositories.AthleteRepository,
	sponsorRepo repositories.SponsorRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) PublicService {
	return &publicService{
		champRepo:   champRepo,
		teamRepo:    teamRepo,
		athleteRepo: athleteRepo,
		sponsorRepo: sponsorRepo,
		matchRepo:   matchRepo,
		uploader:    uploader,
		logger:      logger,
	}
}

func (s *publicService) List(ctx context.Context, sport, query string) ([]*models.Championship, error) {
	sport = strings.ToLower(strings.TrimSpace(sport))
	if sport != "" && !slices.Contains(models.Sports, sport) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSport, sport)
	}
	championships, err := s.champRepo.ListPublic(ctx, repositories.PublicFilter{
		Sport: sport,
		Query: strings.TrimSpace(query),
		Limit: publicDirectoryLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list public championships: %w", err)
	}
	for _, c := range championships {
		populateChampionshipMedia(c, s.uploader)
	}
	return championships, nil
}

func (s *publicService) Get(ctx context.Context, championshipID int) (*models.PublicChampionship, error) {
	championship, err := s.loadPublished(ctx, championshipID)
	if err != nil {
		return nil, err
	}

	var (
		teams    []*models.Team
		athletes []*models.Athlete
		sponsors []*models.Sponsor
		matches  []*models.Match
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = s.teamRepo.ListByChampionship(gctx, nil, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list teams: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		athletes, err = s.athleteRepo.ListByChampionship(gctx, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list athletes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		sponsors, err = s.sponsorRepo.ListByChampionship(gctx, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list sponsors: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByChampionship(gctx, championshipID, nil)
		if err != nil {
			return fmt.Errorf("failed to list matches: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byTeam := make(map[int]*models.Team, len(teams))
	for _, t := range teams {
		byTeam[t.ID] = t
	}
	for _, a := range athletes {
		if t, ok := byTeam[a.TeamID]; ok {
			athlete := *a
			athlete.Document = nil
			t.Athletes = append(t.Athletes, athlete)
		}
	}
	for _, sp := range sponsors {
		if t, ok := byTeam[sp.TeamID]; ok {
			t.Sponsors = append(t.Sponsors, *sp)
		}
	}

	page := &models.PublicChampionship{
		Championship: championship,
		Teams:        make([]models.Team, 0, len(teams)),
		Matches:      make([]models.Match, 0, len(matches)),
	}
	for _, t := range teams {
		populateTeamMedia(t, s.uploader)
		page.Teams = append(page.Teams, *t)
	}
	attachTeams(matches, teams)
	for _, m := range matches {
		page.Matches = append(page.Matches, *m)
	}
	if championship.Config.ShowStatsPublicly {
		page.Standings = ComputeStandings(teams, matches, championship.Config)
	}
	populateChampionshipMedia(championship, s.uploader)
	return page, nil
}

func (s *publicService) Standings(ctx context.Context, championshipID int) ([]models.Standing, error) {
	championship, err := s.loadPublished(ctx, championshipID)
	if err != nil {
		return nil, err
	}
	if !championship.Config.ShowStatsPublicly {
		return nil, ErrStatsHidden
	}
	teams, err := s.teamRepo.ListByChampionship(ctx, nil, championshipID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	matches, err := s.matchRepo.ListByChampionship(ctx, championshipID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return ComputeStandings(teams, matches, championship.Config), nil
}

func (s *publicService) StandingsChart(ctx context.Context, championshipID int) ([]byte, error) {
	standings, err := s.Standings(ctx, championshipID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := charts.RenderStandingsPNG(&buf, standings); err != nil {
		return nil, fmt.Errorf("failed to render standings chart: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *publicService) CheckPublished(ctx context.Context, championshipID int) error {
	_, err := s.loadPublished(ctx, championshipID)
	return err
}

func (s *publicService) loadPublished(ctx context.Context, championshipID int) (*models.Championship, error) {
	championship, err := s.champRepo.GetByID(ctx, championshipID)
	if err != nil {
		if errors.Is(err, repositories.ErrChampionshipNotFound) {
			return nil, ErrChampionshipNotFound
		}
		return nil, fmt.Errorf("failed to get championship %d: %w", championshipID, err)
	}
	if championship.Status == models.ChampionshipDraft {
		return nil, ErrChampionshipNotPublic
	}
	return championship, nil
}
