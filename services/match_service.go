package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/championship-system/broadcast"
	"github.com/Dosada05/championship-system/models"
	"github.com/Dosada05/championship-system/repositories"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type MatchMetrics interface {
	RecordMatchResult(status string)
}

type MatchService interface {
	// List returns the championship's matches, optionally for one round, with teams attached.
	List(ctx context.Context, organizerID, championshipID int, round *int) ([]*models.Match, error)
	RecordResult(ctx context.Context, organizerID, matchID int, input RecordResultInput) (*models.Match, error)
	Reschedule(ctx context.Context, organizerID, matchID int, scheduledAt *time.Time) (*models.Match, error)
	Standings(ctx context.Context, organizerID, championshipID int) ([]models.Standing, error)
}

// RecordResultInput sets a match outcome. Status defaults to completed, which
// needs both scores. Canceled and scheduled clear any stored scores.
type RecordResultInput struct {
	HomeScore *int               `json:"home_score"`
	AwayScore *int               `json:"away_score"`
	Status    models.MatchStatus `json:"status,omitempty"`
}

type matchService struct {
	matchRepo repositories.MatchRepository
	teamRepo  repositories.TeamRepository
	champRepo repositories.ChampionshipRepository
	publisher EventPublisher
	metrics   MatchMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	champRepo repositories.ChampionshipRepository,
	publisher EventPublisher,
	metrics MatchMetrics,
	tracer trace.Tracer,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo: matchRepo,
		teamRepo:  teamRepo,
		champRepo: champRepo,
		publisher: publisher,
		metrics:   metrics,
		tracer:    tracer,
		logger:    logger,
	}
}

func (s *matchService) List(ctx context.Context, organizerID, championshipID int, round *int) ([]*models.Match, error) {
	if _, err := loadOwnedChampionship(ctx, s.champRepo, organizerID, championshipID); err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.ListByChampionship(ctx, championshipID, round)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	teams, err := s.teamRepo.ListByChampionship(ctx, nil, championshipID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	attachTeams(matches, teams)
	return matches, nil
}

func (s *matchService) RecordResult(ctx context.Context, organizerID, matchID int, input RecordResultInput) (*models.Match, error) {
	ctx, span := s.tracer.Start(ctx, "MatchService.RecordResult",
		trace.WithAttributes(attribute.Int("match.id", matchID)))
	defer span.End()

	status := input.Status
	if status == "" {
		status = models.MatchStatusCompleted
	}
	homeScore, awayScore := input.HomeScore, input.AwayScore
	switch status {
	case models.MatchStatusCompleted:
		if homeScore == nil || awayScore == nil || *homeScore < 0 || *awayScore < 0 {
			return nil, ErrInvalidScore
		}
	case models.MatchStatusCanceled, models.MatchStatusScheduled:
		homeScore, awayScore = nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMatchStatus, input.Status)
	}

	match, championship, err := s.loadOwnedMatch(ctx, organizerID, matchID)
	if err != nil {
		return nil, err
	}
	if championship.Status == models.ChampionshipFinished {
		return nil, ErrChampionshipFinished
	}

	if err := s.matchRepo.UpdateResult(ctx, matchID, homeScore, awayScore, status); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to update result of match %d: %w", matchID, err)
	}
	match.HomeScore, match.AwayScore, match.Status = homeScore, awayScore, status

	s.metrics.RecordMatchResult(string(status))
	s.logger.InfoContext(ctx, "match result recorded",
		slog.Int("match_id", matchID),
		slog.Int("championship_id", match.ChampionshipID),
		slog.String("status", string(status)))
	s.publisher.PublishChampionshipEvent(match.ChampionshipID, broadcast.EventMatchUpdated, match)
	s.publisher.PublishChampionshipEvent(match.ChampionshipID, broadcast.EventStandingsUpdated, map[string]int{
		"championship_id": match.ChampionshipID,
	})
	return match, nil
}

func (s *matchService) Reschedule(ctx context.Context, organizerID, matchID int, scheduledAt *time.Time) (*models.Match, error) {
	match, championship, err := s.loadOwnedMatch(ctx, organizerID, matchID)
	if err != nil {
		return nil, err
	}
	if championship.Status == models.ChampionshipFinished {
		return nil, ErrChampionshipFinished
	}
	if err := s.matchRepo.UpdateScheduledAt(ctx, matchID, scheduledAt); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to reschedule match %d: %w", matchID, err)
	}
	match.ScheduledAt = scheduledAt
	s.publisher.PublishChampionshipEvent(match.ChampionshipID, broadcast.EventMatchUpdated, match)
	return match, nil
}

func (s *matchService) Standings(ctx context.Context, organizerID, championshipID int) ([]models.Standing, error) {
	championship, err := loadOwnedChampionship(ctx, s.champRepo, organizerID, championshipID)
	if err != nil {
		return nil, err
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

func (s *matchService) loadOwnedMatch(ctx context.Context, organizerID, matchID int) (*models.Match, *models.Championship, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, nil, ErrMatchNotFound
		}
		return nil, nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	championship, err := loadOwnedChampionship(ctx, s.champRepo, organizerID, match.ChampionshipID)
	if err != nil {
		return nil, nil, err
	}
	return match, championship, nil
}

func attachTeams(matches []*models.Match, teams []*models.Team) {
	byID := make(map[int]*models.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}
	for _, m := range matches {
		m.HomeTeam = byID[m.HomeTeamID]
		m.AwayTeam = byID[m.AwayTeamID]
	}
}
