package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Dosada05/championship-system/broadcast"
	"github.com/Dosada05/championship-system/export"
	"github.com/Dosada05/championship-system/fixtures"
	"github.com/Dosada05/championship-system/models"
	"github.com/Dosada05/championship-system/repositories"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	scheduleStepPreview = "preview"
	scheduleStepConfirm = "confirm"
)

// EventPublisher fans championship events out to live viewers.
type EventPublisher interface {
	PublishChampionshipEvent(championshipID int, eventType string, payload interface{})
}

type ScheduleMetrics interface {
	RecordSchedule(step string, err error, fixtures int)
}

// ScheduleService regenerates a championship's fixtures in two steps:
// Preview computes the schedule and a fingerprint of its inputs without
// writing anything; Confirm, given that fingerprint, atomically replaces the
// stored fixtures.
type ScheduleService interface {
	Preview(ctx context.Context, organizerID, championshipID int) (*models.SchedulePreview, error)
	Confirm(ctx context.Context, organizerID, championshipID int, fingerprint string) (*models.ScheduleResult, error)
	// Export writes the stored schedule as an XLSX workbook.
	Export(ctx context.Context, organizerID, championshipID int, w io.Writer) error
}

type scheduleService struct {
	db        *sql.DB
	champRepo repositories.ChampionshipRepository
	teamRepo  repositories.TeamRepository
	matchRepo repositories.MatchRepository
	publisher EventPublisher
	metrics   ScheduleMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

func NewScheduleService(
	db *sql.DB,
	champRepo repositories.ChampionshipRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	publisher EventPublisher,
	metrics ScheduleMetrics,
	tracer trace.Tracer,
	logger *slog.Logger,
) ScheduleService {
	return &scheduleService{
		db:        db,
		champRepo: champRepo,
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
		publisher: publisher,
		metrics:   metrics,
		tracer:    tracer,
		logger:    logger,
	}
}

// schedulePlan is a generated schedule together with the inputs it came from.
type schedulePlan struct {
	teamIDs     []int
	names       map[int]string
	legs        int
	generator   string
	schedule    fixtures.Schedule[int]
	fingerprint string
}

func (s *scheduleService) Preview(ctx context.Context, organizerID, championshipID int) (preview *models.SchedulePreview, err error) {
	ctx, span := s.tracer.Start(ctx, "ScheduleService.Preview",
		trace.WithAttributes(attribute.Int("championship.id", championshipID)))
	defer span.End()
	defer func() {
		fixtureCount := 0
		if preview != nil {
			fixtureCount = len(preview.Fixtures)
		}
		s.finishStep(ctx, span, scheduleStepPreview, err, fixtureCount)
	}()

	championship, err := loadOwnedChampionship(ctx, s.champRepo, organizerID, championshipID)
	if err != nil {
		return nil, err
	}
	if err := checkSchedulable(championship); err != nil {
		return nil, err
	}

	teams, err := s.teamRepo.ListByChampionship(ctx, nil, championshipID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	counts, err := s.matchRepo.CountByChampionship(ctx, nil, championshipID)
	if err != nil {
		return nil, fmt.Errorf("failed to count existing matches: %w", err)
	}
	plan, err := buildSchedulePlan(teams, championship.Config.Legs, counts)
	if err != nil {
		return nil, err
	}

	preview = &models.SchedulePreview{
		ChampionshipID:  championshipID,
		Fingerprint:     plan.fingerprint,
		Generator:       plan.generator,
		Rounds:          plan.schedule.Rounds(),
		Fixtures:        make([]models.ScheduledFixture, 0, len(plan.schedule)),
		Byes:            plan.schedule.Byes(plan.teamIDs),
		ExistingMatches: counts.Total,
		RecordedResults: counts.Recorded,
	}
	for _, m := range plan.matches(championshipID) {
		preview.Fixtures = append(preview.Fixtures, models.ScheduledFixture{
			Round:      m.Round,
			Sequence:   m.Sequence,
			HomeTeamID: m.HomeTeamID,
			HomeTeam:   plan.names[m.HomeTeamID],
			AwayTeamID: m.AwayTeamID,
			AwayTeam:   plan.names[m.AwayTeamID],
		})
	}
	span.SetAttributes(attribute.Int("schedule.fixtures", len(preview.Fixtures)))
	return preview, nil
}

func (s *scheduleService) Confirm(ctx context.Context, organizerID, championshipID int, fingerprint string) (result *models.ScheduleResult, err error) {
	ctx, span := s.tracer.Start(ctx, "ScheduleService.Confirm",
		trace.WithAttributes(attribute.Int("championship.id", championshipID)))
	defer span.End()
	defer func() {
		fixtureCount := 0
		if result != nil {
			fixtureCount = len(result.Matches)
		}
		s.finishStep(ctx, span, scheduleStepConfirm, err, fixtureCount)
	}()

	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return nil, ErrConfirmationRequired
	}
	if _, err := loadOwnedChampionship(ctx, s.champRepo, organizerID, championshipID); err != nil {
		return nil, err
	}

	var matches []*models.Match
	var discarded, rounds int
	err = runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		// The row lock serialises concurrent confirmations for one championship.
		championship, err := s.champRepo.LockForUpdate(ctx, tx, championshipID)
		if err != nil {
			if errors.Is(err, repositories.ErrChampionshipNotFound) {
				return ErrChampionshipNotFound
			}
			return fmt.Errorf("failed to lock championship: %w", err)
		}
		if championship.OrganizerID != organizerID {
			return ErrForbiddenOperation
		}
		if err := checkSchedulable(championship); err != nil {
			return err
		}

		teams, err := s.teamRepo.ListByChampionship(ctx, tx, championshipID)
		if err != nil {
			return fmt.Errorf("failed to list teams: %w", err)
		}
		// Results recorded after the preview would be discarded silently.
		counts, err := s.matchRepo.CountByChampionship(ctx, tx, championshipID)
		if err != nil {
			return fmt.Errorf("failed to count existing matches: %w", err)
		}
		plan, err := buildSchedulePlan(teams, championship.Config.Legs, counts)
		if err != nil {
			return err
		}
		if plan.fingerprint != fingerprint {
			return ErrScheduleStale
		}

		matches = plan.matches(championshipID)
		rounds = plan.schedule.Rounds()
		discarded, err = s.matchRepo.ReplaceForChampionship(ctx, tx, championshipID, matches)
		if err != nil {
			return fmt.Errorf("failed to replace matches: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result = &models.ScheduleResult{
		ChampionshipID: championshipID,
		Rounds:         rounds,
		Matches:        make([]models.Match, 0, len(matches)),
		Discarded:      discarded,
	}
	for _, m := range matches {
		result.Matches = append(result.Matches, *m)
	}

	s.logger.InfoContext(ctx, "schedule regenerated",
		slog.Int("championship_id", championshipID),
		slog.Int("rounds", rounds),
		slog.Int("matches", len(matches)),
		slog.Int("discarded", discarded))
	s.publisher.PublishChampionshipEvent(championshipID, broadcast.EventScheduleRegenerated, map[string]int{
		"championship_id": championshipID,
		"rounds":          rounds,
		"matches":         len(matches),
	})
	if discarded > 0 {
		s.publisher.PublishChampionshipEvent(championshipID, broadcast.EventStandingsUpdated, map[string]int{
			"championship_id": championshipID,
		})
	}
	return result, nil
}

func (s *scheduleService) Export(ctx context.Context, organizerID, championshipID int, w io.Writer) error {
	championship, err := loadOwnedChampionship(ctx, s.champRepo, organizerID, championshipID)
	if err != nil {
		return err
	}
	teams, err := s.teamRepo.ListByChampionship(ctx, nil, championshipID)
	if err != nil {
		return fmt.Errorf("failed to list teams: %w", err)
	}
	matches, err := s.matchRepo.ListByChampionship(ctx, championshipID, nil)
	if err != nil {
		return fmt.Errorf("failed to list matches: %w", err)
	}
	if err := export.WriteSchedule(w, championship, teams, matches); err != nil {
		return fmt.Errorf("failed to write schedule workbook: %w", err)
	}
	return nil
}

func (s *scheduleService) finishStep(ctx context.Context, span trace.Span, step string, err error, fixtureCount int) {
	s.metrics.RecordSchedule(step, err, fixtureCount)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if !isExpectedScheduleError(err) {
			s.logger.ErrorContext(ctx, "schedule step failed", slog.String("step", step), slog.Any("error", err))
		}
	}
}

func isExpectedScheduleError(err error) bool {
	for _, target := range []error{
		ErrNotEnoughTeams, ErrConfirmationRequired, ErrScheduleStale, ErrScheduleUnsupported,
		ErrChampionshipFinished, ErrChampionshipNotFound, ErrForbiddenOperation,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func checkSchedulable(c *models.Championship) error {
	if c.Status == models.ChampionshipFinished {
		return ErrChampionshipFinished
	}
	if c.Type == models.TypeKnockout {
		return ErrScheduleUnsupported
	}
	return nil
}

// buildSchedulePlan generates the schedule for teams in the order given.
// Repeated team IDs are dropped after their first occurrence. existing
// describes the matches the schedule would replace.
func buildSchedulePlan(teams []*models.Team, legs int, existing repositories.MatchCounts) (*schedulePlan, error) {
	if legs != 2 {
		legs = 1
	}
	plan := &schedulePlan{
		teamIDs: make([]int, 0, len(teams)),
		names:   make(map[int]string, len(teams)),
		legs:    legs,
	}
	for _, t := range teams {
		if t == nil {
			continue
		}
		if _, dup := plan.names[t.ID]; dup {
			continue
		}
		plan.teamIDs = append(plan.teamIDs, t.ID)
		plan.names[t.ID] = t.Name
	}

	generator, err := fixtures.NewRoundRobinGenerator[int](legs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	schedule, err := generator.Generate(plan.teamIDs)
	if err != nil {
		if errors.Is(err, fixtures.ErrInvalidParticipantCount) {
			return nil, fmt.Errorf("%w: championship has %d team(s)", ErrNotEnoughTeams, len(plan.teamIDs))
		}
		return nil, fmt.Errorf("failed to generate schedule: %w", err)
	}

	plan.generator = generator.Name()
	plan.schedule = schedule
	plan.fingerprint = scheduleFingerprint(plan.teamIDs, legs, existing)
	return plan, nil
}

// scheduleFingerprint identifies the generator inputs and the state of the
// matches being replaced. Equal fingerprints produce identical schedules and
// discard the same results.
func scheduleFingerprint(teamIDs []int, legs int, existing repositories.MatchCounts) string {
	var b strings.Builder
	b.WriteString("legs=")
	b.WriteString(strconv.Itoa(legs))
	b.WriteString(";teams=")
	for i, id := range teamIDs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(id))
	}
	fmt.Fprintf(&b, ";matches=%d;recorded=%d;results=%s", existing.Total, existing.Recorded, existing.ResultsDigest)
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// matches converts the schedule to unsaved matches; Sequence is the 1-based
// position inside the round.
func (p *schedulePlan) matches(championshipID int) []*models.Match {
	out := make([]*models.Match, 0, len(p.schedule))
	for round, fixturesInRound := range p.schedule.ByRound() {
		for i, f := range fixturesInRound {
			out = append(out, &models.Match{
				ChampionshipID: championshipID,
				Round:          round + 1,
				Sequence:       i + 1,
				HomeTeamID:     f.Home,
				AwayTeamID:     f.Away,
				Status:         models.MatchStatusScheduled,
			})
		}
	}
	return out
}
