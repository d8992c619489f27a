package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Dosada05/championship-system/broadcast"
	"github.com/Dosada05/championship-system/export"
	"github.com/Dosada05/championship-system/models"
	"github.com/Dosada05/championship-system/repositories"
)

const (
	testOrganizerID    = 7
	testChampionshipID = 40
)

var noMatches repositories.MatchCounts

type scheduleHarness struct {
	service   ScheduleService
	mock      sqlmock.Sqlmock
	champs    *fakeChampionshipRepo
	teams     *fakeTeamRepo
	matches   *fakeMatchRepo
	publisher *fakePublisher
	metrics   *fakeMetrics
}

func testChampionship() models.Championship {
	return models.Championship{
		ID:          testChampionshipID,
		OrganizerID: testOrganizerID,
		Name:        "Copa da Vila",
		Type:        models.TypeLeague,
		Status:      models.ChampionshipActive,
		Config:      models.DefaultChampionshipConfig(),
	}
}

func registeredTeams(n int) []models.Team {
	teams := make([]models.Team, 0, n)
	for i := 1; i <= n; i++ {
		teams = append(teams, models.Team{ID: i, ChampionshipID: testChampionshipID, Name: string(rune('A' + i - 1))})
	}
	return teams
}

func newScheduleHarness(t *testing.T, championship models.Championship, teams ...models.Team) *scheduleHarness {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := &scheduleHarness{
		mock:      mock,
		champs:    &fakeChampionshipRepo{GetByIDFunc: ownedBy(championship)},
		teams:     &fakeTeamRepo{ListByChampionshipFunc: teamsOf(teams...)},
		matches:   &fakeMatchRepo{},
		publisher: &fakePublisher{},
		metrics:   &fakeMetrics{},
	}
	h.service = NewScheduleService(db, h.champs, h.teams, h.matches, h.publisher, h.metrics,
		noop.NewTracerProvider().Tracer("test"), discardLogger())
	return h
}

func TestScheduleService_Preview(t *testing.T) {
	h := newScheduleHarness(t, testChampionship(), registeredTeams(5)...)
	h.matches.CountByChampionshipFunc = func(ctx context.Context, exec repositories.SQLExecutor, id int) (repositories.MatchCounts, error) {
		return repositories.MatchCounts{Total: 10, Recorded: 4}, nil
	}

	preview, err := h.service.Preview(context.Background(), testOrganizerID, testChampionshipID)
	require.NoError(t, err)

	assert.Equal(t, testChampionshipID, preview.ChampionshipID)
	assert.Equal(t, 5, preview.Rounds)
	assert.Len(t, preview.Fixtures, 10)
	assert.Equal(t, 10, preview.ExistingMatches)
	assert.Equal(t, 4, preview.RecordedResults)
	assert.Equal(t, scheduleFingerprint([]int{1, 2, 3, 4, 5}, 1, repositories.MatchCounts{Total: 10, Recorded: 4}), preview.Fingerprint)
	assert.NotEmpty(t, preview.Generator)

	// Odd team count: every team rests exactly once.
	rested := map[int]int{}
	for _, ids := range preview.Byes {
		for _, id := range ids {
			rested[id]++
		}
	}
	assert.Equal(t, map[int]int{1: 1, 2: 1, 3: 1, 4: 1, 5: 1}, rested)

	first := preview.Fixtures[0]
	assert.Equal(t, 1, first.Round)
	assert.Equal(t, 1, first.Sequence)
	assert.Equal(t, "A", first.HomeTeam)

	require.NoError(t, h.mock.ExpectationsWereMet(), "preview must not open a transaction")
	require.Len(t, h.metrics.schedules, 1)
	assert.Equal(t, scheduleRecord{step: "preview", failed: false, fixtures: 10}, h.metrics.schedules[0])
	assert.Empty(t, h.publisher.types())
}

func TestScheduleService_Preview_Rejections(t *testing.T) {
	knockout := testChampionship()
	knockout.Type = models.TypeKnockout
	finished := testChampionship()
	finished.Status = models.ChampionshipFinished

	tests := []struct {
		name         string
		championship models.Championship
		organizerID  int
		teams        []models.Team
		wantErr      error
	}{
		{"single team", testChampionship(), testOrganizerID, registeredTeams(1), ErrNotEnoughTeams},
		{"no teams", testChampionship(), testOrganizerID, nil, ErrNotEnoughTeams},
		{"knockout", knockout, testOrganizerID, registeredTeams(4), ErrScheduleUnsupported},
		{"finished", finished, testOrganizerID, registeredTeams(4), ErrChampionshipFinished},
		{"other organizer", testChampionship(), testOrganizerID + 1, registeredTeams(4), ErrForbiddenOperation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newScheduleHarness(t, tt.championship, tt.teams...)
			_, err := h.service.Preview(context.Background(), tt.organizerID, testChampionshipID)
			assert.ErrorIs(t, err, tt.wantErr)
			require.Len(t, h.metrics.schedules, 1)
			assert.True(t, h.metrics.schedules[0].failed)
		})
	}
}

func TestScheduleService_Preview_DuplicateTeamsCollapsed(t *testing.T) {
	teams := registeredTeams(3)
	teams = append(teams, teams[0])
	h := newScheduleHarness(t, testChampionship(), teams...)

	preview, err := h.service.Preview(context.Background(), testOrganizerID, testChampionshipID)
	require.NoError(t, err)
	assert.Len(t, preview.Fixtures, 3)
	assert.Equal(t, scheduleFingerprint([]int{1, 2, 3}, 1, noMatches), preview.Fingerprint)
}

func TestScheduleService_Confirm(t *testing.T) {
	h := newScheduleHarness(t, testChampionship(), registeredTeams(4)...)
	var replaced []*models.Match
	h.matches.ReplaceForChampionshipFunc = func(ctx context.Context, exec repositories.SQLExecutor, id int, matches []*models.Match) (int, error) {
		assert.NotNil(t, exec, "replace must run inside the transaction")
		replaced = matches
		return 6, nil
	}
	h.mock.ExpectBegin()
	h.mock.ExpectCommit()

	preview, err := h.service.Preview(context.Background(), testOrganizerID, testChampionshipID)
	require.NoError(t, err)
	result, err := h.service.Confirm(context.Background(), testOrganizerID, testChampionshipID, preview.Fingerprint)
	require.NoError(t, err)
	require.NoError(t, h.mock.ExpectationsWereMet())

	assert.Equal(t, 3, result.Rounds)
	assert.Equal(t, 6, result.Discarded)
	require.Len(t, result.Matches, 6)
	require.Len(t, replaced, 6)

	// The stored schedule is exactly the previewed one.
	for i, f := range preview.Fixtures {
		m := result.Matches[i]
		assert.Equal(t, f.Round, m.Round)
		assert.Equal(t, f.Sequence, m.Sequence)
		assert.Equal(t, f.HomeTeamID, m.HomeTeamID)
		assert.Equal(t, f.AwayTeamID, m.AwayTeamID)
		assert.Equal(t, models.MatchStatusScheduled, m.Status)
		assert.Equal(t, testChampionshipID, m.ChampionshipID)
		assert.Nil(t, m.HomeScore)
	}

	// Every pair meets exactly once.
	pairs := map[[2]int]int{}
	for _, m := range replaced {
		a, b := m.HomeTeamID, m.AwayTeamID
		if a > b {
			a, b = b, a
		}
		pairs[[2]int{a, b}]++
	}
	assert.Len(t, pairs, 6)
	for pair, n := range pairs {
		assert.Equal(t, 1, n, "pair %v", pair)
	}

	assert.Equal(t, []string{broadcast.EventScheduleRegenerated, broadcast.EventStandingsUpdated}, h.publisher.types())
	require.Len(t, h.metrics.schedules, 2)
	assert.Equal(t, scheduleRecord{step: "confirm", failed: false, fixtures: 6}, h.metrics.schedules[1])
}

func TestScheduleService_Confirm_DoubleRoundRobin(t *testing.T) {
	championship := testChampionship()
	championship.Config.Legs = 2
	h := newScheduleHarness(t, championship, registeredTeams(4)...)
	h.mock.ExpectBegin()
	h.mock.ExpectCommit()

	fingerprint := scheduleFingerprint([]int{1, 2, 3, 4}, 2, noMatches)
	result, err := h.service.Confirm(context.Background(), testOrganizerID, testChampionshipID, fingerprint)
	require.NoError(t, err)
	assert.Equal(t, 6, result.Rounds)
	require.Len(t, result.Matches, 12)

	for i := 0; i < 6; i++ {
		first, second := result.Matches[i], result.Matches[i+6]
		assert.Equal(t, first.Round+3, second.Round)
		assert.Equal(t, first.HomeTeamID, second.AwayTeamID)
		assert.Equal(t, first.AwayTeamID, second.HomeTeamID)
	}
	// Nothing was discarded, so standings did not change.
	assert.Equal(t, []string{broadcast.EventScheduleRegenerated}, h.publisher.types())
}

func TestScheduleService_Confirm_RequiresFingerprint(t *testing.T) {
	h := newScheduleHarness(t, testChampionship(), registeredTeams(4)...)

	_, err := h.service.Confirm(context.Background(), testOrganizerID, testChampionshipID, "   ")
	assert.ErrorIs(t, err, ErrConfirmationRequired)
	require.NoError(t, h.mock.ExpectationsWereMet())
	assert.Empty(t, h.publisher.types())
}

func TestScheduleService_Confirm_StaleAfterTeamChange(t *testing.T) {
	h := newScheduleHarness(t, testChampionship(), registeredTeams(4)...)
	preview, err := h.service.Preview(context.Background(), testOrganizerID, testChampionshipID)
	require.NoError(t, err)

	// A fifth team registers between preview and confirmation.
	h.teams.ListByChampionshipFunc = teamsOf(registeredTeams(5)...)
	replaceCalled := false
	h.matches.ReplaceForChampionshipFunc = func(ctx context.Context, exec repositories.SQLExecutor, id int, matches []*models.Match) (int, error) {
		replaceCalled = true
		return 0, nil
	}
	h.mock.ExpectBegin()
	h.mock.ExpectRollback()

	_, err = h.service.Confirm(context.Background(), testOrganizerID, testChampionshipID, preview.Fingerprint)
	assert.ErrorIs(t, err, ErrScheduleStale)
	assert.False(t, replaceCalled)
	require.NoError(t, h.mock.ExpectationsWereMet())
	assert.Empty(t, h.publisher.types())
}

func TestScheduleService_Confirm_StaleAfterResultRecorded(t *testing.T) {
	h := newScheduleHarness(t, testChampionship(), registeredTeams(4)...)
	h.matches.CountByChampionshipFunc = func(ctx context.Context, exec repositories.SQLExecutor, id int) (repositories.MatchCounts, error) {
		return repositories.MatchCounts{Total: 6, Recorded: 1, ResultsDigest: "a1"}, nil
	}
	preview, err := h.service.Preview(context.Background(), testOrganizerID, testChampionshipID)
	require.NoError(t, err)
	assert.Equal(t, 1, preview.RecordedResults)

	// A second result is recorded after the organizer saw the preview.
	var countedInTx bool
	h.matches.CountByChampionshipFunc = func(ctx context.Context, exec repositories.SQLExecutor, id int) (repositories.MatchCounts, error) {
		countedInTx = exec != nil
		return repositories.MatchCounts{Total: 6, Recorded: 2, ResultsDigest: "b2"}, nil
	}
	replaceCalled := false
	h.matches.ReplaceForChampionshipFunc = func(ctx context.Context, exec repositories.SQLExecutor, id int, matches []*models.Match) (int, error) {
		replaceCalled = true
		return 0, nil
	}
	h.mock.ExpectBegin()
	h.mock.ExpectRollback()

	_, err = h.service.Confirm(context.Background(), testOrganizerID, testChampionshipID, preview.Fingerprint)
	assert.ErrorIs(t, err, ErrScheduleStale)
	assert.True(t, countedInTx, "matches must be recounted inside the transaction")
	assert.False(t, replaceCalled)
	require.NoError(t, h.mock.ExpectationsWereMet())
	assert.Empty(t, h.publisher.types())
}

func TestScheduleService_Confirm_RollsBackOnReplaceFailure(t *testing.T) {
	h := newScheduleHarness(t, testChampionship(), registeredTeams(4)...)
	h.matches.ReplaceForChampionshipFunc = func(ctx context.Context, exec repositories.SQLExecutor, id int, matches []*models.Match) (int, error) {
		return 0, errors.New("connection reset")
	}
	h.mock.ExpectBegin()
	h.mock.ExpectRollback()

	_, err := h.service.Confirm(context.Background(), testOrganizerID, testChampionshipID, scheduleFingerprint([]int{1, 2, 3, 4}, 1, noMatches))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	require.NoError(t, h.mock.ExpectationsWereMet())
	assert.Empty(t, h.publisher.types())
	require.Len(t, h.metrics.schedules, 1)
	assert.True(t, h.metrics.schedules[0].failed)
}

func TestScheduleService_Confirm_StatusChangedUnderLock(t *testing.T) {
	h := newScheduleHarness(t, testChampionship(), registeredTeams(4)...)
	h.champs.LockForUpdateFunc = func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Championship, error) {
		c := testChampionship()
		c.Status = models.ChampionshipFinished
		return &c, nil
	}
	h.mock.ExpectBegin()
	h.mock.ExpectRollback()

	_, err := h.service.Confirm(context.Background(), testOrganizerID, testChampionshipID, scheduleFingerprint([]int{1, 2, 3, 4}, 1, noMatches))
	assert.ErrorIs(t, err, ErrChampionshipFinished)
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestScheduleService_Export(t *testing.T) {
	h := newScheduleHarness(t, testChampionship(), registeredTeams(2)...)
	h.matches.ListByChampionshipFunc = func(ctx context.Context, id int, round *int) ([]*models.Match, error) {
		return []*models.Match{
			{ID: 1, ChampionshipID: id, Round: 1, Sequence: 1, HomeTeamID: 1, AwayTeamID: 2, HomeScore: intPtr(2), AwayScore: intPtr(1), Status: models.MatchStatusCompleted},
		}, nil
	}

	var buf bytes.Buffer
	require.NoError(t, h.service.Export(context.Background(), testOrganizerID, testChampionshipID, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.ScheduleSheet)
	require.NoError(t, err)
	assert.Contains(t, rows[len(rows)-1], "2 x 1")
}

func TestScheduleFingerprint(t *testing.T) {
	base := scheduleFingerprint([]int{1, 2, 3}, 1, noMatches)
	assert.Len(t, base, 64)
	assert.Equal(t, base, scheduleFingerprint([]int{1, 2, 3}, 1, noMatches))
	assert.NotEqual(t, base, scheduleFingerprint([]int{2, 1, 3}, 1, noMatches), "order is part of the input")
	assert.NotEqual(t, base, scheduleFingerprint([]int{1, 2, 3}, 2, noMatches))
	assert.NotEqual(t, base, scheduleFingerprint([]int{1, 2, 3, 4}, 1, noMatches))
	assert.NotEqual(t, base, scheduleFingerprint([]int{1, 2, 3}, 1, repositories.MatchCounts{Total: 3}))

	// Same counts, different recorded scores.
	before := scheduleFingerprint([]int{1, 2, 3}, 1, repositories.MatchCounts{Total: 3, Recorded: 1, ResultsDigest: "a"})
	after := scheduleFingerprint([]int{1, 2, 3}, 1, repositories.MatchCounts{Total: 3, Recorded: 1, ResultsDigest: "b"})
	assert.NotEqual(t, before, after)
}
