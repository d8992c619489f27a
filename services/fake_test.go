package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/championship-system/models"
	"github.com/Dosada05/championship-system/repositories"
	"github.com/Dosada05/championship-system/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

// --- Users ---

type fakeUserRepo struct {
	CreateFunc        func(ctx context.Context, user *models.User) error
	GetByIDFunc       func(ctx context.Context, id int) (*models.User, error)
	GetByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	LockForUpdateFunc func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.User, error)
	UpdatePlanFunc    func(ctx context.Context, id int, plan models.Plan) error
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, user)
	}
	user.ID = 1
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return &models.User{ID: id, Plan: models.PlanStarter}, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.GetByEmailFunc != nil {
		return f.GetByEmailFunc(ctx, email)
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) LockForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.User, error) {
	if f.LockForUpdateFunc != nil {
		return f.LockForUpdateFunc(ctx, exec, id)
	}
	return f.GetByID(ctx, id)
}

func (f *fakeUserRepo) UpdatePlan(ctx context.Context, id int, plan models.Plan) error {
	if f.UpdatePlanFunc != nil {
		return f.UpdatePlanFunc(ctx, id, plan)
	}
	return nil
}

// --- Championships ---

type fakeChampionshipRepo struct {
	CreateFunc                 func(ctx context.Context, exec repositories.SQLExecutor, c *models.Championship) error
	GetByIDFunc                func(ctx context.Context, id int) (*models.Championship, error)
	LockForUpdateFunc          func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Championship, error)
	ListByOrganizerFunc        func(ctx context.Context, organizerID int) ([]*models.Championship, error)
	ListPublicFunc             func(ctx context.Context, filter repositories.PublicFilter) ([]*models.Championship, error)
	CountActiveByOrganizerFunc func(ctx context.Context, exec repositories.SQLExecutor, organizerID int) (int, error)
	UpdateFunc                 func(ctx context.Context, c *models.Championship) error
	UpdateStatusFunc           func(ctx context.Context, id int, status models.ChampionshipStatus) error
	UpdateLogoKeyFunc          func(ctx context.Context, id int, key *string) error
	UpdateCoverKeyFunc         func(ctx context.Context, id int, key *string) error
	DeleteFunc                 func(ctx context.Context, id int) error
}

// ownedBy returns a GetByID func serving one championship.
func ownedBy(c models.Championship) func(ctx context.Context, id int) (*models.Championship, error) {
	return func(ctx context.Context, id int) (*models.Championship, error) {
		if id != c.ID {
			return nil, repositories.ErrChampionshipNotFound
		}
		copied := c
		return &copied, nil
	}
}

func (f *fakeChampionshipRepo) Create(ctx context.Context, exec repositories.SQLExecutor, c *models.Championship) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, exec, c)
	}
	c.ID = 1
	return nil
}

func (f *fakeChampionshipRepo) GetByID(ctx context.Context, id int) (*models.Championship, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrChampionshipNotFound
}

func (f *fakeChampionshipRepo) LockForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Championship, error) {
	if f.LockForUpdateFunc != nil {
		return f.LockForUpdateFunc(ctx, exec, id)
	}
	return f.GetByID(ctx, id)
}

func (f *fakeChampionshipRepo) ListByOrganizer(ctx context.Context, organizerID int) ([]*models.Championship, error) {
	if f.ListByOrganizerFunc != nil {
		return f.ListByOrganizerFunc(ctx, organizerID)
	}
	return nil, nil
}

func (f *fakeChampionshipRepo) ListPublic(ctx context.Context, filter repositories.PublicFilter) ([]*models.Championship, error) {
	if f.ListPublicFunc != nil {
		return f.ListPublicFunc(ctx, filter)
	}
	return []*models.Championship{}, nil
}

func (f *fakeChampionshipRepo) CountActiveByOrganizer(ctx context.Context, exec repositories.SQLExecutor, organizerID int) (int, error) {
	if f.CountActiveByOrganizerFunc != nil {
		return f.CountActiveByOrganizerFunc(ctx, exec, organizerID)
	}
	return 0, nil
}

func (f *fakeChampionshipRepo) Update(ctx context.Context, c *models.Championship) error {
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, c)
	}
	return nil
}

func (f *fakeChampionshipRepo) UpdateStatus(ctx context.Context, id int, status models.ChampionshipStatus) error {
	if f.UpdateStatusFunc != nil {
		return f.UpdateStatusFunc(ctx, id, status)
	}
	return nil
}

func (f *fakeChampionshipRepo) UpdateLogoKey(ctx context.Context, id int, key *string) error {
	if f.UpdateLogoKeyFunc != nil {
		return f.UpdateLogoKeyFunc(ctx, id, key)
	}
	return nil
}

func (f *fakeChampionshipRepo) UpdateCoverKey(ctx context.Context, id int, key *string) error {
	if f.UpdateCoverKeyFunc != nil {
		return f.UpdateCoverKeyFunc(ctx, id, key)
	}
	return nil
}

func (f *fakeChampionshipRepo) Delete(ctx context.Context, id int) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, id)
	}
	return nil
}

// --- Teams ---

type fakeTeamRepo struct {
	CreateFunc              func(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error
	GetByIDFunc             func(ctx context.Context, id int) (*models.Team, error)
	ListByChampionshipFunc  func(ctx context.Context, exec repositories.SQLExecutor, championshipID int) ([]*models.Team, error)
	CountByChampionshipFunc func(ctx context.Context, exec repositories.SQLExecutor, championshipID int) (int, error)
	UpdateFunc              func(ctx context.Context, team *models.Team) error
	UpdateLogoKeyFunc       func(ctx context.Context, id int, key *string) error
	DeleteFunc              func(ctx context.Context, id int) error
}

// teamsOf returns a ListByChampionship func serving fresh copies of teams.
func teamsOf(teams ...models.Team) func(ctx context.Context, exec repositories.SQLExecutor, championshipID int) ([]*models.Team, error) {
	return func(ctx context.Context, exec repositories.SQLExecutor, championshipID int) ([]*models.Team, error) {
		out := make([]*models.Team, 0, len(teams))
		for _, t := range teams {
			copied := t
			out = append(out, &copied)
		}
		return out, nil
	}
}

func (f *fakeTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, exec, team)
	}
	team.ID = 1
	return nil
}

func (f *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrTeamNotFound
}

func (f *fakeTeamRepo) ListByChampionship(ctx context.Context, exec repositories.SQLExecutor, championshipID int) ([]*models.Team, error) {
	if f.ListByChampionshipFunc != nil {
		return f.ListByChampionshipFunc(ctx, exec, championshipID)
	}
	return nil, nil
}

func (f *fakeTeamRepo) CountByChampionship(ctx context.Context, exec repositories.SQLExecutor, championshipID int) (int, error) {
	if f.CountByChampionshipFunc != nil {
		return f.CountByChampionshipFunc(ctx, exec, championshipID)
	}
	return 0, nil
}

func (f *fakeTeamRepo) Update(ctx context.Context, team *models.Team) error {
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, team)
	}
	return nil
}

func (f *fakeTeamRepo) UpdateLogoKey(ctx context.Context, id int, key *string) error {
	if f.UpdateLogoKeyFunc != nil {
		return f.UpdateLogoKeyFunc(ctx, id, key)
	}
	return nil
}

func (f *fakeTeamRepo) Delete(ctx context.Context, id int) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, id)
	}
	return nil
}

// --- Athletes ---

type fakeAthleteRepo struct {
	CreateFunc             func(ctx context.Context, a *models.Athlete) error
	GetByIDFunc            func(ctx context.Context, id int) (*models.Athlete, error)
	ListByTeamFunc         func(ctx context.Context, teamID int) ([]*models.Athlete, error)
	ListByChampionshipFunc func(ctx context.Context, championshipID int) ([]*models.Athlete, error)
	UpdateFunc             func(ctx context.Context, a *models.Athlete) error
	DeleteFunc             func(ctx context.Context, id int) error
}

func (f *fakeAthleteRepo) Create(ctx context.Context, a *models.Athlete) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, a)
	}
	a.ID = 1
	return nil
}

func (f *fakeAthleteRepo) GetByID(ctx context.Context, id int) (*models.Athlete, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrAthleteNotFound
}

func (f *fakeAthleteRepo) ListByTeam(ctx context.Context, teamID int) ([]*models.Athlete, error) {
	if f.ListByTeamFunc != nil {
		return f.ListByTeamFunc(ctx, teamID)
	}
	return nil, nil
}

func (f *fakeAthleteRepo) ListByChampionship(ctx context.Context, championshipID int) ([]*models.Athlete, error) {
	if f.ListByChampionshipFunc != nil {
		return f.ListByChampionshipFunc(ctx, championshipID)
	}
	return nil, nil
}

func (f *fakeAthleteRepo) Update(ctx context.Context, a *models.Athlete) error {
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, a)
	}
	return nil
}

func (f *fakeAthleteRepo) Delete(ctx context.Context, id int) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, id)
	}
	return nil
}

// --- Sponsors ---

type fakeSponsorRepo struct {
	CreateFunc             func(ctx context.Context, s *models.Sponsor) error
	GetByIDFunc            func(ctx context.Context, id int) (*models.Sponsor, error)
	ListByTeamFunc         func(ctx context.Context, teamID int) ([]*models.Sponsor, error)
	ListByChampionshipFunc func(ctx context.Context, championshipID int) ([]*models.Sponsor, error)
	DeleteFunc             func(ctx context.Context, id int) error
}

func (f *fakeSponsorRepo) Create(ctx context.Context, s *models.Sponsor) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, s)
	}
	s.ID = 1
	return nil
}

func (f *fakeSponsorRepo) GetByID(ctx context.Context, id int) (*models.Sponsor, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrSponsorNotFound
}

func (f *fakeSponsorRepo) ListByTeam(ctx context.Context, teamID int) ([]*models.Sponsor, error) {
	if f.ListByTeamFunc != nil {
		return f.ListByTeamFunc(ctx, teamID)
	}
	return nil, nil
}

func (f *fakeSponsorRepo) ListByChampionship(ctx context.Context, championshipID int) ([]*models.Sponsor, error) {
	if f.ListByChampionshipFunc != nil {
		return f.ListByChampionshipFunc(ctx, championshipID)
	}
	return nil, nil
}

func (f *fakeSponsorRepo) Delete(ctx context.Context, id int) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, id)
	}
	return nil
}

// --- Matches ---

type fakeMatchRepo struct {
	GetByIDFunc                func(ctx context.Context, id int) (*models.Match, error)
	ListByChampionshipFunc     func(ctx context.Context, championshipID int, round *int) ([]*models.Match, error)
	CountByChampionshipFunc    func(ctx context.Context, exec repositories.SQLExecutor, championshipID int) (repositories.MatchCounts, error)
	UpdateResultFunc           func(ctx context.Context, id int, homeScore, awayScore *int, status models.MatchStatus) error
	UpdateScheduledAtFunc      func(ctx context.Context, id int, scheduledAt *time.Time) error
	ReplaceForChampionshipFunc func(ctx context.Context, exec repositories.SQLExecutor, championshipID int, matches []*models.Match) (int, error)
}

func (f *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrMatchNotFound
}

func (f *fakeMatchRepo) ListByChampionship(ctx context.Context, championshipID int, round *int) ([]*models.Match, error) {
	if f.ListByChampionshipFunc != nil {
		return f.ListByChampionshipFunc(ctx, championshipID, round)
	}
	return []*models.Match{}, nil
}

func (f *fakeMatchRepo) CountByChampionship(ctx context.Context, exec repositories.SQLExecutor, championshipID int) (repositories.MatchCounts, error) {
	if f.CountByChampionshipFunc != nil {
		return f.CountByChampionshipFunc(ctx, exec, championshipID)
	}
	return repositories.MatchCounts{}, nil
}

func (f *fakeMatchRepo) UpdateResult(ctx context.Context, id int, homeScore, awayScore *int, status models.MatchStatus) error {
	if f.UpdateResultFunc != nil {
		return f.UpdateResultFunc(ctx, id, homeScore, awayScore, status)
	}
	return nil
}

func (f *fakeMatchRepo) UpdateScheduledAt(ctx context.Context, id int, scheduledAt *time.Time) error {
	if f.UpdateScheduledAtFunc != nil {
		return f.UpdateScheduledAtFunc(ctx, id, scheduledAt)
	}
	return nil
}

func (f *fakeMatchRepo) ReplaceForChampionship(ctx context.Context, exec repositories.SQLExecutor, championshipID int, matches []*models.Match) (int, error) {
	if f.ReplaceForChampionshipFunc != nil {
		return f.ReplaceForChampionshipFunc(ctx, exec, championshipID, matches)
	}
	return 0, nil
}

// --- Storage ---

type fakeUploader struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
	failWith error
}

var _ storage.FileUploader = (*fakeUploader)(nil)

func (f *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return nil, err
	}
	f.uploaded = append(f.uploaded, key)
	return &storage.UploadResult{Key: key, Location: f.GetPublicURL(key)}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

// --- Events and metrics ---

type publishedEvent struct {
	ChampionshipID int
	Type           string
	Payload        interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakePublisher) PublishChampionshipEvent(championshipID int, eventType string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{championshipID, eventType, payload})
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type scheduleRecord struct {
	step     string
	failed   bool
	fixtures int
}

type fakeMetrics struct {
	mu        sync.Mutex
	schedules []scheduleRecord
	results   []string
}

func (f *fakeMetrics) RecordSchedule(step string, err error, fixtures int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schedules = append(f.schedules, scheduleRecord{step, err != nil, fixtures})
}

func (f *fakeMetrics) RecordMatchResult(status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, status)
}
