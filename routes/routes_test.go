package routes

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/championship-system/handlers"
	"github.com/Dosada05/championship-system/middleware"
	"github.com/Dosada05/championship-system/models"
	"github.com/Dosada05/championship-system/services"
)

var testSecret = []byte("routes-secret")

type stubAuth struct{ services.AuthService }

func (stubAuth) Login(context.Context, services.LoginInput) (*models.User, error) {
	return nil, services.ErrInvalidCredentials
}

type stubSchedule struct{ services.ScheduleService }

func (stubSchedule) Preview(_ context.Context, organizerID, championshipID int) (*models.SchedulePreview, error) {
	return &models.SchedulePreview{ChampionshipID: championshipID, Fingerprint: "fp"}, nil
}

type stubPublic struct{ services.PublicService }

func (stubPublic) Get(_ context.Context, championshipID int) (*models.PublicChampionship, error) {
	return &models.PublicChampionship{Championship: &models.Championship{ID: championshipID, Name: "Copa"}}, nil
}

func (stubPublic) List(context.Context, string, string) ([]*models.Championship, error) {
	return []*models.Championship{{ID: 4, Name: "Copa"}}, nil
}

func (stubPublic) CheckPublished(context.Context, int) error { return nil }

type stubAthletes struct{ services.AthleteService }

func (stubAthletes) Get(_ context.Context, organizerID, athleteID int) (*models.Athlete, error) {
	return &models.Athlete{ID: athleteID, TeamID: 3, Name: "Bia"}, nil
}

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

type countingObserver struct{ routes []string }

func (o *countingObserver) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	o.routes = append(o.routes, method+" "+route)
}

func newTestRouter(t *testing.T, opts Options) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Handlers{
		Auth:         handlers.NewAuthHandler(stubAuth{}, string(testSecret), logger),
		Championship: handlers.NewChampionshipHandler(nil),
		Team:         handlers.NewTeamHandler(nil),
		Roster:       handlers.NewRosterHandler(stubAthletes{}, nil),
		Schedule:     handlers.NewScheduleHandler(stubSchedule{}),
		Match:        handlers.NewMatchHandler(nil),
		Public:       handlers.NewPublicHandler(stubPublic{}),
		Site:         handlers.NewSiteHandler(services.NewSiteService(opts.Maintenance), okPinger{}, logger),
		Sport:        handlers.NewSportHandler(services.NewSportService()),
		WebSocket:    handlers.NewWebSocketHandler(nil, stubPublic{}, opts.AllowedOrigins, logger),
	}
	opts.JWTSecret = testSecret
	router := chi.NewRouter()
	SetupRoutes(router, h, opts)
	return router
}

func bearer(t *testing.T, userID int) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)
	return "Bearer " + signed
}

func do(router http.Handler, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t, Options{})

	rec := do(router, http.MethodPost, "/api/championships/3/schedule/preview", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(router, http.MethodPost, "/api/championships/3/schedule/preview", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(router, http.MethodPost, "/api/championships/3/schedule/preview", bearer(t, 7))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"fingerprint": "fp"`)
}

func TestMaintenanceClosesPublicSurfaceOnly(t *testing.T) {
	open := newTestRouter(t, Options{})
	rec := do(open, http.MethodGet, "/public/championships/4", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Copa")

	rec = do(open, http.MethodGet, "/public/championships?sport=futsal", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Copa")

	closed := newTestRouter(t, Options{Maintenance: true})
	rec = do(closed, http.MethodGet, "/public/championships/4", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(closed, http.MethodGet, "/public/championships", "").Code)
	assert.Equal(t, "3600", rec.Header().Get("Retry-After"))

	rec = do(closed, http.MethodGet, "/ws/championships/4", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(closed, http.MethodGet, "/api/site", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"maintenance": true`)

	rec = do(closed, http.MethodPost, "/api/championships/3/schedule/preview", bearer(t, 7))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAthleteRoutes(t *testing.T) {
	router := newTestRouter(t, Options{})

	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodGet, "/api/athletes/8", "").Code)

	rec := do(router, http.MethodGet, "/api/athletes/8", bearer(t, 7))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"name": "Bia"`)
}

func TestLoginIsRateLimited(t *testing.T) {
	router := newTestRouter(t, Options{LoginLimiter: middleware.PerMinute(2)})

	login := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@b.com","password":"wrong-pass"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, login())
	assert.Equal(t, http.StatusUnauthorized, login())
	assert.Equal(t, http.StatusTooManyRequests, login())
}

func TestOperationalEndpoints(t *testing.T) {
	observer := &countingObserver{}
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "# metrics\n")
	})
	router := newTestRouter(t, Options{Metrics: observer, MetricsHandler: metricsHandler})

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/openapi.json", "").Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/sports", "").Code)

	rec := do(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics\n", rec.Body.String())

	assert.Contains(t, observer.routes, "GET /healthz")
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, Options{AllowedOrigins: []string{"https://app.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/championships", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
