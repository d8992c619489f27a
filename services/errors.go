package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Валидация и бизнес-правила
	ErrValidationFailed        = errors.New("validation failed")
	ErrPasswordTooShort        = errors.New("password must be at least 8 characters long")
	ErrInvalidEmail            = errors.New("email address is not valid")
	ErrNameRequired            = errors.New("name is required")
	ErrInvalidPlan             = errors.New("unknown plan")
	ErrInvalidDateRange        = errors.New("end date must not be before start date")
	ErrInvalidSport            = errors.New("unsupported sport")
	ErrInvalidChampionshipType = errors.New("unsupported championship type")
	ErrInvalidConfig           = errors.New("invalid championship configuration")
	ErrInvalidStatus           = errors.New("invalid championship status")
	ErrInvalidStatusTransition = errors.New("invalid championship status transition")
	ErrInvalidScore            = errors.New("scores must be non-negative and both present for a completed match")
	ErrInvalidMatchStatus      = errors.New("invalid match status")
	ErrInvalidShirtNumber      = errors.New("shirt number must be between 0 and 999")

	// Расписание
	ErrNotEnoughTeams       = errors.New("at least two teams are required to generate a schedule")
	ErrConfirmationRequired = errors.New("schedule regeneration must be confirmed with the preview fingerprint")
	ErrScheduleStale        = errors.New("teams changed since the preview; request a new preview")
	ErrScheduleUnsupported  = errors.New("round-robin schedules are not available for knockout championships")
	ErrChampionshipFinished = errors.New("championship is finished and can no longer be changed")

	// Конфликты
	ErrUserEmailConflict = errors.New("email address is already in use")
	ErrTeamNameConflict  = errors.New("team name is already in use in this championship")

	// Аутентификация и доступ
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrForbiddenOperation    = errors.New("operation not allowed for the current user")
	ErrPlanLimitReached      = errors.New("plan limit reached; upgrade the plan to continue")
	ErrChampionshipNotPublic = errors.New("championship is not published")
	ErrStatsHidden           = errors.New("championship statistics are not public")

	// Не найдено
	ErrUserNotFound         = errors.New("user not found")
	ErrChampionshipNotFound = errors.New("championship not found")
	ErrTeamNotFound         = errors.New("team not found")
	ErrAthleteNotFound      = errors.New("athlete not found")
	ErrSponsorNotFound      = errors.New("sponsor not found")
	ErrMatchNotFound        = errors.New("match not found")
)
