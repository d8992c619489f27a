package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type ChampionshipStatus string

const (
	ChampionshipDraft    ChampionshipStatus = "draft"
	ChampionshipActive   ChampionshipStatus = "active"
	ChampionshipFinished ChampionshipStatus = "finished"
)

// Типы соревнований, которые показывает дашборд.
const (
	TypeGroupsAndKnockout = "groups_knockout"
	TypeLeague            = "league"
	TypeLeagueAndPlayoffs = "league_playoffs"
	TypeKnockout          = "knockout"
)

var Sports = []string{"football", "futsal", "volleyball", "beach_volleyball", "handball", "basketball", "society"}

type TieBreaker string

const (
	TieBreakerWins           TieBreaker = "wins"
	TieBreakerGoalDifference TieBreaker = "goal_difference"
	TieBreakerGoalsFor       TieBreaker = "goals_for"
	TieBreakerHeadToHead     TieBreaker = "head_to_head"
)

type Championship struct {
	ID          int                `json:"id" db:"id"`
	OrganizerID int                `json:"organizer_id" db:"organizer_id"`
	Name        string             `json:"name" db:"name"`
	Sport       string             `json:"sport" db:"sport"`
	Type        string             `json:"type" db:"type"`
	StartDate   *time.Time         `json:"start_date,omitempty" db:"start_date"`
	EndDate     *time.Time         `json:"end_date,omitempty" db:"end_date"`
	Location    *string            `json:"location,omitempty" db:"location"`
	Description *string            `json:"description,omitempty" db:"description"`
	Status      ChampionshipStatus `json:"status" db:"status"`
	Config      ChampionshipConfig `json:"config" db:"config"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`

	LogoKey  *string `json:"-" db:"logo_key"`
	LogoURL  *string `json:"logo_url,omitempty" db:"-"`
	CoverKey *string `json:"-" db:"cover_key"`
	CoverURL *string `json:"cover_url,omitempty" db:"-"`
}

type Suspensions struct {
	YellowCards int `json:"yellow_cards"`
	RedCards    int `json:"red_cards"`
}

type Prizes struct {
	First  string `json:"first,omitempty"`
	Second string `json:"second,omitempty"`
	Third  string `json:"third,omitempty"`
}

type OrganizerContact struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// ChampionshipConfig is stored as JSONB in championships.config.
type ChampionshipConfig struct {
	PointsWin         int              `json:"points_win"`
	PointsDraw        int              `json:"points_draw"`
	PointsLoss        int              `json:"points_loss"`
	Legs              int              `json:"legs"`
	TieBreakers       []TieBreaker     `json:"tie_breakers"`
	Suspensions       Suspensions      `json:"suspensions"`
	Prizes            Prizes           `json:"prizes"`
	PublicInscription bool             `json:"public_inscription"`
	ShowStatsPublicly bool             `json:"show_stats_publicly"`
	AllowComments     bool             `json:"allow_comments"`
	Contact           OrganizerContact `json:"contact"`
}

func DefaultChampionshipConfig() ChampionshipConfig {
	return ChampionshipConfig{
		PointsWin:  3,
		PointsDraw: 1,
		PointsLoss: 0,
		Legs:       1,
		TieBreakers: []TieBreaker{
			TieBreakerWins,
			TieBreakerGoalDifference,
			TieBreakerGoalsFor,
			TieBreakerHeadToHead,
		},
		Suspensions:       Suspensions{YellowCards: 3, RedCards: 1},
		ShowStatsPublicly: true,
	}
}

// Value returns a string because lib/pq sends []byte parameters as bytea.
func (c ChampionshipConfig) Value() (driver.Value, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (c *ChampionshipConfig) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*c = DefaultChampionshipConfig()
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("championship config: unsupported source type")
	}
	cfg := DefaultChampionshipConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return err
	}
	*c = cfg
	return nil
}
