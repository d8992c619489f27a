package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Dosada05/championship-system/fixtures"
	"github.com/Dosada05/championship-system/models"
)

const dateLayout = "2006-01-02"

// League is the offline description of a championship read from YAML.
type League struct {
	Name      string   `yaml:"name"`
	Legs      int      `yaml:"legs"`
	StartDate string   `yaml:"start_date"`
	DaysApart int      `yaml:"days_between_rounds"`
	Teams     []string `yaml:"teams"`
}

func loadLeague(path string) (*League, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading league file: %w", err)
	}
	var league League
	if err := yaml.Unmarshal(data, &league); err != nil {
		return nil, fmt.Errorf("parsing league file: %w", err)
	}
	return &league, nil
}

// splitTeams parses a comma separated --teams value.
func splitTeams(raw string) []string {
	var teams []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			teams = append(teams, name)
		}
	}
	return teams
}

func (l *League) validate() error {
	if l.Legs == 0 {
		l.Legs = 1
	}
	if l.DaysApart <= 0 {
		l.DaysApart = 7
	}
	seen := make(map[string]bool, len(l.Teams))
	for _, name := range l.Teams {
		key := strings.ToLower(name)
		if seen[key] {
			return fmt.Errorf("team %q is listed twice", name)
		}
		seen[key] = true
	}
	if l.StartDate != "" {
		if _, err := time.Parse(dateLayout, l.StartDate); err != nil {
			return fmt.Errorf("start_date must be YYYY-MM-DD: %w", err)
		}
	}
	return nil
}

// Plan is a generated schedule with teams numbered in listing order.
type Plan struct {
	Championship *models.Championship
	Teams        []*models.Team
	Matches      []*models.Match
	Byes         map[int][]string
	Generator    string
}

func buildPlan(l *League) (*Plan, error) {
	if err := l.validate(); err != nil {
		return nil, err
	}

	generator, err := fixtures.NewRoundRobinGenerator[string](l.Legs)
	if err != nil {
		return nil, err
	}
	schedule, err := generator.Generate(l.Teams)
	if err != nil {
		return nil, err
	}

	name := l.Name
	if name == "" {
		name = "Championship"
	}
	cfg := models.DefaultChampionshipConfig()
	cfg.Legs = l.Legs
	championship := &models.Championship{
		ID:     1,
		Name:   name,
		Type:   models.TypeLeague,
		Status: models.ChampionshipDraft,
		Config: cfg,
	}

	ids := make(map[string]int, len(l.Teams))
	teams := make([]*models.Team, 0, len(l.Teams))
	for i, teamName := range l.Teams {
		ids[teamName] = i + 1
		teams = append(teams, &models.Team{ID: i + 1, ChampionshipID: championship.ID, Name: teamName})
	}

	var start time.Time
	if l.StartDate != "" {
		start, _ = time.Parse(dateLayout, l.StartDate)
	}

	matches := make([]*models.Match, 0, len(schedule))
	for round, fixturesInRound := range schedule.ByRound() {
		for seq, f := range fixturesInRound {
			m := &models.Match{
				ID:             len(matches) + 1,
				ChampionshipID: championship.ID,
				Round:          round + 1,
				Sequence:       seq + 1,
				HomeTeamID:     ids[f.Home],
				AwayTeamID:     ids[f.Away],
				Status:         models.MatchStatusScheduled,
			}
			if !start.IsZero() {
				at := start.AddDate(0, 0, round*l.DaysApart)
				m.ScheduledAt = &at
			}
			matches = append(matches, m)
		}
	}

	return &Plan{
		Championship: championship,
		Teams:        teams,
		Matches:      matches,
		Byes:         schedule.Byes(l.Teams),
		Generator:    generator.Name(),
	}, nil
}

func (p *Plan) teamName(id int) string {
	for _, t := range p.Teams {
		if t.ID == id {
			return t.Name
		}
	}
	return "?"
}

// printPlan writes one row per fixture followed by the rest days.
func printPlan(w io.Writer, p *Plan) error {
	if len(p.Matches) == 0 {
		return errors.New("schedule is empty")
	}
	fmt.Fprintf(w, "%s: %d teams, %d matches (%s)\n\n", p.Championship.Name, len(p.Teams), len(p.Matches), p.Generator)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUND\t#\tHOME\tAWAY\tDATE")
	for _, m := range p.Matches {
		date := "-"
		if m.ScheduledAt != nil {
			date = m.ScheduledAt.Format(dateLayout)
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", m.Round, m.Sequence, p.teamName(m.HomeTeamID), p.teamName(m.AwayTeamID), date)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(p.Byes) > 0 {
		fmt.Fprintln(w)
		rounds := 0
		for _, m := range p.Matches {
			rounds = max(rounds, m.Round)
		}
		for round := 1; round <= rounds; round++ {
			if resting, ok := p.Byes[round]; ok {
				fmt.Fprintf(w, "round %d bye: %s\n", round, strings.Join(resting, ", "))
			}
		}
	}
	return nil
}
