// Command champctl previews and exports round-robin schedules without a database.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Dosada05/championship-system/export"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "champctl",
		Short: "Offline tools for championship schedules",
	}

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Preview and export round-robin schedules",
	}

	var (
		leagueFile string
		teamsFlag  string
		legs       int
	)
	scheduleCmd.PersistentFlags().StringVarP(&leagueFile, "file", "f", "", "Path to a league YAML file")
	scheduleCmd.PersistentFlags().StringVar(&teamsFlag, "teams", "", "Comma separated team names, in registration order")
	scheduleCmd.PersistentFlags().IntVar(&legs, "legs", 0, "1 for single, 2 for double round-robin (overrides the file)")

	resolve := func() (*Plan, error) {
		league, err := resolveLeague(leagueFile, teamsFlag, legs)
		if err != nil {
			return nil, err
		}
		return buildPlan(league)
	}

	previewCmd := &cobra.Command{
		Use:          "preview",
		Short:        "Print the schedule as a table",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := resolve()
			if err != nil {
				return err
			}
			return printPlan(cmd.OutOrStdout(), plan)
		},
	}

	var outputFile string
	exportCmd := &cobra.Command{
		Use:          "export",
		Short:        "Write the schedule to an Excel workbook",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := resolve()
			if err != nil {
				return err
			}
			f, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("creating %s: %w", outputFile, err)
			}
			if err := export.WriteSchedule(f, plan.Championship, plan.Teams, plan.Matches); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d matches to %s\n", len(plan.Matches), outputFile)
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "schedule.xlsx", "Output Excel file path")

	scheduleCmd.AddCommand(previewCmd, exportCmd)
	rootCmd.AddCommand(scheduleCmd)
	return rootCmd
}

// resolveLeague combines the league file with command line overrides.
func resolveLeague(path, teams string, legs int) (*League, error) {
	league := &League{}
	if path != "" {
		loaded, err := loadLeague(path)
		if err != nil {
			return nil, err
		}
		league = loaded
	}
	if teams != "" {
		league.Teams = splitTeams(teams)
	}
	if legs != 0 {
		league.Legs = legs
	}
	if len(league.Teams) == 0 {
		return nil, errors.New("no teams given; pass --teams or --file")
	}
	return league, nil
}
