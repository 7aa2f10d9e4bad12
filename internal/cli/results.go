package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"geoquiz/internal/domain"
	"geoquiz/internal/infra/sqlstore"
	"github.com/spf13/cobra"
)

// NewResultsCmd prints quiz history, newest first.
func NewResultsCmd(configPath *string) *cobra.Command {
	var (
		username  string
		since     string
		withStats bool
	)
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show quiz results for everyone or a single user",
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := domain.ParseResultWindow(since)
			if err != nil {
				return err
			}
			d, err := loadDeps(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer d.Close()

			ctx := cmd.Context()
			var (
				results []domain.QuizResult
				stats   domain.ResultStats
			)
			if username == "" {
				results, err = d.service.AllResults(ctx)
				if err != nil {
					return err
				}
				stats = domain.Summarize(results)
				results, err = d.service.AllResultsWithin(ctx, window)
			} else {
				var user domain.User
				user, err = d.users.FindByUsername(ctx, username)
				if err != nil {
					return err
				}
				if stats, err = d.service.UserStats(ctx, user.ID); err != nil {
					return err
				}
				results, err = d.service.UserResultsWithin(ctx, user.ID, window)
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if withStats {
				printStats(out, stats)
			}
			printResults(out, results)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "user", "u", "", "only show results for this username")
	cmd.Flags().StringVar(&since, "since", "all", "limit the listing to all, last10, week or month")
	cmd.Flags().BoolVar(&withStats, "stats", false, "print a summary of the whole history before the listing")
	return cmd
}

// topContinents caps the per-continent breakdown.
const topContinents = 3

func printStats(out io.Writer, stats domain.ResultStats) {
	if stats.Total == 0 {
		fmt.Fprintln(out, "no statistics yet")
		return
	}
	fmt.Fprintf(out, "Total quizzes: %d\n", stats.Total)
	fmt.Fprintf(out, "Average score: %.1f%%\n", stats.AverageScore)
	fmt.Fprintf(out, "Best: %.1f%% (%s) - %s on %s\n", stats.Best.Percentage(), stats.Best.Grade(),
		stats.Best.ContinentName, stats.Best.CompletedDate.Format("2006-01-02"))
	fmt.Fprintf(out, "Most recent: %.1f%% - %s on %s\n", stats.MostRecent.Percentage(),
		stats.MostRecent.ContinentName, stats.MostRecent.CompletedDate.Format("2006-01-02"))
	for i, c := range stats.ByContinent {
		if i == topContinents {
			break
		}
		fmt.Fprintf(out, "  %s: %d quiz(es), %.1f%% average\n", c.Name, c.Count, c.AverageScore)
	}
	fmt.Fprintln(out)
}

func printResults(out io.Writer, results []domain.QuizResult) {
	if len(results) == 0 {
		fmt.Fprintln(out, "no quiz results yet")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tUSER\tCONTINENT\tSCORE\tGRADE\tTIME")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d (%.1f%%)\t%s\t%s\n",
			sqlstore.FormatDate(r.CompletedDate), r.Username, r.ContinentName,
			r.CorrectAnswers, r.TotalQuestions, r.Percentage(), r.Grade(), r.TimeTakenFormatted())
	}
	w.Flush()
}
