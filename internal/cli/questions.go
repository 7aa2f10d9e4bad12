package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"geoquiz/internal/domain"
	"geoquiz/internal/infra/sqlstore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewQuestionsCmd groups the question bank maintenance commands.
func NewQuestionsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Inspect and maintain the question bank",
	}

	var continent string
	list := &cobra.Command{
		Use:   "list",
		Short: "List questions, optionally for one continent",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := domain.ParseContinentFilter(continent)
			if err != nil {
				return err
			}
			d, err := loadDeps(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer d.Close()

			questions, err := d.service.ListQuestions(cmd.Context(), filter)
			var skipped domain.DecodeErrors
			if errors.As(err, &skipped) {
				d.log.Warn("some questions could not be read", zap.Int("skipped", len(skipped)), zap.Error(err))
			} else if err != nil {
				return err
			}
			printQuestions(cmd.OutOrStdout(), questions)
			return nil
		},
	}
	list.Flags().StringVar(&continent, "continent", "all", "continent name or ordinal, or all")

	count := &cobra.Command{
		Use:   "count",
		Short: "Count questions per continent",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDeps(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer d.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, c := range domain.Continents() {
				n, err := d.service.CountQuestions(cmd.Context(), domain.OnlyContinent(c))
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s %s\t%d\n", c.Emoji(), c, n)
			}
			total, err := d.service.CountQuestions(cmd.Context(), domain.AllContinents())
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%d\n", domain.AllContinentsName, total)
			return w.Flush()
		},
	}

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show one question with its answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid question id %q", args[0])
			}
			d, err := loadDeps(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer d.Close()

			q, err := d.service.Question(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "#%d %s (%s, created %s)\n", q.ID(), q.Type(), q.Continent(), sqlstore.FormatDate(q.CreatedDate()))
			fmt.Fprintln(out, q.DisplayText())
			fmt.Fprintf(out, "Answer: %s\n", q.FormattedCorrectAnswer())
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid question id %q", args[0])
			}
			d, err := loadDeps(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.service.DeleteQuestion(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted question %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, count, show, remove)
	return cmd
}

func printQuestions(out io.Writer, questions []domain.Question) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tCONTINENT\tQUESTION\tANSWER")
	for _, q := range questions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", q.ID(), q.Type(), q.Continent(), q.Text(), q.CorrectAnswer())
	}
	w.Flush()
}
