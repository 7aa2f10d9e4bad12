package cli

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"geoquiz/internal/app"
	"geoquiz/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed sample_questions.yaml
var sampleQuestions []byte

type seedFile struct {
	Questions []seedQuestion `yaml:"questions"`
}

// seedQuestion is one authored question. Answer holds "true"/"false" for
// true_false and the accepted answer for open_ended.
type seedQuestion struct {
	Type         string   `yaml:"type"`
	Text         string   `yaml:"text"`
	Continent    string   `yaml:"continent"`
	Answer       string   `yaml:"answer"`
	Alternatives []string `yaml:"alternatives"`
	Options      []string `yaml:"options"`
	Correct      int      `yaml:"correct"`
}

// NewSeedCmd stages questions from a YAML file and saves them as one batch.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load questions from a YAML file (built-in sample set by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			data := sampleQuestions
			if file != "" {
				raw, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				data = raw
			}
			batch, err := parseSeed(data)
			if err != nil {
				return err
			}

			d, err := loadDeps(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer d.Close()

			staged := batch.Len()
			saved, err := d.service.SaveBatch(cmd.Context(), batch)
			fmt.Fprintf(cmd.OutOrStdout(), "saved %d of %d questions\n", len(saved), staged)
			if err != nil {
				d.log.Error("seed stopped", zap.Int("saved", len(saved)), zap.Int("remaining", batch.Len()), zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with questions")
	return cmd
}

func parseSeed(data []byte) (*app.PendingBatch, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	batch := app.NewPendingBatch()
	for i, sq := range f.Questions {
		q, err := sq.build()
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		if err := batch.Add(q); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return batch, nil
}

func (sq seedQuestion) build() (domain.Question, error) {
	continent, err := domain.ParseContinent(sq.Continent)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(sq.Type)) {
	case "true_false", "truefalse":
		switch strings.ToLower(strings.TrimSpace(sq.Answer)) {
		case "true":
			return domain.NewTrueFalse(sq.Text, true, continent)
		case "false":
			return domain.NewTrueFalse(sq.Text, false, continent)
		}
		return nil, fmt.Errorf("true_false answer must be true or false, got %q", sq.Answer)
	case "open_ended", "openended":
		return domain.NewOpenEnded(sq.Text, sq.Answer, continent, sq.Alternatives)
	case "multiple_choice", "multiplechoice":
		return domain.NewMultipleChoice(sq.Text, sq.Options, sq.Correct, continent)
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownQuestionType, sq.Type)
}
