package domain

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// QuestionType is the persisted discriminant of a question variant.
type QuestionType int

const (
	TypeTrueFalse      QuestionType = 1
	TypeOpenEnded      QuestionType = 2
	TypeMultipleChoice QuestionType = 3
)

const (
	MinQuestionTextLen = 10
	MaxQuestionTextLen = 500
	// OptionCount is the fixed number of options on a multiple choice question.
	OptionCount = 4
	// FieldDelimiter separates entries inside the options and alternative answer columns.
	FieldDelimiter = "|"
)

func (t QuestionType) Valid() bool {
	return t >= TypeTrueFalse && t <= TypeMultipleChoice
}

func (t QuestionType) String() string {
	switch t {
	case TypeTrueFalse:
		return "TrueFalse"
	case TypeOpenEnded:
		return "OpenEnded"
	case TypeMultipleChoice:
		return "MultipleChoice"
	}
	return fmt.Sprintf("QuestionType(%d)", int(t))
}

// Question is implemented by exactly three variants: *TrueFalse, *OpenEnded and *MultipleChoice.
// Values are immutable; edits build a new value and reattach the identity with WithIdentity.
type Question interface {
	ID() int64
	Text() string
	CorrectAnswer() string
	Continent() Continent
	CreatedDate() time.Time
	Type() QuestionType
	// CheckAnswer never fails; blank input is always wrong.
	CheckAnswer(userAnswer string) bool
	DisplayText() string
	FormattedCorrectAnswer() string

	withIdentity(id int64, createdDate time.Time) Question
}

// WithIdentity returns a copy of q carrying a store-assigned ID and its original creation date.
func WithIdentity(q Question, id int64, createdDate time.Time) Question {
	return q.withIdentity(id, createdDate)
}

type questionBase struct {
	id            int64
	text          string
	correctAnswer string
	continent     Continent
	createdDate   time.Time
}

func newQuestionBase(text, correctAnswer string, continent Continent) (questionBase, error) {
	text = strings.TrimSpace(text)
	correctAnswer = strings.TrimSpace(correctAnswer)
	switch n := utf8.RuneCountInString(text); {
	case n == 0:
		return questionBase{}, invalidQuestion("questionText", "cannot be empty")
	case n < MinQuestionTextLen:
		return questionBase{}, invalidQuestion("questionText", fmt.Sprintf("must be at least %d characters long", MinQuestionTextLen))
	case n > MaxQuestionTextLen:
		return questionBase{}, invalidQuestion("questionText", fmt.Sprintf("cannot be longer than %d characters", MaxQuestionTextLen))
	}
	if correctAnswer == "" {
		return questionBase{}, invalidQuestion("correctAnswer", "cannot be empty")
	}
	if !continent.Valid() {
		return questionBase{}, invalidQuestion("continent", fmt.Sprintf("unknown continent %d", int(continent)))
	}
	return questionBase{
		text:          text,
		correctAnswer: correctAnswer,
		continent:     continent,
		createdDate:   time.Now().Truncate(time.Second),
	}, nil
}

func (b questionBase) ID() int64              { return b.id }
func (b questionBase) Text() string           { return b.text }
func (b questionBase) CorrectAnswer() string  { return b.correctAnswer }
func (b questionBase) Continent() Continent   { return b.continent }
func (b questionBase) CreatedDate() time.Time { return b.createdDate }

func (b questionBase) header() string {
	return fmt.Sprintf("[%s] %s", b.continent, b.text)
}

// TrueFalse accepts a handful of affirmative/negative spellings.
type TrueFalse struct {
	questionBase
}

var (
	affirmativeAnswers = map[string]bool{"true": true, "yes": true, "1": true, "correct": true, "right": true}
	negativeAnswers    = map[string]bool{"false": true, "no": true, "0": true, "incorrect": true, "wrong": true}
)

func NewTrueFalse(text string, answer bool, continent Continent) (*TrueFalse, error) {
	correct := "False"
	if answer {
		correct = "True"
	}
	base, err := newQuestionBase(text, correct, continent)
	if err != nil {
		return nil, err
	}
	return &TrueFalse{questionBase: base}, nil
}

func (q *TrueFalse) Type() QuestionType { return TypeTrueFalse }

// Answer is the boolean form of the correct answer.
func (q *TrueFalse) Answer() bool { return q.correctAnswer == "True" }

func (q *TrueFalse) CheckAnswer(userAnswer string) bool {
	answer := strings.ToLower(strings.TrimSpace(userAnswer))
	switch {
	case affirmativeAnswers[answer]:
		return q.Answer()
	case negativeAnswers[answer]:
		return !q.Answer()
	}
	return false
}

func (q *TrueFalse) DisplayText() string {
	return q.header() + "\n\nTrue or False?"
}

func (q *TrueFalse) FormattedCorrectAnswer() string {
	if q.Answer() {
		return "True"
	}
	return "False"
}

func (q *TrueFalse) withIdentity(id int64, createdDate time.Time) Question {
	c := *q
	c.id, c.createdDate = id, createdDate
	return &c
}

// OpenEnded matches free text after normalization against the answer and its synonyms.
type OpenEnded struct {
	questionBase
	alternatives []string
}

func NewOpenEnded(text, answer string, continent Continent, alternatives []string) (*OpenEnded, error) {
	base, err := newQuestionBase(text, answer, continent)
	if err != nil {
		return nil, err
	}
	alts := make([]string, 0, len(alternatives))
	for _, alt := range alternatives {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			continue
		}
		if strings.Contains(alt, FieldDelimiter) {
			return nil, invalidQuestion("alternativeAnswers", "cannot contain "+FieldDelimiter)
		}
		alts = append(alts, alt)
	}
	return &OpenEnded{questionBase: base, alternatives: alts}, nil
}

func (q *OpenEnded) Type() QuestionType { return TypeOpenEnded }

// AlternativeAnswers returns a copy of the accepted synonyms in insertion order.
func (q *OpenEnded) AlternativeAnswers() []string {
	return append([]string(nil), q.alternatives...)
}

// WithAlternative returns a copy with one more synonym. Blank or already known
// (case-insensitively) synonyms leave the question unchanged.
func (q *OpenEnded) WithAlternative(answer string) (*OpenEnded, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return q, nil
	}
	for _, alt := range q.alternatives {
		if strings.EqualFold(alt, answer) {
			return q, nil
		}
	}
	if strings.Contains(answer, FieldDelimiter) {
		return nil, invalidQuestion("alternativeAnswers", "cannot contain "+FieldDelimiter)
	}
	c := *q
	c.alternatives = append(q.AlternativeAnswers(), answer)
	return &c, nil
}

func (q *OpenEnded) CheckAnswer(userAnswer string) bool {
	answer := NormalizeAnswer(userAnswer)
	if answer == "" {
		return false
	}
	if answer == NormalizeAnswer(q.correctAnswer) {
		return true
	}
	for _, alt := range q.alternatives {
		if answer == NormalizeAnswer(alt) {
			return true
		}
	}
	return false
}

func (q *OpenEnded) DisplayText() string {
	return q.header() + "\n\nEnter your answer (1-4 words):"
}

func (q *OpenEnded) FormattedCorrectAnswer() string {
	if len(q.alternatives) == 0 {
		return q.correctAnswer
	}
	return strings.Join(append([]string{q.correctAnswer}, q.alternatives...), " / ")
}

func (q *OpenEnded) withIdentity(id int64, createdDate time.Time) Question {
	c := *q
	c.id, c.createdDate = id, createdDate
	return &c
}

// MultipleChoice has exactly four options; the correct answer is always options[correctIndex].
type MultipleChoice struct {
	questionBase
	options      [OptionCount]string
	correctIndex int
}

func NewMultipleChoice(text string, options []string, correctIndex int, continent Continent) (*MultipleChoice, error) {
	if len(options) != OptionCount {
		return nil, invalidQuestion("options", fmt.Sprintf("must provide exactly %d options, got %d", OptionCount, len(options)))
	}
	if correctIndex < 0 || correctIndex >= OptionCount {
		return nil, invalidQuestion("correctOptionIndex", fmt.Sprintf("must be between 0 and %d, got %d", OptionCount-1, correctIndex))
	}
	var opts [OptionCount]string
	for i, opt := range options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			return nil, invalidQuestion("options", fmt.Sprintf("option %c cannot be empty", 'A'+i))
		}
		if strings.Contains(opt, FieldDelimiter) {
			return nil, invalidQuestion("options", fmt.Sprintf("option %c cannot contain %s", 'A'+i, FieldDelimiter))
		}
		for j := 0; j < i; j++ {
			if strings.EqualFold(opts[j], opt) {
				return nil, invalidQuestion("options", fmt.Sprintf("options %c and %c are duplicates", 'A'+j, 'A'+i))
			}
		}
		opts[i] = opt
	}
	base, err := newQuestionBase(text, opts[correctIndex], continent)
	if err != nil {
		return nil, err
	}
	return &MultipleChoice{questionBase: base, options: opts, correctIndex: correctIndex}, nil
}

func (q *MultipleChoice) Type() QuestionType { return TypeMultipleChoice }

func (q *MultipleChoice) Options() []string {
	return append([]string(nil), q.options[:]...)
}

func (q *MultipleChoice) CorrectOptionIndex() int { return q.correctIndex }

func (q *MultipleChoice) CorrectOptionLetter() rune {
	return rune('A' + q.correctIndex)
}

func (q *MultipleChoice) Option(index int) (string, error) {
	if index < 0 || index >= OptionCount {
		return "", fmt.Errorf("option index %d out of range", index)
	}
	return q.options[index], nil
}

// CheckAnswer tries, in order: a letter A-D, a number 1-4, then the option text.
// The first encoding that matches decides; a digit-string option is therefore read as a number.
func (q *MultipleChoice) CheckAnswer(userAnswer string) bool {
	answer := strings.TrimSpace(userAnswer)
	if answer == "" {
		return false
	}
	if upper := strings.ToUpper(answer); len(upper) == 1 && upper[0] >= 'A' && upper[0] <= 'D' {
		return int(upper[0]-'A') == q.correctIndex
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= OptionCount {
		return n-1 == q.correctIndex
	}
	for i, opt := range q.options {
		if strings.EqualFold(opt, answer) {
			return i == q.correctIndex
		}
	}
	return false
}

func (q *MultipleChoice) DisplayText() string {
	var b strings.Builder
	b.WriteString(q.header())
	b.WriteString("\n\n")
	for i, opt := range q.options {
		fmt.Fprintf(&b, "%c. %s\n", 'A'+i, opt)
	}
	b.WriteString("\nSelect A, B, C, or D:")
	return b.String()
}

func (q *MultipleChoice) FormattedCorrectAnswer() string {
	return fmt.Sprintf("%c. %s", q.CorrectOptionLetter(), q.correctAnswer)
}

// Shuffled returns a copy with the options permuted by Fisher-Yates; the correct
// index follows the correct option. A nil rnd uses a time-seeded source.
func (q *MultipleChoice) Shuffled(rnd *rand.Rand) *MultipleChoice {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	c := *q
	for i := OptionCount - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		c.options[i], c.options[j] = c.options[j], c.options[i]
		switch c.correctIndex {
		case i:
			c.correctIndex = j
		case j:
			c.correctIndex = i
		}
	}
	c.correctAnswer = c.options[c.correctIndex]
	return &c
}

func (q *MultipleChoice) withIdentity(id int64, createdDate time.Time) Question {
	c := *q
	c.id, c.createdDate = id, createdDate
	return &c
}
