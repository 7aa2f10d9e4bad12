package domain

import (
	"errors"
	"math/rand"
	"testing"
	"time"
)

func TestTrueFalseAcceptsBothSpellingSets(t *testing.T) {
	affirmative := []string{"true", "yes", "1", "correct", "right", " TRUE ", "Yes"}
	negative := []string{"false", "no", "0", "incorrect", "wrong", "False", " NO"}

	yes := mustTrueFalse(t, true)
	no := mustTrueFalse(t, false)

	for _, a := range affirmative {
		if !yes.CheckAnswer(a) {
			t.Errorf("expected %q to be accepted when answer is True", a)
		}
		if no.CheckAnswer(a) {
			t.Errorf("expected %q to be rejected when answer is False", a)
		}
	}
	for _, a := range negative {
		if yes.CheckAnswer(a) {
			t.Errorf("expected %q to be rejected when answer is True", a)
		}
		if !no.CheckAnswer(a) {
			t.Errorf("expected %q to be accepted when answer is False", a)
		}
	}
	for _, a := range []string{"", "   ", "maybe", "truth", "y"} {
		if yes.CheckAnswer(a) || no.CheckAnswer(a) {
			t.Errorf("expected %q to be rejected by both questions", a)
		}
	}
	if yes.CorrectAnswer() != "True" || no.CorrectAnswer() != "False" {
		t.Fatalf("unexpected canonical answers %q / %q", yes.CorrectAnswer(), no.CorrectAnswer())
	}
}

func TestOpenEndedMatching(t *testing.T) {
	q, err := NewOpenEnded("What is the capital of Japan?", "Tokyo", Asia, []string{"Tōkyō", "", "  ", "Edo"})
	if err != nil {
		t.Fatalf("new open ended: %v", err)
	}
	if got := len(q.AlternativeAnswers()); got != 2 {
		t.Fatalf("expected blank alternatives dropped, got %d entries", got)
	}

	cases := map[string]bool{
		"Tokyo":   true,
		"tokyo.":  true,
		" TOKYO!": true,
		"Edo":     true,
		"edo?":    true,
		"Tōkyō":   true,
		"Kyoto":   false,
		"":        false,
		"...":     false,
	}
	for answer, want := range cases {
		if got := q.CheckAnswer(answer); got != want {
			t.Errorf("CheckAnswer(%q) = %v, want %v", answer, got, want)
		}
	}
	if got := q.FormattedCorrectAnswer(); got != "Tokyo / Tōkyō / Edo" {
		t.Fatalf("unexpected formatted answer %q", got)
	}
}

func TestOpenEndedSeparatorsNormalize(t *testing.T) {
	q, err := NewOpenEnded("Which city is the largest in the USA?", "New York", America, nil)
	if err != nil {
		t.Fatalf("new open ended: %v", err)
	}
	for _, answer := range []string{"new-york", "New_York", "new york."} {
		if !q.CheckAnswer(answer) {
			t.Errorf("expected %q to match", answer)
		}
	}
	if q.CheckAnswer("newyork") {
		t.Errorf("expected joined spelling to be rejected")
	}
}

func TestOpenEndedWithAlternative(t *testing.T) {
	q, err := NewOpenEnded("What is the capital of Germany?", "Berlin", Europe, nil)
	if err != nil {
		t.Fatalf("new open ended: %v", err)
	}
	withAlt, err := q.WithAlternative("Berlin City")
	if err != nil {
		t.Fatalf("with alternative: %v", err)
	}
	if len(q.AlternativeAnswers()) != 0 {
		t.Fatalf("original question must not change")
	}
	if !withAlt.CheckAnswer("berlin city") {
		t.Fatalf("expected new alternative to be accepted")
	}
	same, err := withAlt.WithAlternative("BERLIN CITY")
	if err != nil {
		t.Fatalf("with duplicate alternative: %v", err)
	}
	if len(same.AlternativeAnswers()) != 1 {
		t.Fatalf("expected case-insensitive duplicate to be ignored, got %v", same.AlternativeAnswers())
	}
	if _, err := withAlt.WithAlternative("a|b"); !errors.Is(err, ErrInvalidQuestion) {
		t.Fatalf("expected delimiter to be rejected, got %v", err)
	}
}

func TestMultipleChoiceEncodings(t *testing.T) {
	q := mustParisQuestion(t)

	cases := map[string]bool{
		"A":      true,
		"a":      true,
		" a ":    true,
		"1":      true,
		"Paris":  true,
		"paris":  true,
		"B":      false,
		"2":      false,
		"London": false,
		"E":      false,
		"5":      false,
		"":       false,
		"Rome":   false,
	}
	for answer, want := range cases {
		if got := q.CheckAnswer(answer); got != want {
			t.Errorf("CheckAnswer(%q) = %v, want %v", answer, got, want)
		}
	}
	if got := q.FormattedCorrectAnswer(); got != "A. Paris" {
		t.Fatalf("unexpected formatted answer %q", got)
	}
}

func TestMultipleChoiceNumberRuleWinsOverDigitOptions(t *testing.T) {
	// "2" is option D's text but also the number of option B.
	q, err := NewMultipleChoice("How many official languages has Belgium?", []string{"3", "1", "4", "2"}, 3, Europe)
	if err != nil {
		t.Fatalf("new multiple choice: %v", err)
	}
	if q.CheckAnswer("2") {
		t.Fatalf("expected \"2\" to be read as option B")
	}
	if !q.CheckAnswer("4") {
		t.Fatalf("expected \"4\" to be read as option D")
	}
	if !q.CheckAnswer("D") {
		t.Fatalf("expected letter D to be accepted")
	}
}

func TestMultipleChoiceValidation(t *testing.T) {
	cases := []struct {
		name    string
		options []string
		index   int
	}{
		{"three options", []string{"a", "b", "c"}, 0},
		{"five options", []string{"a", "b", "c", "d", "e"}, 0},
		{"negative index", []string{"a", "b", "c", "d"}, -1},
		{"index too large", []string{"a", "b", "c", "d"}, 4},
		{"blank option", []string{"a", " ", "c", "d"}, 0},
		{"duplicate option", []string{"Paris", "paris", "c", "d"}, 0},
		{"delimiter in option", []string{"a|b", "c", "d", "e"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewMultipleChoice("Which of these is a capital?", tc.options, tc.index, Europe)
			if !errors.Is(err, ErrInvalidQuestion) {
				t.Fatalf("expected invalid question error, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field == "" {
				t.Fatalf("expected field-level validation error, got %v", err)
			}
		})
	}
}

func TestQuestionTextValidation(t *testing.T) {
	if _, err := NewTrueFalse("", true, Asia); !errors.Is(err, ErrInvalidQuestion) {
		t.Fatalf("expected empty text rejected, got %v", err)
	}
	if _, err := NewTrueFalse("   short   ", true, Asia); !errors.Is(err, ErrInvalidQuestion) {
		t.Fatalf("expected short text rejected, got %v", err)
	}
	if _, err := NewOpenEnded("Name the longest river in Africa.", "  ", Africa, nil); !errors.Is(err, ErrInvalidQuestion) {
		t.Fatalf("expected blank answer rejected, got %v", err)
	}
	if _, err := NewTrueFalse("Antarctica is a desert.", true, Continent(9)); !errors.Is(err, ErrInvalidQuestion) {
		t.Fatalf("expected unknown continent rejected, got %v", err)
	}
}

func TestShuffledKeepsCorrectOption(t *testing.T) {
	q := mustParisQuestion(t)
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		s := q.Shuffled(rnd)
		opts := s.Options()
		if opts[s.CorrectOptionIndex()] != "Paris" || s.CorrectAnswer() != "Paris" {
			t.Fatalf("correct option lost after shuffle: %v index=%d", opts, s.CorrectOptionIndex())
		}
		if !s.CheckAnswer(string(s.CorrectOptionLetter())) {
			t.Fatalf("letter %c should be accepted", s.CorrectOptionLetter())
		}
		seen := map[string]bool{}
		for _, o := range opts {
			seen[o] = true
		}
		if len(seen) != 4 {
			t.Fatalf("shuffle is not a permutation: %v", opts)
		}
	}
	if q.CorrectOptionIndex() != 0 || q.Options()[0] != "Paris" {
		t.Fatalf("shuffle must not mutate the source question")
	}
}

func TestWithIdentityPreservesContent(t *testing.T) {
	q := mustParisQuestion(t)
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	stored := WithIdentity(q, 7, created)

	if stored.ID() != 7 || !stored.CreatedDate().Equal(created) {
		t.Fatalf("identity not applied: id=%d created=%v", stored.ID(), stored.CreatedDate())
	}
	if q.ID() != 0 {
		t.Fatalf("source question must keep id 0")
	}
	if stored.Type() != TypeMultipleChoice || stored.CorrectAnswer() != "Paris" {
		t.Fatalf("variant content changed: %v", stored)
	}
}

func TestDisplayTextCarriesPrompt(t *testing.T) {
	q := mustParisQuestion(t)
	want := "[Europe] What is the capital of France?\n\nA. Paris\nB. London\nC. Berlin\nD. Madrid\n\nSelect A, B, C, or D:"
	if got := q.DisplayText(); got != want {
		t.Fatalf("unexpected display text:\n%s", got)
	}
	tf := mustTrueFalse(t, true)
	if got := tf.DisplayText(); got != "[Asia] Mount Everest is in Asia.\n\nTrue or False?" {
		t.Fatalf("unexpected true/false display text %q", got)
	}
}

func TestNormalizeAnswer(t *testing.T) {
	cases := map[string]string{
		"  Hello, World!  ": "hello world",
		"Is it?":           "is it",
		"Rio-de_Janeiro":   "rio de janeiro",
		"a  b":             "a  b",
		"   ":              "",
		"":                 "",
		"U.S.A.":           "usa",
	}
	for in, want := range cases {
		if got := NormalizeAnswer(in); got != want {
			t.Errorf("NormalizeAnswer(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidOpenEndedAnswer(t *testing.T) {
	if !ValidOpenEndedAnswer("Buenos Aires") {
		t.Fatalf("two words should be valid")
	}
	if ValidOpenEndedAnswer("one two three four five") || ValidOpenEndedAnswer("  ") {
		t.Fatalf("five words and blank input should be invalid")
	}
}

func TestParseContinentFilter(t *testing.T) {
	f, err := ParseContinentFilter("oceania")
	if err != nil || f.All || f.Continent != Oceania {
		t.Fatalf("unexpected filter %+v err=%v", f, err)
	}
	f, err = ParseContinentFilter("2")
	if err != nil || f.Continent != Europe {
		t.Fatalf("expected ordinal lookup, got %+v err=%v", f, err)
	}
	all, err := ParseContinentFilter("all")
	if err != nil || !all.All || all.DisplayName() != AllContinentsName || all.Selected() != 0 {
		t.Fatalf("unexpected all filter %+v err=%v", all, err)
	}
	if _, err := ParseContinentFilter("Atlantis"); err == nil {
		t.Fatalf("expected unknown continent error")
	}
}

func mustParisQuestion(t *testing.T) *MultipleChoice {
	t.Helper()
	q, err := NewMultipleChoice("What is the capital of France?", []string{"Paris", "London", "Berlin", "Madrid"}, 0, Europe)
	if err != nil {
		t.Fatalf("new multiple choice: %v", err)
	}
	return q
}

func mustTrueFalse(t *testing.T, answer bool) *TrueFalse {
	t.Helper()
	q, err := NewTrueFalse("Mount Everest is in Asia.", answer, Asia)
	if err != nil {
		t.Fatalf("new true/false: %v", err)
	}
	return q
}
