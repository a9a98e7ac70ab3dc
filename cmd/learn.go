package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/etnz/finance/learn"
	"github.com/etnz/finance/renderer"
	"github.com/google/subcommands"
)

type learnCmd struct {
	module string
	lesson string
	quiz   string
}

func (*learnCmd) Name() string     { return "learn" }
func (*learnCmd) Synopsis() string { return "read finance lessons and take quizzes" }
func (*learnCmd) Usage() string {
	return `fin learn
fin learn -module <id> [-lesson <id>]
fin learn -module <id> -quiz <answers>

  Without flags, lists the modules with your progress. -module shows a
  module, -lesson reads a lesson and marks it done, -quiz grades comma
  separated answers (option numbers starting at 1) and records the score.
`
}

func (c *learnCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.module, "module", "", "Module id")
	f.StringVar(&c.lesson, "lesson", "", "Lesson id")
	f.StringVar(&c.quiz, "quiz", "", "Comma separated answers, e.g. 2,3,1")
}

func (c *learnCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.module == "" {
		ledger, err := loadLedger(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.Learn(learn.Progress(ledger)))
		return subcommands.ExitSuccess
	}

	m, err := learn.Find(c.module)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	switch {
	case c.lesson != "":
		l, ok := m.Lesson(c.lesson)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: lesson %q: %v\n", c.lesson, finance.ErrNotFound)
			return subcommands.ExitUsageError
		}
		printMarkdown(renderer.Lesson(l))
		if err := appendRecords(ctx, finance.NewLessonCompleted(date.Today(), m.ID, l.ID)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	case c.quiz != "":
		answers, err := parseAnswers(c.quiz)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		result, err := learn.Grade(m, answers)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		if err := appendRecords(ctx, finance.NewQuizAttempt(date.Today(), m.ID, result.Score)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.Quiz(result))
	default:
		printMarkdown(renderer.Module(m))
	}
	return subcommands.ExitSuccess
}

// parseAnswers turns 1-based option numbers into 0-based indexes.
func parseAnswers(s string) ([]int, error) {
	var answers []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid answer %q: %w", part, err)
		}
		answers = append(answers, n-1)
	}
	return answers, nil
}
