// Package learn holds the financial literacy modules and grades their quizzes.
package learn

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"github.com/etnz/finance"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// PassScore is the quiz score needed to pass a module.
const PassScore finance.Percent = 70

// Lesson is a short reading.
type Lesson struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	Body  string `yaml:"body" json:"body"`
}

// Question is a multiple choice question, Answer is the index of the right
// option.
type Question struct {
	Question    string   `yaml:"question" json:"question"`
	Options     []string `yaml:"options" json:"options"`
	Answer      int      `yaml:"answer" json:"-"`
	Explanation string   `yaml:"explanation" json:"-"`
}

// Module is a set of lessons closed by a quiz.
type Module struct {
	ID      string     `yaml:"id" json:"id"`
	Title   string     `yaml:"title" json:"title"`
	Summary string     `yaml:"summary" json:"summary"`
	Lessons []Lesson   `yaml:"lessons" json:"lessons"`
	Quiz    []Question `yaml:"quiz" json:"quiz"`
}

// Lesson returns the lesson id of the module.
func (m Module) Lesson(id string) (Lesson, bool) {
	i := slices.IndexFunc(m.Lessons, func(l Lesson) bool { return l.ID == id })
	if i < 0 {
		return Lesson{}, false
	}
	return m.Lessons[i], true
}

var catalog = sync.OnceValues(func() ([]Module, error) {
	var c struct {
		Modules []Module `yaml:"modules"`
	}
	if err := yaml.Unmarshal(catalogYAML, &c); err != nil {
		return nil, fmt.Errorf("invalid learn catalog: %w", err)
	}
	return c.Modules, nil
})

// Catalog returns every module in reading order.
func Catalog() []Module {
	modules, err := catalog()
	if err != nil {
		panic(err)
	}
	return modules
}

// Find returns the module id.
func Find(id string) (Module, error) {
	for _, m := range Catalog() {
		if m.ID == id {
			return m, nil
		}
	}
	return Module{}, fmt.Errorf("learn module %q: %w", id, finance.ErrNotFound)
}

// Feedback explains the answer to one question.
type Feedback struct {
	Question    string `json:"question"`
	Given       int    `json:"given"`
	Answer      string `json:"answer"`
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
}

// Result of a quiz attempt.
type Result struct {
	Module   string          `json:"module"`
	Score    finance.Percent `json:"score"`
	Correct  int             `json:"correct"`
	Total    int             `json:"total"`
	Passed   bool            `json:"passed"`
	Feedback []Feedback      `json:"feedback"`
}

// Grade scores the answers to the quiz of m, one option index per question.
func Grade(m Module, answers []int) (Result, error) {
	if len(answers) != len(m.Quiz) {
		return Result{}, fmt.Errorf("quiz %q has %d questions, got %d answers", m.ID, len(m.Quiz), len(answers))
	}
	r := Result{Module: m.ID, Total: len(m.Quiz)}
	for i, q := range m.Quiz {
		if answers[i] < 0 || answers[i] >= len(q.Options) {
			return Result{}, fmt.Errorf("question %d: answer %d out of the %d options", i+1, answers[i], len(q.Options))
		}
		ok := answers[i] == q.Answer
		if ok {
			r.Correct++
		}
		r.Feedback = append(r.Feedback, Feedback{
			Question:    q.Question,
			Given:       answers[i],
			Answer:      q.Options[q.Answer],
			Correct:     ok,
			Explanation: q.Explanation,
		})
	}
	if r.Total > 0 {
		r.Score = finance.Percent(100 * float64(r.Correct) / float64(r.Total))
	}
	r.Passed = r.Score >= PassScore
	return r, nil
}

// ModuleProgress is what was done in a module.
type ModuleProgress struct {
	Module       string          `json:"module"`
	Title        string          `json:"title"`
	LessonsDone  []string        `json:"lessons_done"`
	LessonsTotal int             `json:"lessons_total"`
	Attempts     int             `json:"attempts"`
	BestScore    finance.Percent `json:"best_score"`
	Passed       bool            `json:"passed"`
	// Completion counts every lesson and the passed quiz as one step each.
	Completion finance.Percent `json:"completion"`
}

// Progress summarizes the learn records of the ledger for every module of
// the catalog. Records of unknown modules or lessons are ignored.
func Progress(ledger *finance.Ledger) []ModuleProgress {
	modules := Catalog()
	progress := make([]ModuleProgress, len(modules))
	index := make(map[string]int)
	for i, m := range modules {
		index[m.ID] = i
		progress[i] = ModuleProgress{Module: m.ID, Title: m.Title, LessonsTotal: len(m.Lessons), LessonsDone: []string{}}
	}
	for _, rec := range ledger.LearnRecords() {
		i, ok := index[rec.Module]
		if !ok {
			continue
		}
		p := &progress[i]
		if rec.IsQuiz() {
			p.Attempts++
			p.BestScore = max(p.BestScore, rec.Score)
			continue
		}
		if _, known := modules[i].Lesson(rec.Lesson); known && !slices.Contains(p.LessonsDone, rec.Lesson) {
			p.LessonsDone = append(p.LessonsDone, rec.Lesson)
		}
	}
	for i := range progress {
		p := &progress[i]
		p.Passed = p.Attempts > 0 && p.BestScore >= PassScore
		steps := len(p.LessonsDone)
		if p.Passed {
			steps++
		}
		p.Completion = finance.Percent(100 * float64(steps) / float64(p.LessonsTotal+1))
	}
	return progress
}
