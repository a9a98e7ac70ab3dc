package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/etnz/finance/learn"
	"github.com/etnz/finance/mfapi"
	md "github.com/nao1215/markdown"
)

// FundSearch lists the schemes matching q.
func FundSearch(q string, results []mfapi.SearchResult) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Schemes matching %q", q))
	if len(results) == 0 {
		doc.PlainText("No scheme found.")
		return doc.String()
	}
	table := md.TableSet{Header: []string{"Code", "Name"}}
	for _, r := range results {
		table.Rows = append(table.Rows, []string{strconv.Itoa(r.SchemeCode), r.SchemeName})
	}
	doc.Table(table)
	return doc.String()
}

// Module shows the lessons and the quiz questions of m.
func Module(m learn.Module) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(m.Title)
	doc.PlainText(m.Summary)

	doc.H2("Lessons")
	lessons := make([]string, len(m.Lessons))
	for i, l := range m.Lessons {
		lessons[i] = fmt.Sprintf("%s `%s`", l.Title, l.ID)
	}
	doc.BulletList(lessons...)

	doc.H2("Quiz")
	for i, q := range m.Quiz {
		doc.H3(fmt.Sprintf("%d. %s", i+1, q.Question))
		doc.OrderedList(q.Options...)
	}
	return doc.String()
}

// Lesson shows the body of a lesson.
func Lesson(l learn.Lesson) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(l.Title)
	doc.PlainText(l.Body)
	return doc.String()
}
