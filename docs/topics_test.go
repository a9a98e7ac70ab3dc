package docs

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// commands are the fin subcommands the documentation may show.
var commands = []string{
	"add", "budget", "subs", "nwi", "weekly", "monthly", "yearly", "invest", "fund",
	"refresh", "portfolio", "insights", "notify", "learn", "recategorize", "fmt",
	"topic", "jobs", "serve",
}

func TestTopics(t *testing.T) {
	// Every topic listed in readme.md loads, and every topic is listed.
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var listed []string
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if m := topicRegex.FindStringSubmatch(scanner.Text()); len(m) > 1 {
			listed = append(listed, strings.TrimSpace(m[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}

	for _, topic := range listed {
		if _, err := Topic(topic); err != nil {
			t.Errorf("Topic(%q) error = %v", topic, err)
		}
	}

	all, err := List()
	if err != nil {
		t.Fatal(err)
	}
	for _, topic := range all {
		if !slices.Contains(listed, topic) {
			t.Errorf("topic %q is not listed in readme.md", topic)
		}
	}
	if _, err := Topic("nope"); err == nil {
		t.Error("Topic(nope) expected an error")
	}
	everything, err := Topic("*")
	if err != nil || !strings.Contains(everything, "# Budgets") {
		t.Errorf("Topic(*) = %d bytes, %v", len(everything), err)
	}
}

// TestStructure checks that every topic starts with a title and that shell
// examples only use existing subcommands.
func TestStructure(t *testing.T) {
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			content, err := os.ReadFile(file)
			if err != nil {
				t.Fatal(err)
			}
			root := goldmark.DefaultParser().Parse(text.NewReader(content))

			first := root.FirstChild()
			if h, ok := first.(*ast.Heading); !ok || h.Level != 1 {
				t.Errorf("%s does not start with a level 1 heading", file)
			}

			ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
				fcb, ok := n.(*ast.FencedCodeBlock)
				if !entering || !ok || string(fcb.Language(content)) != "bash" {
					return ast.WalkContinue, nil
				}
				for i := 0; i < fcb.Lines().Len(); i++ {
					line := fcb.Lines().At(i)
					fields := strings.Fields(string(line.Value(content)))
					if len(fields) < 2 || fields[0] != "fin" {
						t.Errorf("%s: unexpected shell line %q", file, fields)
						continue
					}
					if !slices.Contains(commands, fields[1]) {
						t.Errorf("%s: unknown subcommand %q", file, fields[1])
					}
				}
				return ast.WalkContinue, nil
			})
		})
	}
}
