package finance

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// MatchKind tells how a rule pattern is compared to a transaction field.
type MatchKind string

// Match kinds, from the most to the least specific.
const (
	MatchExact    MatchKind = "exact"
	MatchPrefix   MatchKind = "prefix"
	MatchContains MatchKind = "contains"
	MatchRegex    MatchKind = "regex"
)

// specificity ranks match kinds, higher is more specific.
func (m MatchKind) specificity() int {
	switch m {
	case MatchExact:
		return 3
	case MatchPrefix:
		return 2
	case MatchContains:
		return 1
	}
	return 0
}

// Rule assigns a category to transactions whose description or merchant
// matches a pattern. Comparisons ignore case.
type Rule struct {
	Name      string    `yaml:"name"`
	Field     string    `yaml:"field"` // "description", "merchant" or "" for both
	Match     MatchKind `yaml:"match"`
	Pattern   string    `yaml:"pattern"`
	Category  Category  `yaml:"category"`
	Priority  int       `yaml:"priority"`
	MinAmount *float64  `yaml:"min_amount"`
	MaxAmount *float64  `yaml:"max_amount"`

	re *regexp.Regexp
}

// compile validates the rule and prepares its matcher.
func (r *Rule) compile() error {
	if r.Pattern == "" {
		return errors.New("pattern is missing")
	}
	c, err := ParseCategory(string(r.Category))
	if err != nil {
		return err
	}
	r.Category = c
	switch r.Field {
	case "", "description", "merchant":
	default:
		return fmt.Errorf("unknown field %q", r.Field)
	}
	switch r.Match {
	case "":
		r.Match = MatchContains
	case MatchExact, MatchPrefix, MatchContains:
	case MatchRegex:
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		r.re = re
	default:
		return fmt.Errorf("unknown match %q", r.Match)
	}
	if r.MinAmount != nil && r.MaxAmount != nil && *r.MinAmount > *r.MaxAmount {
		return errors.New("min_amount is greater than max_amount")
	}
	return nil
}

func (r *Rule) matchString(s string) bool {
	switch r.Match {
	case MatchExact:
		return strings.EqualFold(s, r.Pattern)
	case MatchPrefix:
		return strings.HasPrefix(strings.ToLower(s), strings.ToLower(r.Pattern))
	case MatchRegex:
		return r.re != nil && r.re.MatchString(s)
	default:
		return strings.Contains(strings.ToLower(s), strings.ToLower(r.Pattern))
	}
}

// Matches reports whether tx satisfies the rule.
func (r *Rule) Matches(tx Transaction) bool {
	amount := tx.Amount.Float()
	if r.MinAmount != nil && amount < *r.MinAmount {
		return false
	}
	if r.MaxAmount != nil && amount > *r.MaxAmount {
		return false
	}
	if r.Category.IsIncome() != (tx.Type == Income) {
		return false
	}
	switch r.Field {
	case "description":
		return r.matchString(tx.Description)
	case "merchant":
		return r.matchString(tx.Merchant)
	default:
		return r.matchString(tx.Description) || (tx.Merchant != "" && r.matchString(tx.Merchant))
	}
}

// outranks reports whether r wins over s when both match.
// Declaration order breaks the remaining ties, so equal rules never outrank.
func (r *Rule) outranks(s *Rule) bool {
	if r.Priority != s.Priority {
		return r.Priority > s.Priority
	}
	if a, b := r.Match.specificity(), s.Match.specificity(); a != b {
		return a > b
	}
	return len(r.Pattern) > len(s.Pattern)
}

// Rules is an ordered list of categorization rules.
type Rules []Rule

// Categorize returns the rule that decides the category of tx.
func (rules Rules) Categorize(tx Transaction) (Rule, bool) {
	var best *Rule
	for i := range rules {
		r := &rules[i]
		if !r.Matches(tx) {
			continue
		}
		if best == nil || r.outranks(best) {
			best = r
		}
	}
	if best == nil {
		return Rule{}, false
	}
	return *best, true
}

// LoadRules reads rules from a YAML document:
//
//	rules:
//	  - name: groceries
//	    match: prefix
//	    pattern: big basket
//	    category: groceries
func LoadRules(r io.Reader) (Rules, error) {
	var doc struct {
		Rules Rules `yaml:"rules"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("could not decode rules: %w", err)
	}
	var errs []error
	for i := range doc.Rules {
		if err := doc.Rules[i].compile(); err != nil {
			name := doc.Rules[i].Name
			if name == "" {
				name = fmt.Sprintf("#%d", i+1)
			}
			errs = append(errs, fmt.Errorf("rule %s: %w", name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return doc.Rules, nil
}
