package categorization

import (
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// matchTimeout bounds a single pattern evaluation. User rules are arbitrary
// backtracking regexes, a pathological one must not stall a whole import.
const matchTimeout = 100 * time.Millisecond

type compiledRule struct {
	re       *regexp2.Regexp
	category string
}

// RuleSet is a compiled, ordered list of category rules.
// It is immutable after construction and safe for concurrent use.
type RuleSet struct {
	rules []compiledRule
	src   []CategoryRule
}

// NewRuleSet compiles rules in order. Patterns that fail to compile are
// skipped and reported through the returned error (one entry per bad
// pattern); the RuleSet is still usable. If no pattern compiles the default
// rules are used instead.
func NewRuleSet(rules []CategoryRule) (*RuleSet, error) {
	rs := &RuleSet{}
	var errs []error

	for _, r := range rules {
		re, err := regexp2.Compile(r.Pattern, regexp2.IgnoreCase)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %q => %q: %w", r.Pattern, r.Category, err))
			continue
		}
		re.MatchTimeout = matchTimeout
		rs.rules = append(rs.rules, compiledRule{re: re, category: r.Category})
		rs.src = append(rs.src, r)
	}

	if len(rs.rules) == 0 {
		for _, r := range defaultRules {
			re := regexp2.MustCompile(r.Pattern, regexp2.IgnoreCase)
			re.MatchTimeout = matchTimeout
			rs.rules = append(rs.rules, compiledRule{re: re, category: r.Category})
		}
		rs.src = DefaultRules()
	}

	return rs, errors.Join(errs...)
}

// Default returns the compiled built-in rules.
func Default() *RuleSet {
	rs, _ := NewRuleSet(defaultRules)
	return rs
}

// Categorize returns the category of the first rule matching the
// accent-stripped description, or DefaultCategory. A rule that times out
// counts as not matching.
func (rs *RuleSet) Categorize(description string) string {
	d := StripAccents(description)
	for _, r := range rs.rules {
		ok, err := r.re.MatchString(d)
		if err != nil {
			continue
		}
		if ok {
			return r.category
		}
	}
	return DefaultCategory
}

// Rules returns the rules that compiled, in evaluation order.
func (rs *RuleSet) Rules() []CategoryRule {
	out := make([]CategoryRule, len(rs.src))
	copy(out, rs.src)
	return out
}

// Len returns the number of active rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Categorize compiles rules and categorizes a single description.
// Prefer building a RuleSet once when categorizing many rows.
func Categorize(description string, rules []CategoryRule) string {
	rs, _ := NewRuleSet(rules)
	return rs.Categorize(description)
}

// StripAccents removes combining marks ("Crédito" becomes "Credito").
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
