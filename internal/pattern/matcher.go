package pattern

import (
	"regexp"
	"slices"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// Matcher evaluates transaction drafts against rules.
type Matcher struct {
	compiledRegex map[int]*regexp.Regexp
	rules         []Rule
}

// NewMatcher creates a matcher. Rules are tried by priority, highest first,
// and in the given order among equal priorities. Regex rules that fail to
// compile never match; run Validate to report them.
func NewMatcher(rules []Rule) *Matcher {
	m := &Matcher{
		rules:         slices.Clone(rules),
		compiledRegex: make(map[int]*regexp.Regexp),
	}
	slices.SortStableFunc(m.rules, func(a, b Rule) int {
		return b.Priority - a.Priority
	})

	for i, rule := range m.rules {
		if rule.IsRegex && rule.Pattern != "" {
			if re, err := regexp.Compile(rule.Pattern); err == nil {
				m.compiledRegex[i] = re
			}
		}
	}

	return m
}

// Len returns the number of rules.
func (m *Matcher) Len() int {
	return len(m.rules)
}

// Match returns the first rule that matches draft.
func (m *Matcher) Match(draft model.TransactionDraft) (Rule, bool) {
	for i, rule := range m.rules {
		if m.matchesRule(i, draft, rule) {
			return rule, true
		}
	}
	return Rule{}, false
}

// Categorize sets the category of every matching draft and returns how many
// drafts changed.
func (m *Matcher) Categorize(drafts []model.TransactionDraft) int {
	changed := 0
	for i := range drafts {
		rule, ok := m.Match(drafts[i])
		if !ok || drafts[i].Category == rule.Category {
			continue
		}
		drafts[i].Category = rule.Category
		changed++
	}
	return changed
}

func (m *Matcher) matchesRule(index int, draft model.TransactionDraft, rule Rule) bool {
	if rule.Type != nil && draft.Type != *rule.Type {
		return false
	}
	return m.matchesDescription(index, draft, rule) && matchesAmount(draft, rule)
}

func (m *Matcher) matchesDescription(index int, draft model.TransactionDraft, rule Rule) bool {
	if rule.Pattern == "" {
		return true
	}

	if rule.IsRegex {
		if re, ok := m.compiledRegex[index]; ok {
			return re.MatchString(draft.Description)
		}
		return false
	}

	// Plain patterns match a case-insensitive substring.
	return strings.Contains(strings.ToLower(draft.Description), strings.ToLower(rule.Pattern))
}

func matchesAmount(draft model.TransactionDraft, rule Rule) bool {
	amount := draft.Amount

	switch rule.AmountCondition {
	case AmountAny, "":
		return true
	case AmountLessThan:
		return rule.AmountValue != nil && amount.LessThan(*rule.AmountValue)
	case AmountLessEqual:
		return rule.AmountValue != nil && amount.LessThanOrEqual(*rule.AmountValue)
	case AmountEqual:
		return rule.AmountValue != nil && amount.Equal(*rule.AmountValue)
	case AmountGreaterEqual:
		return rule.AmountValue != nil && amount.GreaterThanOrEqual(*rule.AmountValue)
	case AmountGreaterThan:
		return rule.AmountValue != nil && amount.GreaterThan(*rule.AmountValue)
	case AmountRange:
		if rule.AmountMin != nil && amount.LessThan(*rule.AmountMin) {
			return false
		}
		if rule.AmountMax != nil && amount.GreaterThan(*rule.AmountMax) {
			return false
		}
		return true
	}

	return false
}
