package rules

import (
	"sort"
	"spendtracker/src/models"
)

type compiled struct {
	rule models.CategoryRule
	cond Condition
}

// Set holds a user's rules in evaluation order: priority ascending, then id.
type Set struct {
	rules   []compiled
	invalid []int64
}

// NewSet compiles rules. Rules whose conditions fail to parse are left out
// and reported by Invalid.
func NewSet(rules []models.CategoryRule) *Set {
	s := &Set{}
	for _, r := range rules {
		cond, err := Parse(r.Conditions)
		if err != nil {
			s.invalid = append(s.invalid, r.ID)
			continue
		}
		s.rules = append(s.rules, compiled{rule: r, cond: cond})
	}
	sort.SliceStable(s.rules, func(i, j int) bool {
		a, b := s.rules[i].rule, s.rules[j].rule
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.ID < b.ID
	})
	return s
}

func (s *Set) Len() int {
	return len(s.rules)
}

// Invalid lists the ids of rules that were skipped.
func (s *Set) Invalid() []int64 {
	return s.invalid
}

// Match returns the first rule whose conditions hold for t.
func (s *Set) Match(t models.Transaction) (*models.CategoryRule, bool) {
	for i := range s.rules {
		if s.rules[i].cond.Matches(t) {
			return &s.rules[i].rule, true
		}
	}
	return nil, false
}

// Assign maps the id of every uncategorized transaction that matches a rule
// to that rule's category.
func (s *Set) Assign(txns []models.Transaction) map[int64]int64 {
	out := make(map[int64]int64)
	for _, t := range txns {
		if t.CategoryID != nil {
			continue
		}
		if r, ok := s.Match(t); ok {
			out[t.ID] = r.CategoryID
		}
	}
	return out
}

// Categorize fills CategoryID in place for uncategorized transactions and
// returns how many were assigned.
func (s *Set) Categorize(txns []models.Transaction) int {
	n := 0
	for i := range txns {
		if txns[i].CategoryID != nil {
			continue
		}
		if r, ok := s.Match(txns[i]); ok {
			id := r.CategoryID
			txns[i].CategoryID = &id
			n++
		}
	}
	return n
}
