// Package validators defines the host environment checks run before an
// application is deployed. Rules register themselves into the
// DefaultRegistry from their package init, so callers blank-import the
// rule packages they want active.
package validators

import "sort"

// ValidationLevel decides what a failed rule does to the overall
// validation verdict.
type ValidationLevel int

const (
	// ValidationLevelError fails the validation.
	ValidationLevelError ValidationLevel = iota
	// ValidationLevelWarning is reported but does not fail validation.
	ValidationLevelWarning
)

// Rule is a single host validation check.
type Rule interface {
	// Name identifies the rule for --skip-validation.
	Name() string
	// Description is a one line summary shown in help output.
	Description() string
	// Hint suggests how to fix a failed check.
	Hint() string
	// Level decides whether a failure blocks or only warns.
	Level() ValidationLevel
	// Verify runs the check.
	Verify() error
	// Message is the success line shown when the check passes.
	Message() string
}

// Registry holds rules ordered by an explicit rank, so the run order
// does not depend on package init order. The root check carries the
// lowest rank because every later check needs its privileges.
type Registry struct {
	rules []rankedRule
}

type rankedRule struct {
	rank int
	rule Rule
}

// Register adds a rule at the given rank. Lower ranks run first.
func (r *Registry) Register(rank int, rule Rule) {
	r.rules = append(r.rules, rankedRule{rank: rank, rule: rule})
	sort.SliceStable(r.rules, func(i, j int) bool { return r.rules[i].rank < r.rules[j].rank })
}

// Rules returns the registered rules in run order.
func (r *Registry) Rules() []Rule {
	out := make([]Rule, 0, len(r.rules))
	for _, rr := range r.rules {
		out = append(out, rr.rule)
	}

	return out
}

// DefaultRegistry is the registry the bootstrap flow runs.
var DefaultRegistry = &Registry{}
