// Package steps provides stage definitions and dependency validation for the
// sifter pipeline.
package steps

import (
	"fmt"
	"slices"
)

// Step categories
const (
	CategoryClassification = "classification"
	CategoryQuality        = "quality"
	CategoryOutput         = "output"
)

// Step names, in execution order
const (
	StepRoute      = "route"
	StepValidate   = "validate"
	StepRebind     = "rebind"
	StepGuardrails = "guardrails"
	StepDedup      = "dedup"
	StepReport     = "report"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	StepRoute: {
		Name:     StepRoute,
		Category: CategoryClassification,
	},
	StepValidate: {
		Name:         StepValidate,
		Category:     CategoryClassification,
		Dependencies: []string{StepRoute},
	},
	StepRebind: {
		Name:         StepRebind,
		Category:     CategoryQuality,
		Dependencies: []string{StepValidate},
	},
	StepGuardrails: {
		Name:         StepGuardrails,
		Category:     CategoryQuality,
		Dependencies: []string{StepRebind},
	},
	StepDedup: {
		Name:         StepDedup,
		Category:     CategoryOutput,
		Dependencies: []string{StepGuardrails},
	},
	StepReport: {
		Name:         StepReport,
		Category:     CategoryOutput,
		Dependencies: []string{StepDedup},
	},
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s: missing dependencies: %v", e.Step, e.MissingDependencies)
}

// ValidateDependencies checks that every dependency of stepName is in completed.
func ValidateDependencies(completed map[string]bool, stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !completed[dep] {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		return &DependencyError{Step: stepName, MissingDependencies: missing}
	}
	return nil
}

// Order returns the steps sorted so that every step follows its dependencies.
// Steps with no ordering constraint between them are sorted by name.
func Order() ([]string, error) {
	names := make([]string, 0, len(StepRegistry))
	for name := range StepRegistry {
		names = append(names, name)
	}
	slices.Sort(names)

	done := make(map[string]bool, len(names))
	order := make([]string, 0, len(names))
	for len(order) < len(names) {
		progressed := false
		for _, name := range names {
			if done[name] || ValidateDependencies(done, name) != nil {
				continue
			}
			done[name] = true
			order = append(order, name)
			progressed = true
			break
		}
		if !progressed {
			return nil, fmt.Errorf("dependency cycle among steps")
		}
	}
	return order, nil
}

// Tracker records which steps of one run have completed. It is not safe for
// concurrent use; a run drives its steps sequentially.
type Tracker struct {
	completed map[string]bool
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{completed: make(map[string]bool)}
}

// Start checks that stepName may run now.
func (t *Tracker) Start(stepName string) error {
	if t.completed[stepName] {
		return fmt.Errorf("step %s already completed", stepName)
	}
	return ValidateDependencies(t.completed, stepName)
}

// Complete marks stepName as done.
func (t *Tracker) Complete(stepName string) {
	t.completed[stepName] = true
}

// Completed returns the completed steps in execution order.
func (t *Tracker) Completed() []string {
	order, _ := Order()
	var out []string
	for _, name := range order {
		if t.completed[name] {
			out = append(out, name)
		}
	}
	return out
}
