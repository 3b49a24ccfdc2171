package harness

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/roach88/cooksync/internal/scene"
)

// Principles every scenario must hold regardless of its own assertions.
const (
	// PrincipleUndoRestores: undoing every applied pass restores the scene
	// from before the first step.
	PrincipleUndoRestores = "undo_restores"
	// PrincipleRedoRestores: redoing those passes restores the final scene.
	PrincipleRedoRestores = "redo_restores"
)

// ValidationResult contains results from validating scenario principles.
type ValidationResult struct {
	TotalScenarios int                `json:"total_scenarios"`
	Passed         int                `json:"passed"`
	Failed         int                `json:"failed"`
	Failures       []PrincipleFailure `json:"failures,omitempty"`
}

// PrincipleFailure represents a scenario that broke a principle or could
// not be executed.
type PrincipleFailure struct {
	ScenarioPath string `json:"scenario_path"`
	Principle    string `json:"principle,omitempty"`
	Error        string `json:"error"`
}

func (r *ValidationResult) fail(path, principle, msg string) {
	r.Failed++
	r.Failures = append(r.Failures, PrincipleFailure{
		ScenarioPath: path,
		Principle:    principle,
		Error:        msg,
	})
}

// ValidatePrinciples loads every *.yaml scenario in dir and checks the
// undo and redo principles against it. Scenarios are processed in file
// name order.
func ValidatePrinciples(dir string) (*ValidationResult, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	sort.Strings(paths)

	result := &ValidationResult{}
	for _, path := range paths {
		result.TotalScenarios++

		scenario, err := LoadScenario(path)
		if err != nil {
			result.fail(path, "", fmt.Sprintf("failed to load scenario: %v", err))
			continue
		}
		principle, err := CheckPrinciples(scenario)
		if err != nil {
			result.fail(path, principle, err.Error())
			continue
		}
		result.Passed++
	}
	return result, nil
}

// CheckPrinciples executes the scenario's steps, then undoes every applied
// pass newest first and redoes them oldest first, comparing the scene
// against the initial and final dumps. It returns the violated principle
// with the error, or "" when the scenario could not be executed.
func CheckPrinciples(scenario *Scenario) (string, error) {
	h, err := newHarness(scenario)
	if err != nil {
		return "", err
	}
	if err := h.execute(); err != nil {
		return "", fmt.Errorf("scenario execution failed: %w", err)
	}
	initial := h.result.Scenes[0]
	final := h.result.FinalScene()

	applied := len(h.done)
	for i := 0; i < applied; i++ {
		if _, err := h.undo(0); err != nil {
			return PrincipleUndoRestores, fmt.Errorf("undo pass %d: %w", i+1, err)
		}
	}
	if got := scene.Dump(h.graph); got != initial {
		return PrincipleUndoRestores, fmt.Errorf("scene after undoing %d pass(es) differs from the initial scene", applied)
	}

	for i := 0; i < applied; i++ {
		if _, err := h.redo(0); err != nil {
			return PrincipleRedoRestores, fmt.Errorf("redo pass %d: %w", i+1, err)
		}
	}
	if got := scene.Dump(h.graph); got != final {
		return PrincipleRedoRestores, fmt.Errorf("scene after redoing %d pass(es) differs from the final scene", applied)
	}
	return "", nil
}
