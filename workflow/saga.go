package workflow

import (
	"bitbucket.org/polifilmdata/films_backend/config"
)

// compensations is the undo stack of a multi-step write. Each completed
// step pushes a closure that reverses it; on a fatal error the stack runs
// in reverse order. Compensations are best-effort: a failed undo is logged
// with enough detail for the repair tools and does not stop the rest of
// the stack.
type compensations struct {
	moduleName   string
	functionName string
	steps        []compensationStep
}

type compensationStep struct {
	name string
	undo func() error
}

func newCompensations(moduleName, functionName string) *compensations {
	return &compensations{moduleName: moduleName, functionName: functionName}
}

func (c *compensations) push(name string, undo func() error) {
	c.steps = append(c.steps, compensationStep{name: name, undo: undo})
}

// run executes the stack in reverse and reports how many undos failed.
func (c *compensations) run() int {
	logger := config.GetLogger()
	failed := 0
	for i := len(c.steps) - 1; i >= 0; i-- {
		step := c.steps[i]
		if err := step.undo(); err != nil {
			failed++
			config.LogError(logger, c.moduleName, c.functionName,
				"compensation failed, manual repair required",
				map[string]any{"step": step.name}, err)
		}
	}
	return failed
}
