// Package healthcheck turns a parsed pefmt.Binary's accumulated
// warnings and directory/section table into a structured report, via
// a Check/Registry/Runner shape: instead of validating a binary
// against a named compliance policy, each check inspects how much of
// the warn-and-continue parse actually succeeded.
package healthcheck

import "github.com/gogo2464/LIEF/pefmt"

// Status is the outcome of a single check.
type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Result is the outcome of running one Check.
type Result struct {
	ID          string      `json:"id" yaml:"id"`
	Description string      `json:"description" yaml:"description"`
	Status      Status      `json:"status" yaml:"status"`
	Message     string      `json:"message" yaml:"message"`
	Details     interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

// Check inspects a parsed Binary and reports one Result.
type Check interface {
	ID() string
	Description() string
	Execute(bin *pefmt.Binary) Result
}

// Registry holds the set of checks a Runner will execute.
type Registry struct {
	checks map[string]Check
	order  []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{checks: make(map[string]Check)}
}

// Register adds a check, keyed by its ID. Registering the same ID
// twice overwrites the previous entry but keeps its original position.
func (r *Registry) Register(c Check) {
	if _, exists := r.checks[c.ID()]; !exists {
		r.order = append(r.order, c.ID())
	}
	r.checks[c.ID()] = c
}

// List returns every registered check in registration order.
func (r *Registry) List() []Check {
	out := make([]Check, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.checks[id])
	}
	return out
}

// Default returns a Registry pre-loaded with every built-in check.
func Default() *Registry {
	r := NewRegistry()
	for _, c := range []Check{
		WarningBudgetCheck{Budget: 5},
		OverlayCheck{},
		DirectoryDispatchCheck{},
		SectionTagCheck{},
		ImportCoverageCheck{},
	} {
		r.Register(c)
	}
	return r
}

// Runner executes every check in a Registry against one Binary.
type Runner struct {
	registry *Registry
}

// NewRunner builds a Runner bound to registry.
func NewRunner(registry *Registry) *Runner {
	return &Runner{registry: registry}
}

// Summary tallies Result statuses across a Report.
type Summary struct {
	Total int `json:"total" yaml:"total"`
	OK    int `json:"ok" yaml:"ok"`
	Warn  int `json:"warn" yaml:"warn"`
	Fail  int `json:"fail" yaml:"fail"`
}

// Report is the outcome of running every check in a Registry.
type Report struct {
	Results []Result `json:"results" yaml:"results"`
	Summary Summary  `json:"summary" yaml:"summary"`
}

// RunAll executes every registered check against bin.
func (r *Runner) RunAll(bin *pefmt.Binary) *Report {
	results := make([]Result, 0, len(r.registry.List()))
	summary := Summary{}

	for _, c := range r.registry.List() {
		res := c.Execute(bin)
		results = append(results, res)
		summary.Total++
		switch res.Status {
		case StatusOK:
			summary.OK++
		case StatusWarn:
			summary.Warn++
		case StatusFail:
			summary.Fail++
		}
	}

	return &Report{Results: results, Summary: summary}
}
