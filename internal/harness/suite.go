package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScenarioFailure records why one scenario in a suite did not pass.
type ScenarioFailure struct {
	Path   string   `json:"path"`
	Name   string   `json:"name,omitempty"`
	Errors []string `json:"errors"`
}

// SuiteResult summarizes a directory of scenarios.
type SuiteResult struct {
	Total    int               `json:"total"`
	Passed   int               `json:"passed"`
	Failed   int               `json:"failed"`
	Failures []ScenarioFailure `json:"failures,omitempty"`
}

// Pass reports whether every scenario passed.
func (r *SuiteResult) Pass() bool {
	return r.Failed == 0
}

// RunDir loads and runs every *.yaml and *.yml scenario in dir, in name
// order. A scenario that fails to load counts as failed.
func RunDir(dir string, opts ...Option) (*SuiteResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	res := &SuiteResult{}
	for _, path := range paths {
		res.Total++
		fail := runOne(path, opts)
		if fail == nil {
			res.Passed++
			continue
		}
		res.Failed++
		res.Failures = append(res.Failures, *fail)
	}
	return res, nil
}

func runOne(path string, opts []Option) *ScenarioFailure {
	s, err := LoadScenario(path)
	if err != nil {
		return &ScenarioFailure{Path: path, Errors: []string{err.Error()}}
	}
	result, err := Run(s, opts...)
	if err != nil {
		return &ScenarioFailure{Path: path, Name: s.Name, Errors: []string{err.Error()}}
	}
	if !result.Pass {
		return &ScenarioFailure{Path: path, Name: s.Name, Errors: result.Errors}
	}
	return nil
}
