package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// SpecialistResult is one sub-agent's outcome within a ParallelReport:
// either Output is set (success) or Err is set (failure), never both.
type SpecialistResult struct {
	Name   string
	Output string
	Err    error
}

// ParallelReport is the assembled outcome of fanning one turn out to
// several specialists. Succeeded counts the specialists that returned
// without error; Failed names the rest, sorted by name (Results keeps
// the order the specialists were given). A failed specialist contributes
// no section to Text; it never aborts the whole call.
type ParallelReport struct {
	Results   []SpecialistResult
	Succeeded int
	Failed    []string
}

// Text renders the report as a composite document: one Markdown section
// per successful specialist, in the order the specialists were given to
// Run, followed by a one-line note naming any that failed.
func (r *ParallelReport) Text() string {
	var sb strings.Builder
	for _, res := range r.Results {
		if res.Err != nil {
			continue
		}
		sb.WriteString("## ")
		sb.WriteString(res.Name)
		sb.WriteString("\n")
		sb.WriteString(res.Output)
		sb.WriteString("\n\n")
	}
	if len(r.Failed) > 0 {
		sb.WriteString(fmt.Sprintf("_%d specialist(s) did not respond: %s_\n", len(r.Failed), strings.Join(r.Failed, ", ")))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Orchestrator fans one turn out to a fixed set of specialist Agents in
// parallel and joins their results into a ParallelReport. A specialist
// failure never cancels its siblings: partial failures surface as an
// absent report section, not an aborted call. Cancellation only ever
// comes from the caller's own ctx.
type Orchestrator struct {
	specialists []Agent
}

// NewOrchestrator builds an Orchestrator over specialists, in the order
// they should appear in a ParallelReport.
func NewOrchestrator(specialists ...Agent) *Orchestrator {
	return &Orchestrator{specialists: append([]Agent(nil), specialists...)}
}

// Run dispatches input to every specialist concurrently, using its own
// clone of actx so concurrent specialists never race on the same
// Context, and waits for all of them to finish or for ctx to be
// cancelled. A specialist that returns an error contributes no section
// and is named in Failed; it never causes Run itself to return an error.
func (o *Orchestrator) Run(ctx context.Context, input string, actx *Context) (*ParallelReport, error) {
	if len(o.specialists) == 0 {
		return &ParallelReport{}, nil
	}

	results := make([]SpecialistResult, len(o.specialists))
	var wg sync.WaitGroup
	wg.Add(len(o.specialists))

	for i, sp := range o.specialists {
		i, sp := i, sp
		go func() {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[i] = SpecialistResult{Name: sp.Name(), Err: ctx.Err()}
				return
			default:
			}

			perCallCtx := actx
			if actx != nil {
				perCallCtx = actx.Clone()
			}

			out, err := sp.Process(ctx, input, perCallCtx)
			results[i] = SpecialistResult{Name: sp.Name(), Output: out, Err: err}
		}()
	}
	wg.Wait()

	report := &ParallelReport{Results: results}
	for _, res := range results {
		if res.Err != nil {
			report.Failed = append(report.Failed, res.Name)
			continue
		}
		report.Succeeded++
	}
	sort.Strings(report.Failed)

	return report, nil
}
