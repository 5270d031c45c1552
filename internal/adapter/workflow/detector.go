package workflow

import (
	"fmt"
	"sort"
	"strings"

	"semdex/internal/domain"
)

// pattern describes one known business-process shape. Entities whose
// primary tag is in start can open the flow, entities tagged with an
// end concept close it. The intermediate concepts document what
// typically sits between the two ends; they do not constrain the
// search.
type pattern struct {
	name         string
	start        []string
	end          []string
	intermediate []string
	process      string
}

var workflowPatterns = []pattern{
	{
		name:         "journal_to_ledger",
		start:        []string{"journal_entry"},
		end:          []string{"ledger", "general_ledger"},
		intermediate: []string{"posting", "entry"},
		process:      "ledger_posting",
	},
	{
		name:         "invoice_to_payment",
		start:        []string{"invoice"},
		end:          []string{"payment"},
		intermediate: []string{"reconciliation"},
		process:      "payment_processing",
	},
	{
		name:         "ledger_to_reports",
		start:        []string{"ledger", "general_ledger"},
		end:          []string{"reports", "trial_balance", "profit_and_loss"},
		intermediate: []string{"calculation", "aggregation"},
		process:      "financial_reporting",
	},
	{
		name:         "tax_calculation",
		start:        []string{"invoice", "payment"},
		end:          []string{"tax"},
		intermediate: []string{"calculation"},
		process:      "tax_processing",
	},
}

// Detector infers multi-step business processes by searching the call
// graph for paths between concept-tagged entities.
type Detector struct{}

func NewDetector() *Detector {
	return &Detector{}
}

// Detect runs every pattern against the project call graph. Contexts
// are keyed by bare entity name. Overlapping hints reached through
// different patterns or start/end pairs are all reported.
func (d *Detector) Detect(pa *domain.ProjectAnalysis, contexts map[string]domain.EntityContext) []domain.Workflow {
	graph := buildCallGraph(pa)

	workflows := []domain.Workflow{}
	for _, p := range workflowPatterns {
		workflows = append(workflows, detectPattern(p, contexts, graph)...)
	}
	return workflows
}

// buildCallGraph collects the calls relationships recorded during
// per-file analysis into an adjacency list. Targets are the bare
// best-effort names the structural pass produced, so edges chain
// across files without qualification.
func buildCallGraph(pa *domain.ProjectAnalysis) map[string][]string {
	sets := map[string]map[string]struct{}{}
	for _, fa := range pa.FileAnalyses {
		for _, rel := range fa.Relationships {
			if rel.Kind != domain.RelCalls {
				continue
			}
			set, ok := sets[rel.Source]
			if !ok {
				set = map[string]struct{}{}
				sets[rel.Source] = set
			}
			set[rel.Target] = struct{}{}
		}
	}

	graph := make(map[string][]string, len(sets))
	for source, targets := range sets {
		callees := make([]string, 0, len(targets))
		for t := range targets {
			callees = append(callees, t)
		}
		sort.Strings(callees)
		graph[source] = callees
	}
	return graph
}

func detectPattern(p pattern, contexts map[string]domain.EntityContext, graph map[string][]string) []domain.Workflow {
	starts := findByConcepts(p.start, contexts)
	ends := findByConcepts(p.end, contexts)

	var workflows []domain.Workflow
	for _, start := range starts {
		for _, end := range ends {
			if start == end {
				continue
			}
			path := findPath(start, end, graph)
			if path == nil {
				continue
			}
			if wf := buildHint(p, path, contexts); wf != nil {
				workflows = append(workflows, *wf)
			}
		}
	}
	return workflows
}

// findByConcepts returns the entities whose primary tag is one of the
// given concepts, in sorted name order.
func findByConcepts(concepts []string, contexts map[string]domain.EntityContext) []string {
	var matches []string
	for name, ctx := range contexts {
		for _, c := range concepts {
			if ctx.Domain.PrimaryTag == c {
				matches = append(matches, name)
				break
			}
		}
	}
	sort.Strings(matches)
	return matches
}

// findPath runs an unweighted breadth-first search from start to end
// and returns the first complete path, which is shortest by edge
// count. Returns nil when end is unreachable.
func findPath(start, end string, graph map[string][]string) []string {
	type item struct {
		current string
		path    []string
	}

	visited := map[string]bool{}
	queue := []item{{current: start, path: []string{start}}}

	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]

		if it.current == end {
			return it.path
		}
		if visited[it.current] {
			continue
		}
		visited[it.current] = true

		for _, neighbor := range graph[it.current] {
			if visited[neighbor] {
				continue
			}
			next := make([]string, len(it.path)+1)
			copy(next, it.path)
			next[len(it.path)] = neighbor
			queue = append(queue, item{current: neighbor, path: next})
		}
	}
	return nil
}

// buildHint converts a call path into a workflow hint. Path nodes
// without a context produce no step but stay in the reasoning, so the
// recorded path can be longer than the step list.
func buildHint(p pattern, path []string, contexts map[string]domain.EntityContext) *domain.Workflow {
	if len(path) < 2 {
		return nil
	}

	var steps []domain.WorkflowStep
	total := 0.0
	for i, name := range path {
		ctx, ok := contexts[name]
		if !ok {
			continue
		}

		role := domain.RoleProcessor
		switch i {
		case 0:
			role = domain.RoleInitiator
		case len(path) - 1:
			role = domain.RoleFinalizer
		}

		tags := make([]string, 0, len(ctx.Domain.Tags))
		for _, t := range ctx.Domain.Tags {
			tags = append(tags, t.Tag)
		}

		steps = append(steps, domain.WorkflowStep{
			EntityName: name,
			FilePath:   ctx.FilePath,
			DomainTags: tags,
			Role:       role,
		})

		if len(ctx.Domain.Tags) > 0 {
			total += ctx.Domain.Tags[0].Confidence
		}
	}
	if len(steps) == 0 {
		return nil
	}

	confidence := total / float64(len(steps))
	if confidence > 1.0 {
		confidence = 1.0
	}

	stepNames := make([]string, len(steps))
	for i, s := range steps {
		stepNames[i] = s.EntityName
	}

	return &domain.Workflow{
		Name:       fmt.Sprintf("%s: %s", p.name, strings.Join(stepNames, " -> ")),
		Steps:      steps,
		Confidence: confidence,
		Reasoning: []string{
			fmt.Sprintf("Found call path: %s", strings.Join(path, " -> ")),
			fmt.Sprintf("Matches %s pattern", p.name),
			fmt.Sprintf("Business process: %s", p.process),
		},
		BusinessProcess: p.process,
	}
}
