package scorer

import (
	"math"
	"strings"
	"unicode/utf8"

	"semdex/internal/domain"
)

// substring-matched, unlike the tagger's word-boundary keywords
var fileDomainKeywords = []string{
	"account", "ledger", "journal", "invoice", "payment", "tax",
	"balance", "posting", "transaction", "finance", "erp",
}

var entityDomainKeywords = []string{
	"account", "ledger", "journal", "invoice", "payment", "tax",
	"balance", "posting", "transaction", "debit", "credit", "gl",
}

var businessVerbs = []string{"create", "post", "validate", "calculate", "process"}

var docContentTerms = []string{"function", "class", "method", "calculate", "create", "validate"}

// ContextScorer assesses files and entities on four fixed dimensions:
// domain relevance, relationship density, docstring quality and test
// coverage. Every factor is a rule, every score comes with reasoning.
// Stateless and safe for concurrent use.
type ContextScorer struct{}

func NewContextScorer() *ContextScorer {
	return &ContextScorer{}
}

// ScoreFile scores a file. Weights: domain 0.4, density 0.3,
// documentation 0.2, tests 0.1.
func (s *ContextScorer) ScoreFile(fa *domain.FileAnalysis, pa *domain.ProjectAnalysis) domain.ContextScore {
	domainRel := fileDomainRelevance(fa)
	density := fileRelationshipDensity(fa, pa)
	docQuality := fileDocstringQuality(fa)
	testCov := fileTestCoverage(fa)

	reasoning := []string{
		pick(domainRel, 0.7, 0.3,
			"High domain relevance - appears to be core accounting logic",
			"Medium domain relevance - contains some accounting concepts",
			"Low domain relevance - utility or generic code"),
		pick(density, 0.7, 0.3,
			"High connectivity - central to the codebase",
			"Medium connectivity - moderately connected",
			"Low connectivity - peripheral code"),
		pick(docQuality, 0.7, 0.3,
			"Well documented - good docstring coverage",
			"Partially documented - some docstrings present",
			"Poorly documented - missing docstrings"),
	}
	if testCov > 0.5 {
		reasoning = append(reasoning, "Likely well tested - test file or test-related")
	} else {
		reasoning = append(reasoning, "Test coverage unclear - not identified as test code")
	}

	overall := domainRel*0.4 + density*0.3 + docQuality*0.2 + testCov*0.1
	return domain.ContextScore{
		OverallScore:        tier(overall),
		DomainRelevance:     domainRel,
		RelationshipDensity: density,
		DocstringQuality:    docQuality,
		TestCoverage:        testCov,
		Reasoning:           reasoning,
	}
}

// ScoreEntity scores an entity. Weights shift toward documentation:
// domain 0.3, density 0.3, documentation 0.3, tests 0.1. Test
// coverage is always 0 because static analysis cannot tell which
// tests exercise a single entity.
func (s *ContextScorer) ScoreEntity(e domain.Entity, fa *domain.FileAnalysis, pa *domain.ProjectAnalysis) domain.ContextScore {
	domainRel := entityDomainRelevance(e)
	density := entityRelationshipDensity(e, fa, pa)
	docQuality := entityDocstringQuality(e)
	testCov := 0.0

	reasoning := []string{
		pick(domainRel, 0.7, 0.3,
			"High domain relevance - core accounting function/class",
			"Medium domain relevance - accounting-related",
			"Low domain relevance - utility function"),
		pick(density, 0.7, 0.3,
			"Highly connected - called by many other functions",
			"Moderately connected - has some dependencies",
			"Low connectivity - rarely used"),
		pick(docQuality, 0.8, 0.4,
			"Well documented - comprehensive docstring",
			"Partially documented - basic docstring",
			"Undocumented - missing or poor docstring"),
		"Test coverage assessment requires test file analysis",
	}

	overall := domainRel*0.3 + density*0.3 + docQuality*0.3 + testCov*0.1
	return domain.ContextScore{
		OverallScore:        tier(overall),
		DomainRelevance:     domainRel,
		RelationshipDensity: density,
		DocstringQuality:    docQuality,
		TestCoverage:        testCov,
		Reasoning:           reasoning,
	}
}

func fileDomainRelevance(fa *domain.FileAnalysis) float64 {
	name := strings.ToLower(baseName(fa.FilePath))
	matches := 0
	for _, kw := range fileDomainKeywords {
		if strings.Contains(name, kw) {
			matches++
		}
	}
	base := math.Min(float64(matches)*0.2, 0.6)
	entityBoost := math.Min(float64(len(fa.Entities))*0.02, 0.3)
	relBoost := math.Min(float64(len(fa.Relationships))*0.01, 0.1)
	return math.Min(base+entityBoost+relBoost, 1.0)
}

func entityDomainRelevance(e domain.Entity) float64 {
	name := strings.ToLower(e.Name)
	doc := strings.ToLower(e.Docstring)

	nameMatches, docMatches := 0, 0
	for _, kw := range entityDomainKeywords {
		if strings.Contains(name, kw) {
			nameMatches++
		}
		if doc != "" && strings.Contains(doc, kw) {
			docMatches++
		}
	}
	score := math.Min(float64(nameMatches)*0.3+float64(docMatches)*0.2, 1.0)

	for _, verb := range businessVerbs {
		if strings.Contains(name, verb) {
			score = math.Min(score+0.2, 1.0)
			break
		}
	}
	return score
}

// fileRelationshipDensity relates edge count to entity count. The
// project-wide set uses qualified "file::name" endpoints, so only the
// file's own bare-name edges and project edges naming its entities
// verbatim contribute.
func fileRelationshipDensity(fa *domain.FileAnalysis, pa *domain.ProjectAnalysis) float64 {
	if len(fa.Entities) == 0 {
		return 0.0
	}
	names := make(map[string]struct{}, len(fa.Entities))
	for _, e := range fa.Entities {
		names[e.Name] = struct{}{}
	}
	related := 0
	for _, rel := range pa.AllRelationships {
		if _, ok := names[rel.Source]; ok {
			related++
			continue
		}
		if _, ok := names[rel.Target]; ok {
			related++
		}
	}
	total := related + len(fa.Relationships)
	density := float64(total) / float64(len(fa.Entities))
	return math.Min(density*0.1, 1.0)
}

func entityRelationshipDensity(e domain.Entity, fa *domain.FileAnalysis, pa *domain.ProjectAnalysis) float64 {
	count := 0
	for _, rel := range fa.Relationships {
		if rel.Source == e.Name || rel.Target == e.Name {
			count++
		}
	}
	for _, rel := range pa.AllRelationships {
		if rel.Source == e.Name || rel.Target == e.Name {
			count++
		}
	}
	return math.Min(float64(count)*0.2, 1.0)
}

func fileDocstringQuality(fa *domain.FileAnalysis) float64 {
	if len(fa.Entities) == 0 {
		return 0.0
	}
	withDoc := 0
	totalLen := 0
	for _, e := range fa.Entities {
		if e.Docstring != "" {
			withDoc++
		}
		totalLen += utf8.RuneCountInString(e.Docstring)
	}
	coverage := float64(withDoc) / float64(len(fa.Entities))
	avgLen := float64(totalLen) / float64(len(fa.Entities))
	lengthScore := math.Min(avgLen*0.001, 0.5)
	return math.Min(coverage*0.5+lengthScore, 1.0)
}

func entityDocstringQuality(e domain.Entity) float64 {
	if e.Docstring == "" {
		return 0.0
	}
	doc := strings.TrimSpace(e.Docstring)

	lengthScore := math.Min(float64(utf8.RuneCountInString(doc))*0.002, 0.6)

	content := 0.0
	if len(strings.Fields(doc)) > 5 {
		content += 0.2
	}
	if strings.Contains(doc, "Args:") || strings.Contains(doc, "Returns:") {
		content += 0.2
	}
	lower := strings.ToLower(doc)
	for _, term := range docContentTerms {
		if strings.Contains(lower, term) {
			content += 0.2
			break
		}
	}
	return math.Min(lengthScore+content, 1.0)
}

// fileTestCoverage is a naming heuristic: a "test" path segment is
// strong evidence, test-prefixed plain functions weaker, anything
// else unknown.
func fileTestCoverage(fa *domain.FileAnalysis) float64 {
	for _, part := range strings.Split(fa.FilePath, "/") {
		if strings.Contains(strings.ToLower(part), "test") {
			return 0.8
		}
	}
	for _, e := range fa.Entities {
		if e.Kind == domain.KindFunction && strings.HasPrefix(strings.ToLower(e.Name), "test") {
			return 0.6
		}
	}
	return 0.0
}

func tier(score float64) domain.QualityTier {
	switch {
	case score >= 0.7:
		return domain.TierHigh
	case score >= 0.4:
		return domain.TierMedium
	default:
		return domain.TierLow
	}
}

func pick(v, high, low float64, highMsg, midMsg, lowMsg string) string {
	switch {
	case v > high:
		return highMsg
	case v > low:
		return midMsg
	default:
		return lowMsg
	}
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, "/\\"); i >= 0 {
		return path[i+1:]
	}
	return path
}
