package search

import (
	"path"
	"sort"
	"strings"

	"semdex/internal/adapter/analyzer"
	"semdex/internal/domain"
)

// Engine ranks index entries against natural language queries. Ranking
// is exact term overlap between the query and the item's search terms,
// boosted by name matches, domain context and quality tier.
type Engine struct {
	tokenizer *analyzer.Tokenizer
}

func NewEngine() *Engine {
	return &Engine{tokenizer: analyzer.NewTokenizer()}
}

// QueryIndex scores every entity and file of the index against the
// query. Items sharing no terms with the query are excluded. Results
// come back sorted by score descending, ties broken by name and then
// file path, truncated to maxResults when positive.
func (e *Engine) QueryIndex(idx *domain.SemanticIndex, query string, maxResults int) []domain.QueryResult {
	results := []domain.QueryResult{}

	queryTerms := termSet(e.tokenizer.Tokenize(query))
	if len(queryTerms) == 0 {
		return results
	}

	for _, entity := range idx.Entities {
		score, matched := relevance(queryTerms, e.entityTerms(entity), entity.Name, entity.DomainContext, entity.ContextScore)
		if score == 0 {
			continue
		}
		results = append(results, buildResult(entity.Name, entity.FilePath, score, matched, entity.DomainContext, entity.ContextScore))
	}

	// Files rank with the same formula, surfacing as results named by
	// their basename.
	for filePath, file := range idx.Files {
		name := path.Base(filePath)
		score, matched := relevance(queryTerms, e.fileTerms(filePath, file), name, file.DomainContext, file.ContextScore)
		if score == 0 {
			continue
		}
		results = append(results, buildResult(name, filePath, score, matched, file.DomainContext, file.ContextScore))
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].RelevanceScore != results[j].RelevanceScore {
			return results[i].RelevanceScore > results[j].RelevanceScore
		}
		if results[i].EntityName != results[j].EntityName {
			return results[i].EntityName < results[j].EntityName
		}
		return results[i].FilePath < results[j].FilePath
	})

	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

func (e *Engine) entityTerms(entity domain.SemanticEntity) map[string]struct{} {
	terms := termSet(e.tokenizer.Tokenize(entity.Name))
	addContextTerms(terms, entity.DomainContext)
	return terms
}

func (e *Engine) fileTerms(filePath string, file domain.SemanticFile) map[string]struct{} {
	terms := termSet(e.tokenizer.Tokenize(path.Base(filePath)))
	addContextTerms(terms, file.DomainContext)
	return terms
}

func addContextTerms(terms map[string]struct{}, dc domain.DomainContext) {
	for _, tag := range dc.Tags {
		terms[strings.ToLower(tag.Tag)] = struct{}{}
	}
	if dc.PrimaryTag != "" {
		terms[strings.ToLower(dc.PrimaryTag)] = struct{}{}
	}
}

func termSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

// relevance computes the score and the sorted list of matched terms.
// Zero score means the item shares nothing with the query.
func relevance(queryTerms, itemTerms map[string]struct{}, name string, dc domain.DomainContext, cs domain.ContextScore) (float64, []string) {
	var matched []string
	for term := range queryTerms {
		if _, ok := itemTerms[term]; ok {
			matched = append(matched, term)
		}
	}
	if len(matched) == 0 {
		return 0, nil
	}
	sort.Strings(matched)

	score := float64(len(matched)) / float64(len(queryTerms))

	nameLower := strings.ToLower(name)
	for term := range queryTerms {
		if strings.Contains(nameLower, term) {
			score += 0.3
			break
		}
	}

	if dc.IsAccountingRelated {
		score += 0.2
	}
	if dc.PrimaryTag != "" {
		primary := strings.ToLower(dc.PrimaryTag)
		for term := range queryTerms {
			if strings.Contains(primary, term) {
				score += 0.3
				break
			}
		}
	}

	switch cs.OverallScore {
	case domain.TierHigh:
		score += 0.1
	case domain.TierMedium:
		score += 0.05
	}

	if score > 1.0 {
		score = 1.0
	}
	return score, matched
}

func buildResult(name, filePath string, score float64, matched []string, dc domain.DomainContext, cs domain.ContextScore) domain.QueryResult {
	tags := make([]string, 0, len(dc.Tags))
	for _, tag := range dc.Tags {
		tags = append(tags, tag.Tag)
	}

	tier := "UNKNOWN"
	if cs.OverallScore != "" {
		tier = string(cs.OverallScore)
	}

	shortContext := ""
	if dc.PrimaryTag != "" {
		shortContext = "Primary domain: " + dc.PrimaryTag
	}

	reasoning := []string{"Matches query terms: " + strings.Join(matched, ", ")}
	if dc.IsAccountingRelated {
		reasoning = append(reasoning, "Identified as accounting-related code")
	}
	if cs.OverallScore == domain.TierHigh {
		reasoning = append(reasoning, "High-quality, well-documented code")
	}

	return domain.QueryResult{
		EntityName:     name,
		FilePath:       filePath,
		RelevanceScore: score,
		DomainTags:     tags,
		ContextScore:   tier,
		ShortContext:   shortContext,
		Reasoning:      reasoning,
	}
}
