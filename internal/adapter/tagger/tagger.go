package tagger

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"semdex/internal/domain"
)

// concept keyword lists. A name or docstring matching a keyword on
// word boundaries contributes to that concept's confidence.
type concept struct {
	label    string
	keywords []string
}

var accountingConcepts = []concept{
	{"ledger", []string{
		"ledger", "posting", "entry", "debit", "credit", "balance",
		"general_ledger", "gl_entry", "ledger_entry",
	}},
	{"journal_entry", []string{
		"journal", "jv", "journal_entry", "journal_voucher",
		"accounting_entry", "entry",
	}},
	{"trial_balance", []string{
		"trial_balance", "trial", "balance_sheet", "balances",
	}},
	{"profit_and_loss", []string{
		"profit_loss", "pnl", "income_statement", "profit", "loss",
	}},
	{"reconciliation", []string{
		"reconcile", "reconciliation", "matching", "clearance",
	}},
	{"tax", []string{
		"tax", "gst", "vat", "taxation", "tax_entry",
	}},
	{"invoice", []string{
		"invoice", "billing", "bill", "sales_invoice", "purchase_invoice",
	}},
	{"payment", []string{
		"payment", "pay", "settlement", "payment_entry",
	}},
	{"deferred_revenue", []string{
		"deferred", "revenue", "accrual", "deferred_revenue",
	}},
	{"reports", []string{
		"report", "reporting", "financial_report", "statement",
	}},
}

// path fragments whose presence marks a file as accounting-related
// regardless of its contents.
var accountingPathPatterns = []string{
	"accounts", "accounting", "finance", "ledger", "journal",
}

// Tagger classifies files and entities into accounting concepts with
// explainable, rule-based matching. Stateless and safe for concurrent
// use.
type Tagger struct{}

func NewTagger() *Tagger {
	return &Tagger{}
}

// TagFile tags a file from its name and the names and docstrings of
// its entities. A path match boosts every found concept by 0.3 and
// marks the file accounting-related even without keyword hits.
func (t *Tagger) TagFile(fa *domain.FileAnalysis) domain.DomainContext {
	pathReasons := matchPath(fa.FilePath)

	fileName := strings.ToLower(baseName(fa.FilePath))
	nameTags := tagText(fileName, "file name")
	var docTags []domain.DomainTag
	for _, e := range fa.Entities {
		if e.Docstring != "" {
			docTags = append(docTags, tagText(e.Docstring, fmt.Sprintf("docstring of %s", e.Name))...)
		}
		nameTags = append(nameTags, tagText(e.Name, fmt.Sprintf("name of %s", e.Name))...)
	}

	return aggregate(append(nameTags, docTags...), pathReasons)
}

// TagEntity tags a single entity from its name and docstring. No
// path logic applies.
func (t *Tagger) TagEntity(e domain.Entity) domain.DomainContext {
	tags := tagText(e.Name, "entity name")
	if e.Docstring != "" {
		tags = append(tags, tagText(e.Docstring, "docstring")...)
	}
	return aggregate(tags, nil)
}

// tagText scores one text source against every concept. Confidence is
// 0.2 per matched keyword, capped at 0.8 per source.
func tagText(text, source string) []domain.DomainTag {
	lower := strings.ToLower(text)
	var tags []domain.DomainTag

	for _, c := range accountingConcepts {
		var matched []string
		for _, kw := range c.keywords {
			if matchesWord(lower, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) == 0 {
			continue
		}

		confidence := math.Min(float64(len(matched))*0.2, 0.8)
		shown := matched
		if len(shown) > 3 {
			shown = shown[:3]
		}
		reason := fmt.Sprintf("Found %d keyword matches in %s: %s",
			len(matched), source, strings.Join(shown, ", "))
		if len(matched) > 3 {
			reason += fmt.Sprintf(" (and %d more)", len(matched)-3)
		}

		tags = append(tags, domain.DomainTag{
			Tag:        c.label,
			Confidence: confidence,
			Reasoning:  []string{reason},
		})
	}
	return tags
}

// aggregate sums per-source confidences per concept, applies the path
// boost, caps at 1.0 and drops anything below 0.1. Ties in the final
// ordering break on the tag label so results are reproducible.
func aggregate(all []domain.DomainTag, pathReasons []string) domain.DomainContext {
	scores := map[string]float64{}
	reasons := map[string][]string{}
	for _, t := range all {
		scores[t.Tag] += t.Confidence
		reasons[t.Tag] = append(reasons[t.Tag], t.Reasoning...)
	}
	if len(pathReasons) > 0 {
		for tag := range scores {
			scores[tag] += 0.3
			reasons[tag] = append(reasons[tag], pathReasons...)
		}
	}

	ctx := domain.DomainContext{
		Tags:                []domain.DomainTag{},
		IsAccountingRelated: len(pathReasons) > 0,
	}
	for tag, score := range scores {
		confidence := math.Min(score, 1.0)
		if confidence < 0.1 {
			continue
		}
		ctx.Tags = append(ctx.Tags, domain.DomainTag{
			Tag:        tag,
			Confidence: confidence,
			Reasoning:  reasons[tag],
		})
	}
	sort.Slice(ctx.Tags, func(i, j int) bool {
		if ctx.Tags[i].Confidence != ctx.Tags[j].Confidence {
			return ctx.Tags[i].Confidence > ctx.Tags[j].Confidence
		}
		return ctx.Tags[i].Tag < ctx.Tags[j].Tag
	})
	if len(ctx.Tags) > 0 {
		ctx.PrimaryTag = ctx.Tags[0].Tag
		ctx.IsAccountingRelated = true
	}
	return ctx
}

// matchPath reports which accounting path patterns the file path
// contains, one reasoning line each.
func matchPath(path string) []string {
	lower := strings.ToLower(path)
	var reasons []string
	for _, pat := range accountingPathPatterns {
		if strings.Contains(lower, pat) {
			reasons = append(reasons, "File path matches accounting pattern: "+pat)
		}
	}
	if i := strings.Index(lower, "erpnext"); i >= 0 && strings.Contains(lower[i:], "accounts") {
		reasons = append(reasons, "File path matches accounting pattern: erpnext accounts")
	}
	return reasons
}

// matchesWord reports whether kw occurs in text on word boundaries.
// Letters and digits are word characters; underscores separate, so
// keywords match inside snake_case identifiers.
func matchesWord(text, kw string) bool {
	for start := 0; ; {
		i := strings.Index(text[start:], kw)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(kw)
		beforeOK := i == 0 || !isWordChar(text[i-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		start = i + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, "/\\"); i >= 0 {
		return path[i+1:]
	}
	return path
}
