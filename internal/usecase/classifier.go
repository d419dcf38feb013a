package usecase

import (
	"regexp"
	"strings"

	"github.com/labelsafe/backend/internal/domain"
)

// Classifier is the deterministic, local, tag/keyword-based evaluator.
// It maps one ProductRecord to a verdict using only data already present
// in the record: no network access, no side effects. Evaluate is a total
// function over partially populated records and never fails.
type Classifier struct {
	lang string
}

// NewClassifier creates a classifier producing notes in the given
// language. Unknown languages fall back to Slovak.
func NewClassifier(lang string) *Classifier {
	if lang == "" {
		lang = "sk"
	}
	return &Classifier{lang: lang}
}

// Evaluate classifies a product record. Checks run in priority order and
// only ever move the status toward "avoid"/"maybe", never back to
// "safe"; notes accumulate across all checks that fire.
func (c *Classifier) Evaluate(p *domain.ProductRecord) domain.ClassificationVerdict {
	if p == nil {
		p = &domain.ProductRecord{}
	}

	notes := []string{}

	hasMilkTag := anyTagMatch(p.AllergenTags, milkTagRegex)
	hasGlutenTag := anyTagMatch(p.AllergenTags, glutenTagRegex)

	ingredients := c.ingredientText(p)
	hasMilkText := anyTermIn(ingredients, milkTerms)
	hasGlutenText := anyTermIn(ingredients, glutenTerms)

	status := domain.StatusMaybe

	if hasMilkTag || hasMilkText {
		status = domain.StatusAvoid
		notes = append(notes, noteText(c.lang, noteMilk))
	}
	if hasGlutenTag || hasGlutenText {
		status = domain.StatusAvoid
		notes = append(notes, noteText(c.lang, noteGluten))
	}

	tracesText := c.tracesText(p)

	if !hasMilkTag && !hasMilkText && !hasGlutenTag && !hasGlutenText {
		if c.declaredGlutenFree(p) && !tracesGlutenRegex.MatchString(tracesText) && !mayContainGluten(p) {
			status = domain.StatusSafe
			notes = append(notes, noteText(c.lang, noteGlutenFree))
		} else {
			status = domain.StatusMaybe
			notes = append(notes, noteText(c.lang, noteInconclusive))
		}
	}

	// Traces only ever downgrade: safe becomes maybe, avoid stays avoid.
	if tracesMilkRegex.MatchString(tracesText) {
		notes = append(notes, noteText(c.lang, noteTracesMilk))
		if status == domain.StatusSafe {
			status = domain.StatusMaybe
		}
	}
	if tracesGlutenRegex.MatchString(tracesText) {
		notes = append(notes, noteText(c.lang, noteTracesGluten))
		if status == domain.StatusSafe {
			status = domain.StatusMaybe
		}
	}

	return domain.ClassificationVerdict{Status: status, Notes: notes}
}

// ingredientText concatenates the available ingredient-text variants,
// preferring the classifier's language and falling back through the
// fixed priority chain, lowercased for term matching.
func (c *Classifier) ingredientText(p *domain.ProductRecord) string {
	var parts []string
	seen := map[string]bool{}
	for _, lang := range append([]string{c.lang}, ingredientLangPriority...) {
		if seen[lang] {
			continue
		}
		seen[lang] = true
		if text := p.Ingredients(lang); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// tracesText joins the free-text and tagged "may contain" declarations.
func (c *Classifier) tracesText(p *domain.ProductRecord) string {
	parts := make([]string, 0, 2)
	if p.Traces != "" {
		parts = append(parts, p.Traces)
	}
	if len(p.TracesTags) > 0 {
		parts = append(parts, strings.Join(p.TracesTags, ", "))
	}
	return strings.ToLower(strings.Join(parts, ", "))
}

// declaredGlutenFree reports whether the record carries a gluten-free
// declaration, either as a label tag or as a free-text claim on the
// labels, traces or product name.
func (c *Classifier) declaredGlutenFree(p *domain.ProductRecord) bool {
	if anyTagMatch(p.LabelTags, glutenFreeLabelRegex) {
		return true
	}
	claims := strings.Join([]string{
		p.Labels,
		p.Traces,
		strings.Join(p.TracesTags, " "),
		p.Name,
		p.GenericName,
	}, " ")
	return freeFromClaimRegex.MatchString(claims)
}

func mayContainGluten(p *domain.ProductRecord) bool {
	return anyTagMatch(p.AnalysisTags, mayContainGlutenRegex)
}

func anyTagMatch(tags []string, re *regexp.Regexp) bool {
	for _, tag := range tags {
		if re.MatchString(tag) {
			return true
		}
	}
	return false
}

func anyTermIn(text string, terms []string) bool {
	if text == "" {
		return false
	}
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
