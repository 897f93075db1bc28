// Package matcher selects category question sets for a free-text project
// description. The matching strategy is pluggable; the default implementation
// scores keyword overlap against the catalog.
package matcher

import (
	"sort"
	"strings"

	"github.com/quotewise/intake-api/internal/domain"
	"go.uber.org/zap"
)

// Candidate is one question set matched against a description
type Candidate struct {
	Set   domain.QuestionSet
	Score float64
}

// Matcher finds and consolidates question sets for a project description.
// A failed FindMatchingQuestionSets is treated by callers as "no matches",
// not as a hard error.
type Matcher interface {
	FindMatchingQuestionSets(description string, catalog []domain.QuestionSet) ([]Candidate, error)
	ConsolidateQuestionSets(candidates []Candidate, description string) []domain.CategoryQuestions
}

// KeywordMatcher scores question sets by keyword overlap with the description
type KeywordMatcher struct {
	logger *zap.Logger
}

// NewKeywordMatcher creates a new keyword matcher
func NewKeywordMatcher(logger *zap.Logger) *KeywordMatcher {
	return &KeywordMatcher{logger: logger}
}

// FindMatchingQuestionSets returns catalog entries whose keywords appear in
// the description, best match first. An empty result means the wizard should
// fall back to manual category selection.
func (m *KeywordMatcher) FindMatchingQuestionSets(description string, catalog []domain.QuestionSet) ([]Candidate, error) {
	tokens := tokenize(description)
	if len(tokens) == 0 {
		return nil, nil
	}

	var candidates []Candidate
	for _, set := range catalog {
		hits := 0
		for _, keyword := range set.Keywords {
			if matchesKeyword(tokens, description, keyword) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		candidates = append(candidates, Candidate{
			Set:   set,
			Score: float64(hits) / float64(len(set.Keywords)),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	m.logger.Debug("matched question sets",
		zap.Int("candidates", len(candidates)),
		zap.Int("catalog_size", len(catalog)),
	)

	return candidates, nil
}

// ConsolidateQuestionSets merges candidates into per-category question lists,
// deduplicating questions by id while preserving order. Candidates arrive
// best-first, so the first set seen for a category leads its question order.
func (m *KeywordMatcher) ConsolidateQuestionSets(candidates []Candidate, description string) []domain.CategoryQuestions {
	var order []string
	byCategory := make(map[string][]domain.QuestionDefinition)
	seen := make(map[string]map[string]bool)

	for _, c := range candidates {
		category := c.Set.Category
		if _, ok := byCategory[category]; !ok {
			order = append(order, category)
			byCategory[category] = nil
			seen[category] = make(map[string]bool)
		}
		for _, q := range c.Set.Questions {
			if seen[category][q.ID] {
				continue
			}
			seen[category][q.ID] = true
			byCategory[category] = append(byCategory[category], q)
		}
	}

	result := make([]domain.CategoryQuestions, 0, len(order))
	for _, category := range order {
		result = append(result, domain.CategoryQuestions{
			Category:  category,
			Questions: byCategory[category],
		})
	}
	return result
}

// matchesKeyword checks a keyword against the tokenized description. Multi
// word keywords are matched as substrings of the whole description.
func matchesKeyword(tokens map[string]bool, description string, keyword string) bool {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return false
	}
	if strings.Contains(keyword, " ") {
		return strings.Contains(strings.ToLower(description), keyword)
	}
	if tokens[keyword] {
		return true
	}
	// Allow simple stem hits: "leaky" matches keyword "leak"
	for token := range tokens {
		if strings.HasPrefix(token, keyword) {
			return true
		}
	}
	return false
}

func tokenize(text string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	tokens := make(map[string]bool, len(fields))
	for _, f := range fields {
		if len(f) > 1 {
			tokens[f] = true
		}
	}
	return tokens
}
