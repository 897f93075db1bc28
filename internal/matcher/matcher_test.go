package matcher_test

import (
	"testing"

	"github.com/quotewise/intake-api/internal/domain"
	"github.com/quotewise/intake-api/internal/matcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMatcher() *matcher.KeywordMatcher {
	return matcher.NewKeywordMatcher(zap.NewNop())
}

func TestKeywordMatcher_FindMatchingQuestionSets(t *testing.T) {
	m := newMatcher()
	catalog := matcher.DefaultCatalog()

	t.Run("matches a direct keyword", func(t *testing.T) {
		candidates, err := m.FindMatchingQuestionSets("my roof needs new shingles", catalog)
		require.NoError(t, err)
		require.NotEmpty(t, candidates)
		assert.Equal(t, "roofing", candidates[0].Set.Category)
	})

	t.Run("matches a stemmed keyword", func(t *testing.T) {
		// "leaky" should hit the "leak" keyword
		candidates, err := m.FindMatchingQuestionSets("there is a leaky pipe fitting above the ceiling", catalog)
		require.NoError(t, err)
		require.NotEmpty(t, candidates)
	})

	t.Run("best match sorts first", func(t *testing.T) {
		candidates, err := m.FindMatchingQuestionSets("roof leak near the gutter flashing", catalog)
		require.NoError(t, err)
		require.NotEmpty(t, candidates)
		assert.Equal(t, "roofing", candidates[0].Set.Category)
		for i := 1; i < len(candidates); i++ {
			assert.GreaterOrEqual(t, candidates[i-1].Score, candidates[i].Score)
		}
	})

	t.Run("no matches for gibberish", func(t *testing.T) {
		candidates, err := m.FindMatchingQuestionSets("xyzzy plugh frobnicate", catalog)
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("empty description", func(t *testing.T) {
		candidates, err := m.FindMatchingQuestionSets("   ", catalog)
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})
}

func TestKeywordMatcher_ConsolidateQuestionSets(t *testing.T) {
	m := newMatcher()

	q1 := domain.QuestionDefinition{ID: "q1", Question: "First?", Type: "text"}
	q2 := domain.QuestionDefinition{ID: "q2", Question: "Second?", Type: "text"}
	q3 := domain.QuestionDefinition{ID: "q3", Question: "Third?", Type: "text"}

	t.Run("dedupes question ids within a category", func(t *testing.T) {
		candidates := []matcher.Candidate{
			{Set: domain.QuestionSet{Category: "roofing", Questions: []domain.QuestionDefinition{q1, q2}}, Score: 0.8},
			{Set: domain.QuestionSet{Category: "roofing", Questions: []domain.QuestionDefinition{q2, q3}}, Score: 0.4},
		}

		result := m.ConsolidateQuestionSets(candidates, "roof leak")
		require.Len(t, result, 1)
		assert.Equal(t, "roofing", result[0].Category)
		require.Len(t, result[0].Questions, 3)
		assert.Equal(t, []string{"q1", "q2", "q3"}, questionIDs(result[0].Questions))
	})

	t.Run("preserves candidate order across categories", func(t *testing.T) {
		candidates := []matcher.Candidate{
			{Set: domain.QuestionSet{Category: "roofing", Questions: []domain.QuestionDefinition{q1}}, Score: 0.9},
			{Set: domain.QuestionSet{Category: "painting", Questions: []domain.QuestionDefinition{q2}}, Score: 0.5},
		}

		result := m.ConsolidateQuestionSets(candidates, "roof and paint")
		require.Len(t, result, 2)
		assert.Equal(t, "roofing", result[0].Category)
		assert.Equal(t, "painting", result[1].Category)
	})

	t.Run("empty candidates yield empty result", func(t *testing.T) {
		result := m.ConsolidateQuestionSets(nil, "anything")
		assert.Empty(t, result)
	})
}

func TestDefaultCatalog(t *testing.T) {
	catalog := matcher.DefaultCatalog()
	require.NotEmpty(t, catalog)

	for _, set := range catalog {
		assert.NotEmpty(t, set.Category)
		assert.NotEmpty(t, set.Keywords, "category %s has no keywords", set.Category)
		assert.NotEmpty(t, set.Questions, "category %s has no questions", set.Category)
	}
}

func TestFindCategory(t *testing.T) {
	catalog := matcher.DefaultCatalog()

	set, ok := matcher.FindCategory(catalog, "roofing")
	require.True(t, ok)
	assert.Equal(t, "roofing", set.Category)

	set, ok = matcher.FindCategory(catalog, "ROOFING")
	require.True(t, ok)
	assert.Equal(t, "roofing", set.Category)

	_, ok = matcher.FindCategory(catalog, "submarine-repair")
	assert.False(t, ok)
}

func questionIDs(questions []domain.QuestionDefinition) []string {
	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	return ids
}
