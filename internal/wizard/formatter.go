package wizard

import "github.com/quotewise/intake-api/internal/domain"

// FormatAnswersForJSON converts an answers state into the JSON-storable
// structure persisted on the lead row. The category -> question id ->
// {question, type, answers, options} shape is preserved exactly. The input is
// never mutated; an empty state yields an empty object.
func FormatAnswersForJSON(state domain.AnswersState) map[string]interface{} {
	formatted := make(map[string]interface{}, len(state))
	for category, questions := range state {
		categoryAnswers := make(map[string]interface{}, len(questions))
		for questionID, answer := range questions {
			categoryAnswers[questionID] = map[string]interface{}{
				"question": answer.Question,
				"type":     answer.Type,
				"answers":  copyStrings(answer.Answers),
				"options":  copyStrings(answer.Options),
			}
		}
		formatted[category] = categoryAnswers
	}
	return formatted
}

func copyStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
