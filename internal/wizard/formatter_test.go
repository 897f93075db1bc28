package wizard_test

import (
	"encoding/json"
	"testing"

	"github.com/quotewise/intake-api/internal/domain"
	"github.com/quotewise/intake-api/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAnswersForJSON(t *testing.T) {
	t.Run("preserves the nested structure", func(t *testing.T) {
		state := domain.AnswersState{
			"roofing": {
				"roof-type": {
					Question: "What type of roof do you have?",
					Type:     "single_select",
					Answers:  []string{"Metal"},
					Options:  []string{"Asphalt shingle", "Metal", "Tile"},
				},
				"roof-age": {
					Question: "How old is the roof?",
					Type:     "single_select",
					Answers:  []string{"10-20 years"},
					Options:  []string{"0-10 years", "10-20 years", "20+ years"},
				},
			},
			"painting": {
				"paint-rooms": {
					Question: "How many rooms or sides?",
					Type:     "text",
					Answers:  []string{"3 rooms"},
				},
			},
		}

		formatted := wizard.FormatAnswersForJSON(state)

		payload, err := json.Marshal(formatted)
		require.NoError(t, err)

		var decoded map[string]map[string]struct {
			Question string   `json:"question"`
			Type     string   `json:"type"`
			Answers  []string `json:"answers"`
			Options  []string `json:"options"`
		}
		require.NoError(t, json.Unmarshal(payload, &decoded))

		require.Contains(t, decoded, "roofing")
		require.Contains(t, decoded["roofing"], "roof-type")
		assert.Equal(t, "What type of roof do you have?", decoded["roofing"]["roof-type"].Question)
		assert.Equal(t, []string{"Metal"}, decoded["roofing"]["roof-type"].Answers)
		assert.Len(t, decoded["roofing"], 2)
		assert.Len(t, decoded["painting"], 1)
	})

	t.Run("nil slices become empty arrays", func(t *testing.T) {
		state := domain.AnswersState{
			"painting": {
				"paint-rooms": {Question: "How many rooms?", Type: "text"},
			},
		}

		payload, err := json.Marshal(wizard.FormatAnswersForJSON(state))
		require.NoError(t, err)
		assert.Contains(t, string(payload), `"answers":[]`)
		assert.Contains(t, string(payload), `"options":[]`)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		answers := []string{"Metal"}
		state := domain.AnswersState{
			"roofing": {
				"roof-type": {Question: "Type?", Type: "single_select", Answers: answers},
			},
		}

		formatted := wizard.FormatAnswersForJSON(state)
		formatted["roofing"].(map[string]interface{})["roof-type"].(map[string]interface{})["answers"].([]string)[0] = "changed"

		assert.Equal(t, "Metal", answers[0])
	})

	t.Run("empty state yields empty object", func(t *testing.T) {
		payload, err := json.Marshal(wizard.FormatAnswersForJSON(domain.AnswersState{}))
		require.NoError(t, err)
		assert.Equal(t, "{}", string(payload))
	})
}
