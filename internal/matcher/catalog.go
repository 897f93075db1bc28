package matcher

import (
	"strings"

	"github.com/quotewise/intake-api/internal/domain"
)

// DefaultCatalog returns the built-in category question sets. Deployments can
// replace this through configuration; the defaults cover the common trades.
func DefaultCatalog() []domain.QuestionSet {
	return []domain.QuestionSet{
		{
			Category: "roofing",
			Keywords: []string{"roof", "leak", "shingle", "gutter", "flashing"},
			Questions: []domain.QuestionDefinition{
				{ID: "roof-type", Question: "What type of roof do you have?", Type: "single_select", Options: []string{"Asphalt shingle", "Metal", "Tile", "Flat", "Not sure"}},
				{ID: "roof-age", Question: "How old is the roof?", Type: "single_select", Options: []string{"0-10 years", "10-20 years", "20+ years", "Not sure"}},
				{ID: "roof-issue", Question: "What issues are you seeing?", Type: "multi_select", Options: []string{"Active leak", "Missing shingles", "Sagging", "Storm damage", "General wear"}},
			},
		},
		{
			Category: "bathroom",
			Keywords: []string{"bathroom", "shower", "tub", "vanity", "tile"},
			Questions: []domain.QuestionDefinition{
				{ID: "bath-scope", Question: "What is the scope of the remodel?", Type: "single_select", Options: []string{"Full remodel", "Shower/tub only", "Fixtures only"}},
				{ID: "bath-size", Question: "Roughly how large is the bathroom?", Type: "single_select", Options: []string{"Half bath", "Full bath", "Primary bath"}},
			},
		},
		{
			Category: "kitchen",
			Keywords: []string{"kitchen", "cabinet", "countertop", "backsplash", "appliance"},
			Questions: []domain.QuestionDefinition{
				{ID: "kitchen-scope", Question: "What is the scope of the project?", Type: "single_select", Options: []string{"Full remodel", "Cabinets and counters", "Counters only"}},
				{ID: "kitchen-layout", Question: "Will the layout change?", Type: "single_select", Options: []string{"Keep current layout", "Minor changes", "Major changes"}},
			},
		},
		{
			Category: "flooring",
			Keywords: []string{"floor", "hardwood", "laminate", "carpet", "vinyl"},
			Questions: []domain.QuestionDefinition{
				{ID: "floor-material", Question: "What material are you considering?", Type: "multi_select", Options: []string{"Hardwood", "Laminate", "Vinyl plank", "Tile", "Carpet"}},
				{ID: "floor-area", Question: "Approximate area to cover?", Type: "single_select", Options: []string{"Under 500 sq ft", "500-1000 sq ft", "Over 1000 sq ft"}},
			},
		},
		{
			Category: "painting",
			Keywords: []string{"paint", "painting", "wall", "exterior paint", "interior paint"},
			Questions: []domain.QuestionDefinition{
				{ID: "paint-location", Question: "Interior or exterior?", Type: "single_select", Options: []string{"Interior", "Exterior", "Both"}},
				{ID: "paint-rooms", Question: "How many rooms or sides?", Type: "text"},
			},
		},
		{
			Category: "fencing",
			Keywords: []string{"fence", "fencing", "gate", "privacy"},
			Questions: []domain.QuestionDefinition{
				{ID: "fence-material", Question: "What fence material?", Type: "single_select", Options: []string{"Wood", "Vinyl", "Chain link", "Aluminum"}},
				{ID: "fence-length", Question: "Approximate length in feet?", Type: "text"},
			},
		},
	}
}

// Categories returns just the category names of a catalog
func Categories(catalog []domain.QuestionSet) []string {
	names := make([]string, 0, len(catalog))
	for _, set := range catalog {
		names = append(names, set.Category)
	}
	return names
}

// FindCategory returns the catalog entry for a category name, if present.
// Matching is case-insensitive; the widget sends display-cased names.
func FindCategory(catalog []domain.QuestionSet, category string) (domain.QuestionSet, bool) {
	for _, set := range catalog {
		if strings.EqualFold(set.Category, category) {
			return set, true
		}
	}
	return domain.QuestionSet{}, false
}
