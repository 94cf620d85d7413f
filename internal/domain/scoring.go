package domain

// Quick-open scoring weights. A link's score is the best of its title, URL
// host and tags, plus the bonuses.
const (
	ScoreExactMatch      = 100.0
	ScorePrefixMatch     = 75.0
	ScoreSubstringMatch  = 50.0
	ScoreFuzzyMatch      = 25.0
	ScorePositionBonus   = 10.0  // scaled by how early a substring match starts
	ScoreExactTitleBonus = 200.0 // added to an exact title match
	ScoreFavoriteBonus   = 5.0   // favorites win ties
)

// calculateSimilarity returns the share of query runes that occur anywhere
// in text, in [0, 1]. Thai has no case, so runes are compared as given.
func calculateSimilarity(query, text string) float64 {
	if query == "" || text == "" {
		return 0
	}
	present := make(map[rune]struct{}, len(text))
	for _, r := range text {
		present[r] = struct{}{}
	}
	var hits, total int
	for _, r := range query {
		total++
		if _, ok := present[r]; ok {
			hits++
		}
	}
	return float64(hits) / float64(total)
}
