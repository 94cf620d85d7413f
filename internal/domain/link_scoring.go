package domain

import (
	"sort"
	"strings"
)

// LinkCandidate is a link with its quick-open match score.
type LinkCandidate struct {
	Link  *Link
	Score float64
}

// ScoreLink scores a link against a quick-open query.
// The title carries the match; the host is a weaker fallback.
func ScoreLink(queryStr string, link *Link) float64 {
	if link == nil {
		return 0.0
	}
	queryStr = strings.ToLower(strings.TrimSpace(queryStr))
	if queryStr == "" {
		return 0.0
	}

	title := strings.ToLower(link.Title)
	score := scoreText(queryStr, title)

	if host := HostFromURL(link.URL); host != "" {
		if hostScore := scoreText(queryStr, host) * hostWeight; hostScore > score {
			score = hostScore
		}
	}

	for _, tag := range link.Tags {
		if strings.EqualFold(tag, queryStr) && score < ScoreSubstringMatch {
			score = ScoreSubstringMatch
		}
	}

	if score > 0 && link.Favorite {
		score += ScoreFavoriteBonus
	}
	return score
}

// hostWeight discounts host matches below equivalent title matches.
const hostWeight = 0.8

func scoreText(queryStr, text string) float64 {
	if text == "" {
		return 0.0
	}

	// Exact match (highest score)
	if queryStr == text {
		return ScoreExactMatch + ScoreExactTitleBonus
	}

	if strings.HasPrefix(text, queryStr) {
		return ScorePrefixMatch
	}

	if strings.Contains(text, queryStr) {
		index := strings.Index(text, queryStr)
		// Earlier substring matches get higher score
		substringBonus := ScorePositionBonus * (1.0 - float64(index)/float64(len(text)))
		return ScoreSubstringMatch + substringBonus
	}

	// Every query word appears somewhere in the text
	queryWords := strings.Fields(queryStr)
	if len(queryWords) > 1 {
		allMatch := true
		for _, word := range queryWords {
			if !strings.Contains(text, word) {
				allMatch = false
				break
			}
		}
		if allMatch {
			return ScoreFuzzyMatch
		}
	}

	similarity := calculateSimilarity(queryStr, text)
	if similarity > 0.5 {
		return ScoreFuzzyMatch * similarity
	}

	return 0.0
}

// RankLinks returns the links matching queryStr, best first.
func RankLinks(queryStr string, links []*Link) []*LinkCandidate {
	candidates := make([]*LinkCandidate, 0, len(links))
	for _, link := range links {
		score := ScoreLink(queryStr, link)
		if score == 0.0 {
			continue
		}
		candidates = append(candidates, &LinkCandidate{Link: link, Score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

// FindBestLink returns the best quick-open match, or nil.
func FindBestLink(queryStr string, links []*Link) *Link {
	candidates := RankLinks(queryStr, links)
	if len(candidates) == 0 {
		return nil
	}
	return candidates[0].Link
}
