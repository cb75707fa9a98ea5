package app

import (
	"sort"
	"strings"

	"flex_reviews/internal/domain"
)

const maxKeywordInsights = 6

type keywordTopic struct {
	label    string
	patterns []string
}

// keywordDictionary declaration order doubles as the tie-break order for
// equal occurrence counts.
var keywordDictionary = []keywordTopic{
	{label: "cleanliness", patterns: []string{"clean", "dust", "dirty"}},
	{label: "noise", patterns: []string{"noise", "noisy", "loud"}},
	{label: "wifi", patterns: []string{"wifi", "internet"}},
	{label: "check-in", patterns: []string{"check-in", "checkin", "check in"}},
	{label: "heating", patterns: []string{"heat", "heating", "boiler"}},
	{label: "location", patterns: []string{"location", "neighborhood", "area"}},
	{label: "amenities", patterns: []string{"amenities", "appliance", "kitchen", "desk"}},
	{label: "comfort", patterns: []string{"comfortable", "comfy", "bed", "sofa"}},
	{label: "staff", patterns: []string{"host", "team", "staff", "concierge"}},
}

// extractKeywords scans review bodies against the dictionary and ranks the
// matched topics. A topic counts at most once per review no matter how many
// of its patterns match.
func extractKeywords(reviews []domain.NormalizedReview) []domain.KeywordInsight {
	counts := make([]int, len(keywordDictionary))
	for _, rv := range reviews {
		text := strings.ToLower(rv.PublicReview)
		for i, topic := range keywordDictionary {
			for _, p := range topic.patterns {
				if strings.Contains(text, p) {
					counts[i]++
					break
				}
			}
		}
	}

	out := make([]domain.KeywordInsight, 0, maxKeywordInsights)
	for i, topic := range keywordDictionary {
		if counts[i] > 0 {
			out = append(out, domain.KeywordInsight{Keyword: topic.label, Occurrences: counts[i]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Occurrences > out[j].Occurrences })
	if len(out) > maxKeywordInsights {
		out = out[:maxKeywordInsights]
	}
	return out
}
