package cluster

import (
	"sort"

	"ai-guidance-be/pkg/store"
)

// DefaultTheme labels verses that arrive without any cluster theme.
const DefaultTheme = "general"

// ThematicGroup is a theme with its verses ordered by descending relevance.
// Derived per synthesis call, never persisted.
type ThematicGroup struct {
	Theme            string
	Verses           []store.Verse
	AverageRelevance float64
}

// Outcome is the ranked clustering result: one primary theme plus up to two
// supporting themes, all sorted descending by average relevance.
type Outcome struct {
	Groups     []ThematicGroup
	Primary    *ThematicGroup
	Supporting []ThematicGroup
}

// Clusterer groups verses by theme. Deterministic and order-stable: equal
// averages are broken by first-seen order, so re-clustering an already
// clustered verse set yields the same assignment.
type Clusterer struct{}

func New() *Clusterer {
	return &Clusterer{}
}

func (c *Clusterer) Cluster(verses []store.Verse) Outcome {
	if len(verses) == 0 {
		return Outcome{}
	}

	order := make([]string, 0)
	byTheme := make(map[string][]store.Verse)

	for _, v := range verses {
		theme := v.ClusterTheme
		if theme == "" {
			theme = DefaultTheme
		}
		if _, seen := byTheme[theme]; !seen {
			order = append(order, theme)
		}
		byTheme[theme] = append(byTheme[theme], v)
	}

	groups := make([]ThematicGroup, 0, len(order))
	for _, theme := range order {
		groupVerses := byTheme[theme]

		sort.SliceStable(groupVerses, func(a, b int) bool {
			return groupVerses[a].RelevanceScore > groupVerses[b].RelevanceScore
		})

		var sum float64
		for _, v := range groupVerses {
			sum += v.RelevanceScore
		}

		groups = append(groups, ThematicGroup{
			Theme:            theme,
			Verses:           groupVerses,
			AverageRelevance: sum / float64(len(groupVerses)),
		})
	}

	// Stable sort keeps first-seen order for equal averages.
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].AverageRelevance > groups[b].AverageRelevance
	})

	outcome := Outcome{Groups: groups, Primary: &groups[0]}
	if len(groups) > 1 {
		limit := len(groups)
		if limit > 3 {
			limit = 3
		}
		outcome.Supporting = groups[1:limit]
	}

	return outcome
}

// ThemeNames lists the supporting theme labels in rank order.
func (o *Outcome) ThemeNames() []string {
	names := make([]string, 0, len(o.Supporting))
	for _, g := range o.Supporting {
		names = append(names, g.Theme)
	}
	return names
}
