package normalizer

import (
	"fmt"
	"log"
	"strings"

	"ai-guidance-be/pkg/dialogue"
	"ai-guidance-be/pkg/retrieval"
	"ai-guidance-be/pkg/store"
)

// Normalizer converts heterogeneous retrieval results into uniform verse
// records with a derived relevance score. Pure transform, no I/O.
type Normalizer struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize flattens a retrieval result into verses. A result that yields
// zero usable verses is a valid degenerate case, not an error; callers must
// handle the empty slice.
func (n *Normalizer) Normalize(result *retrieval.Result) []store.Verse {
	if result == nil {
		return nil
	}

	switch result.Kind {
	case retrieval.KindClustered:
		return n.normalizeClustered(result.Clusters)
	default:
		return n.normalizeRanked(result.Ranked)
	}
}

// normalizeRanked preserves the backend's ranking semantics even when no
// numeric score was supplied: the item at index i of a list of length total
// gets relevance (total-i)/total.
func (n *Normalizer) normalizeRanked(items []retrieval.Item) []store.Verse {
	total := len(items)
	verses := make([]store.Verse, 0, total)

	for i, item := range items {
		verse, ok := n.toVerse(item, "")
		if !ok {
			continue
		}

		if item.Score != nil {
			verse.RelevanceScore = clamp(*item.Score)
		} else {
			verse.RelevanceScore = float64(total-i) / float64(total)
		}

		verses = append(verses, verse)
	}

	return verses
}

func (n *Normalizer) normalizeClustered(clusters []retrieval.Cluster) []store.Verse {
	var verses []store.Verse

	for _, cluster := range clusters {
		for _, item := range cluster.Items {
			verse, ok := n.toVerse(item, cluster.Theme)
			if !ok {
				continue
			}
			if item.Score != nil {
				verse.RelevanceScore = clamp(*item.Score)
			} else {
				verse.RelevanceScore = 0.5
			}
			verses = append(verses, verse)
		}
	}

	return verses
}

// toVerse maps one retrieval item. Items lacking any extractable source
// text are excluded, not treated as errors.
func (n *Normalizer) toVerse(item retrieval.Item, clusterTheme string) (store.Verse, bool) {
	text := strings.TrimSpace(item.Text)
	if text == "" {
		if n.logger != nil {
			n.logger.Printf("[NORMALIZE] Dropping verse without source text (id=%s)", item.ID)
		}
		return store.Verse{}, false
	}

	theme := clusterTheme
	if theme == "" {
		// Verses arriving without a backend cluster label are tagged from
		// the fixed theme vocabulary so downstream clustering stays useful.
		theme = dialogue.MatchTheme(text + " " + item.Translation)
	}

	id := item.ID
	if id == "" {
		id = fmt.Sprintf("verse-%s", shortHash(text))
	}

	return store.Verse{
		ID:             id,
		SanskritText:   text,
		Translation:    strings.TrimSpace(item.Translation),
		Interpretation: strings.TrimSpace(item.Interpretation),
		Reference:      strings.TrimSpace(item.Source),
		ClusterTheme:   theme,
	}, true
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// shortHash gives a stable fallback id for backends that omit ids.
func shortHash(text string) string {
	var h uint32 = 2166136261
	for i := 0; i < len(text); i++ {
		h ^= uint32(text[i])
		h *= 16777619
	}
	return fmt.Sprintf("%08x", h)
}
