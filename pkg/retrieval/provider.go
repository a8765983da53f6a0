package retrieval

import (
	"context"
)

// ResultKind tags the shape of a retrieval result set.
type ResultKind string

const (
	// KindRanked is a flat list ordered by descending relevance. Items may
	// or may not carry an explicit score.
	KindRanked ResultKind = "RANKED"

	// KindClustered groups items under backend-assigned theme labels.
	KindClustered ResultKind = "CLUSTERED"
)

// Item is one retrieved passage as the backend returns it.
type Item struct {
	ID             string   `json:"id"`
	Source         string   `json:"source"` // reference label, e.g. "Bhagavad Gita 2.47"
	Text           string   `json:"text"`
	Translation    string   `json:"translation,omitempty"`
	Interpretation string   `json:"interpretation,omitempty"`
	Score          *float64 `json:"score,omitempty"` // absent is not an error
}

// Cluster is a backend-labelled group of items.
type Cluster struct {
	Theme string `json:"theme"`
	Items []Item `json:"items"`
}

// Result is the tagged union of the two shapes the backend can return.
// Exactly one of Ranked/Clusters is populated, per Kind.
type Result struct {
	Kind     ResultKind `json:"kind"`
	Ranked   []Item     `json:"ranked,omitempty"`
	Clusters []Cluster  `json:"clusters,omitempty"`
}

// Empty reports whether the result carries no items at all.
func (r *Result) Empty() bool {
	if r == nil {
		return true
	}
	switch r.Kind {
	case KindClustered:
		for _, c := range r.Clusters {
			if len(c.Items) > 0 {
				return false
			}
		}
		return true
	default:
		return len(r.Ranked) == 0
	}
}

// Provider defines the contract for the external retrieval backend.
type Provider interface {
	// Search returns ranked or pre-clustered passages for a query.
	// ThemeHints may shape the backend-side ranking; implementations must
	// honor ctx deadlines and never block indefinitely.
	Search(ctx context.Context, query string, themeHints []string) (*Result, error)
}
