package dialogue

import (
	"strings"
)

// ThemeGeneral is assigned when a question matches no known theme keyword.
const ThemeGeneral = "general_spiritual"

// themeVocabulary maps each coarse theme to the keywords that signal it.
// The theme set is fixed; retrieval hints and clustering both key off it.
var themeVocabulary = map[string][]string{
	"dharma":        {"dharma", "duty", "righteousness", "obligation", "responsibility"},
	"karma":         {"karma", "action", "consequence", "deed", "cause and effect"},
	"moksha":        {"moksha", "liberation", "freedom", "enlightenment", "salvation"},
	"bhakti":        {"bhakti", "devotion", "worship", "surrender", "love of god"},
	"jnana":         {"jnana", "knowledge", "wisdom", "self-knowledge", "understanding"},
	"yoga":          {"yoga", "meditation", "discipline", "practice", "union"},
	"peace":         {"peace", "calm", "tranquility", "stillness", "serenity", "bliss"},
	"relationships": {"relationship", "family", "friend", "marriage", "parent", "attachment"},
	"work":          {"work", "career", "job", "profession", "livelihood", "success"},
	"mind":          {"mind", "thought", "anxiety", "worry", "fear", "anger", "desire"},
}

// themeOrder keeps extraction deterministic regardless of map iteration.
var themeOrder = []string{
	"dharma", "karma", "moksha", "bhakti", "jnana",
	"yoga", "peace", "relationships", "work", "mind",
}

// ExtractThemes returns every theme whose vocabulary appears in the text,
// in fixed order. Falls back to the general label when nothing matches.
func ExtractThemes(text string) []string {
	lowered := strings.ToLower(text)

	var themes []string
	for _, theme := range themeOrder {
		for _, keyword := range themeVocabulary[theme] {
			if strings.Contains(lowered, keyword) {
				themes = append(themes, theme)
				break
			}
		}
	}

	if len(themes) == 0 {
		return []string{ThemeGeneral}
	}
	return themes
}

// MatchTheme returns the first matching theme for the text, or "" when no
// vocabulary matches. Used to tag verses that arrive without a cluster label.
func MatchTheme(text string) string {
	lowered := strings.ToLower(text)
	for _, theme := range themeOrder {
		for _, keyword := range themeVocabulary[theme] {
			if strings.Contains(lowered, keyword) {
				return theme
			}
		}
	}
	return ""
}
