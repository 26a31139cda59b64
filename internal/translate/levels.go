package translate

import (
	"fmt"

	"github.com/lexigrade/api/internal/model"
)

// levelGuidelines are the grammar/vocabulary constraints injected into
// the translation prompt for each CEFR tier.
var levelGuidelines = map[model.Level]string{
	model.LevelA1: "Use only the most common 500-1000 words. Present tense only where possible. " +
		"Short sentences of at most 8-10 words. No subordinate clauses, no idioms. " +
		"Repeat key vocabulary rather than using synonyms.",
	model.LevelA2: "Use the most common 1500-2000 words. Simple past and future are allowed. " +
		"Sentences of at most 12-15 words. At most one subordinate clause per sentence. " +
		"Avoid idioms and phrasal constructions with non-literal meaning.",
	model.LevelB1: "Use everyday vocabulary (about 3000 word families). All common tenses are allowed. " +
		"Moderate sentence length. Common connectors (because, although, however) are fine. " +
		"Explain or replace rare idioms.",
	model.LevelB2: "Natural vocabulary with occasional less-common words when central to the meaning. " +
		"Complex sentences are fine but keep them clear. Idioms are allowed when transparent.",
	model.LevelC1: "Near-native text. Keep nuance, register and rhetorical structure of the original. " +
		"Only simplify genuinely obscure or archaic phrasing.",
	model.LevelC2: "Full native-level text. Preserve style, tone and complexity faithfully.",
}

// languageNotes carry per-language constraints layered on top of the
// CEFR tier, for languages where learner materials conventionally
// restrict specific grammar.
var languageNotes = map[model.Language]map[model.Level]string{
	"es": {
		model.LevelA1: "Avoid the subjunctive entirely.",
		model.LevelA2: "Avoid the subjunctive except in fixed expressions.",
		model.LevelB1: "Present subjunctive is fine; avoid imperfect subjunctive.",
	},
	"fr": {
		model.LevelA1: "Avoid the subjonctif and the passé simple entirely.",
		model.LevelA2: "Avoid the passé simple; prefer passé composé.",
		model.LevelB1: "Avoid the passé simple outside fixed literary quotes.",
	},
	"de": {
		model.LevelA1: "Main clauses only; avoid Konjunktiv and genitive constructions.",
		model.LevelA2: "Avoid Konjunktiv I and extended participle constructions.",
	},
}

// Guidelines returns the prompt constraints for a target language and
// level. Unknown levels fall back to B1.
func Guidelines(lang model.Language, level model.Level) string {
	base, ok := levelGuidelines[level]
	if !ok {
		base = levelGuidelines[model.LevelB1]
	}
	if notes, ok := languageNotes[lang][level]; ok {
		return fmt.Sprintf("%s %s", base, notes)
	}
	return base
}
