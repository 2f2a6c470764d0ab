package query

// Filler phrases removed during query optimization, per language.
// Matched as whole words so fillers embedded in real terms survive:
// "like" is stripped standalone but "likely" and "unlike" stay intact.
var fillerWords = map[string][]string{
	"en": {
		"um", "uh", "umm", "uhh", "hmm",
		"please", "kindly",
		"can you", "could you", "would you", "will you",
		"tell me", "explain to me", "i want to know", "i would like to know",
		"basically", "actually", "like",
	},
	"hi": {
		"कृपया", "जरा", "मुझे बताओ", "मुझे बताइए", "बताओ", "बताइए",
		"क्या आप", "अच्छा",
	},
}

// Stop words excluded from key term extraction.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "from": {}, "about": {}, "into": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"what": {}, "which": {}, "who": {}, "whom": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "does": {}, "do": {}, "did": {},
	"how": {}, "why": {}, "when": {}, "where": {},
	"can": {}, "could": {}, "will": {}, "would": {}, "should": {},
	"have": {}, "has": {}, "had": {}, "not": {}, "between": {},
}

// Science acronyms expanded in optimized queries so both the short and
// long forms reach the retrievers.
var acronymExpansions = map[string]string{
	"DNA":  "deoxyribonucleic acid",
	"RNA":  "ribonucleic acid",
	"ATP":  "adenosine triphosphate",
	"ADP":  "adenosine diphosphate",
	"PH":   "potential of hydrogen",
	"LED":  "light emitting diode",
	"LPG":  "liquefied petroleum gas",
	"CNG":  "compressed natural gas",
	"AIDS": "acquired immunodeficiency syndrome",
	"HIV":  "human immunodeficiency virus",
	"CPU":  "central processing unit",
	"UV":   "ultraviolet",
}
