package usecase

import "regexp"

// The allergen lexicon: surface forms and claim patterns the heuristic
// classifier matches against. Pure data, kept apart from control flow so
// new terms can be added without touching the classifier.

// milkTerms are lowercase milk-protein indicators in Slovak, Czech and
// English surface forms, matched as substrings of ingredient free text.
var milkTerms = []string{
	"mlieko", "mliecna bielkovina", "mliečna bielkovina",
	"srvátka", "whey", "casein", "kazein", "kazeín",
	"maslo", "smotana", "syr", "tvaroh", "mliečny",
}

// glutenTerms are lowercase gluten-source indicators (gluten itself plus
// the gluten-bearing grains), matched as substrings of ingredient text.
var glutenTerms = []string{
	"lepok", "pšenica", "psenica", "wheat",
	"jačmeň", "jacmen", "barley",
	"raž", "raz", "rye",
	"špalda", "spelta", "spelt", "ovos",
}

// Tag matchers anchor on tag-segment boundaries: "en:milk" and "milk"
// match, "buttermilk" or "milkfat" inside a longer tag do not.
var (
	milkTagRegex   = regexp.MustCompile(`(?i)(^|:)milk$`)
	glutenTagRegex = regexp.MustCompile(`(?i)(^|:)gluten$`)
)

// glutenFreeLabelRegex matches gluten-free label tags, tolerating the
// language prefix the database adds ("en:gluten-free").
var glutenFreeLabelRegex = regexp.MustCompile(`(?i)(^|:)gluten[- ]?free$`)

// freeFromClaimRegex matches free-text "gluten-free" claims in the
// supported languages.
var freeFromClaimRegex = regexp.MustCompile(`(?i)gluten[- ]?free|bez[\s-]?lepku|bezlepkov`)

// mayContainGlutenRegex matches the database's own ingredient-analysis
// tag flagging possible gluten content.
var mayContainGlutenRegex = regexp.MustCompile(`(?i)may-contain-gluten`)

// Traces matchers run against the "may contain" declarations.
var (
	tracesMilkRegex   = regexp.MustCompile(`milk`)
	tracesGlutenRegex = regexp.MustCompile(`gluten|wheat|barley|rye`)
)

// ingredientLangPriority is the fallback chain for ingredient-text
// variants after the requested language. The empty key is the untagged
// default variant.
var ingredientLangPriority = []string{"sk", "cs", "", "en"}

// Note keys used by the classifier and the orchestrator.
const (
	noteMilk                = "milk"
	noteGluten              = "gluten"
	noteGlutenFree          = "gluten_free"
	noteInconclusive        = "inconclusive"
	noteTracesMilk          = "traces_milk"
	noteTracesGluten        = "traces_gluten"
	noteAdvisoryAdded       = "advisory_added"
	noteAdvisoryUnavailable = "advisory_unavailable"
)

// noteTexts holds the localized justification notes. Slovak is the
// primary display language of the app; English is used when the caller
// asks for it.
var noteTexts = map[string]map[string]string{
	"sk": {
		noteMilk:                "Obsahuje mliečnu bielkovinu (napr. srvátka/kazeín).",
		noteGluten:              "Obsahuje lepok alebo obilniny s lepkovými bielkovinami.",
		noteGlutenFree:          "Deklarované ako bezlepkové (štítok/produkt) a bez mlieka.",
		noteInconclusive:        "Nenašli sa rizikové alergény, ale deklarácia nie je jasná. Skontroluj etiketu.",
		noteTracesMilk:          "Upozornenie: môže obsahovať stopy mlieka.",
		noteTracesGluten:        "Upozornenie: môže obsahovať stopy lepku.",
		noteAdvisoryAdded:       "Doplnené AI hodnotením.",
		noteAdvisoryUnavailable: "AI hodnotenie nebolo dostupné, platí lokálny odhad.",
	},
	"en": {
		noteMilk:                "Contains milk protein (e.g. whey/casein).",
		noteGluten:              "Contains gluten or gluten-bearing grains.",
		noteGlutenFree:          "Declared gluten-free (label/product) and no milk found.",
		noteInconclusive:        "No risky allergens found, but the declaration is unclear. Check the label.",
		noteTracesMilk:          "Warning: may contain traces of milk.",
		noteTracesGluten:        "Warning: may contain traces of gluten.",
		noteAdvisoryAdded:       "Supplemented by AI evaluation.",
		noteAdvisoryUnavailable: "AI evaluation was unavailable, keeping the local estimate.",
	},
}

// noteText returns the localized note for key, falling back to Slovak
// for unknown languages.
func noteText(lang, key string) string {
	if m, ok := noteTexts[lang]; ok {
		if t, ok := m[key]; ok {
			return t
		}
	}
	return noteTexts["sk"][key]
}
