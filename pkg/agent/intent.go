package agent

import (
	"regexp"
	"strings"

	"ai-skincare-client/pkg/flow"
)

// TextIntent is the best-effort classification of a free-text message
// into a requested transition. Confidence is deliberately coarse; the
// transition validator remains the authority on legality.
type TextIntent struct {
	RequestedState flow.State
	TriggerID      string
	Matched        bool
}

// English detection uses a broad family of verb+subject patterns: the
// users who type commands in English phrase them imperatively.
var englishDiagnosisPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(analy[sz]e|check|examine|assess|diagnose)\b.*\bskin\b`),
	regexp.MustCompile(`(?i)\bskin\b.*\b(analysis|check|checkup|diagnosis|assessment)\b`),
	regexp.MustCompile(`(?i)\b(start|begin|do)\b.*\b(skin\s+)?(diagnosis|analysis)\b`),
	regexp.MustCompile(`(?i)\bwhat('s| is) (wrong with|up with) my (skin|face)\b`),
}

var englishRestartPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(start over|restart|begin again|from the top)\b`),
}

var englishCheckoutPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(check\s?out|buy (it|them|these|everything)|place (the |my )?order)\b`),
}

// Indonesian detection is stricter: short-form chat is too ambiguous for
// single-token matching, so diagnosis requires a skin subject token AND a
// diagnosis verb token in the same message.
var indonesianSkinSubjects = []string{"kulit", "wajah", "muka", "jerawat", "komedo"}
var indonesianDiagnosisVerbs = []string{"analisis", "analisa", "periksa", "cek", "diagnosa", "diagnosis"}

var indonesianRestartTokens = []string{"ulang dari awal", "mulai ulang", "mulai lagi"}
var indonesianCheckoutTokens = []string{"checkout", "beli sekarang", "bayar sekarang"}

// DetectTextIntent maps a free-text user message to a requested flow
// transition. It biases toward NOT matching: an ambiguous sentence
// returns Matched=false and the flow stays where it is.
func DetectTextIntent(text, language string) TextIntent {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return TextIntent{}
	}

	if language == "id" {
		return detectIndonesian(strings.ToLower(trimmed))
	}
	return detectEnglish(trimmed)
}

func detectEnglish(text string) TextIntent {
	for _, re := range englishRestartPatterns {
		if re.MatchString(text) {
			return TextIntent{RequestedState: flow.StateRestart, TriggerID: "chip_start_over", Matched: true}
		}
	}
	for _, re := range englishCheckoutPatterns {
		if re.MatchString(text) {
			return TextIntent{RequestedState: flow.StateCheckout, TriggerID: "chip_checkout", Matched: true}
		}
	}
	for _, re := range englishDiagnosisPatterns {
		if re.MatchString(text) {
			return TextIntent{RequestedState: flow.StateDiagnosis, TriggerID: "chip_start_diagnosis", Matched: true}
		}
	}
	return TextIntent{}
}

func detectIndonesian(text string) TextIntent {
	for _, tok := range indonesianRestartTokens {
		if strings.Contains(text, tok) {
			return TextIntent{RequestedState: flow.StateRestart, TriggerID: "chip_start_over", Matched: true}
		}
	}
	for _, tok := range indonesianCheckoutTokens {
		if strings.Contains(text, tok) {
			return TextIntent{RequestedState: flow.StateCheckout, TriggerID: "chip_checkout", Matched: true}
		}
	}

	hasSubject := containsAny(text, indonesianSkinSubjects)
	hasVerb := containsAny(text, indonesianDiagnosisVerbs)
	if hasSubject && hasVerb {
		return TextIntent{RequestedState: flow.StateDiagnosis, TriggerID: "chip_start_diagnosis", Matched: true}
	}
	return TextIntent{}
}

func containsAny(text string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}
