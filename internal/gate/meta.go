package gate

import "regexp"

// metaPatterns catch conversational input aimed at the assistant rather than
// a description of symptoms.
var metaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(can|could|would|will) you\b`),
	regexp.MustCompile(`(?i)\bplease (analy[sz]e|check|diagnose|help|tell)\b`),
	regexp.MustCompile(`(?i)\b(analy[sz]e|check) (this|these)\b`),
	regexp.MustCompile(`(?i)^\s*(hi|hello|hey|hiya|greetings|good (morning|afternoon|evening))\b`),
	regexp.MustCompile(`(?i)\b(who|what) are you\b`),
	regexp.MustCompile(`(?i)\bwhat can you do\b`),
	regexp.MustCompile(`(?i)^\s*(this is )?(just )?(a )?test(ing)?\s*[.!?]*\s*$`),
	regexp.MustCompile(`(?i)\bignore (all |the )?(previous|above) instructions\b`),
}

// IsMetaInput reports whether text matches any conversational pattern.
func IsMetaInput(text string) bool {
	for _, re := range metaPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
