package analyzer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

var languages = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"pt": "Portuguese",
	"hi": "Hindi",
}

// LanguageName maps a locale such as "es" or "es-MX" to a language name for
// the prompt. Unknown locales fall back to English.
func LanguageName(locale string) string {
	base := strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(base, "-_"); i >= 0 {
		base = base[:i]
	}
	if name, ok := languages[base]; ok {
		return name
	}
	return languages["en"]
}

var editableFields = []string{
	"config.symptomScores",
	"config.urgencyThresholds.high",
	"config.urgencyThresholds.moderate",
	"urgency.<level>.description",
	"urgency.<level>.advice",
	"conditions.<level>[].name",
	"conditions.<level>[].tag",
	"conditions.<level>[].description",
}

var lockedFields = []string{
	"config.minCharCount",
	"urgency.<level>.color",
	"urgency.<level>.label",
}

const strictReminder = `IMPORTANT: your previous reply could not be parsed. Reply with the JSON object only. ` +
	`Start with { and end with }. No code fences, no commentary, no trailing text.`

var schemaTemplate = func() string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(skeleton()); err != nil {
		panic(err)
	}
	return strings.TrimSpace(buf.String())
}()

// BuildPrompt renders the instruction for one analysis.
func BuildPrompt(text, locale string) string {
	var b strings.Builder
	b.WriteString("You are a health information assistant. You do not diagnose. ")
	b.WriteString("Read the symptom description and fill in the JSON template below.\n\n")

	b.WriteString("Rules:\n")
	b.WriteString("- Reply with exactly one JSON object that follows the template. No markdown.\n")
	fmt.Fprintf(&b, "- Write every description, advice, name and tag in %s.\n", LanguageName(locale))
	b.WriteString("- List at least 3 conditions for each of high, moderate and low.\n")
	b.WriteString("- symptomScores maps each symptom phrase you recognise to an integer from 1 to 10.\n")
	b.WriteString("- Strings shaped like __PII_<id>__ stand for redacted personal data. Never repeat them or ask for personal data.\n")
	fmt.Fprintf(&b, "- You may change: %s.\n", strings.Join(editableFields, ", "))
	fmt.Fprintf(&b, "- Never change: %s. Keep them exactly as in the template.\n\n", strings.Join(lockedFields, ", "))

	b.WriteString("Template:\n")
	b.WriteString(schemaTemplate)
	b.WriteString("\n\nSymptom description:\n\"\"\"\n")
	b.WriteString(text)
	b.WriteString("\n\"\"\"\n")
	return b.String()
}

// StrictTransform is the RetryPolicy transform for analysis prompts: the
// first attempt uses the base prompt, later attempts add the reminder.
func StrictTransform(attempt int, prompt string) string {
	if attempt <= 1 {
		return prompt
	}
	return prompt + "\n" + strictReminder + "\n"
}
