package triage

import (
	"strings"

	"github.com/Skufu/symptomgate/internal/gate"
)

const defaultLocale = "en"

var guidance = map[string]map[gate.Verdict]string{
	"en": {
		gate.VerdictTooShort:           "Please describe your symptoms in a little more detail, using at least a full sentence.",
		gate.VerdictLowClarity:         "We could not read your description clearly. Please use plain words to describe how you feel.",
		gate.VerdictNoMedicalSignal:    "Your description does not mention any symptoms yet. Tell us what you are feeling, for example pain, fever or nausea.",
		gate.VerdictNoSymptomStructure: "Please add where the symptom is, how strong it is, or how long you have had it.",
		gate.VerdictLowDensity:         "Please focus on your symptoms: what you feel, where, and for how long.",
		gate.VerdictMetaInput:          "Please describe your own symptoms rather than asking a question.",
	},
	"es": {
		gate.VerdictTooShort:           "Describe tus síntomas con un poco más de detalle, al menos con una frase completa.",
		gate.VerdictLowClarity:         "No pudimos entender tu descripción. Usa palabras sencillas para explicar cómo te sientes.",
		gate.VerdictNoMedicalSignal:    "Tu descripción aún no menciona ningún síntoma. Cuéntanos qué sientes, por ejemplo dolor, fiebre o náuseas.",
		gate.VerdictNoSymptomStructure: "Añade dónde está el síntoma, qué tan fuerte es o desde cuándo lo tienes.",
		gate.VerdictLowDensity:         "Céntrate en tus síntomas: qué sientes, dónde y desde cuándo.",
		gate.VerdictMetaInput:          "Describe tus propios síntomas en lugar de hacer una pregunta.",
	},
}

// Message returns the guidance for a rejected verdict in locale, falling
// back to English. It returns "" for VerdictOK.
func Message(v gate.Verdict, locale string) string {
	if v.OK() {
		return ""
	}
	if msgs, ok := guidance[baseLanguage(locale)]; ok {
		if m, ok := msgs[v]; ok {
			return m
		}
	}
	return guidance[defaultLocale][v]
}

// baseLanguage reduces "es-MX" or "ES_mx" to "es".
func baseLanguage(locale string) string {
	l := strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(l, "-_"); i >= 0 {
		l = l[:i]
	}
	if l == "" {
		return defaultLocale
	}
	return l
}
