package analyzer

import (
	"math"
	"strconv"
	"strings"
)

// MinCharCount is the locked config.minCharCount value.
const MinCharCount = 30

// Level is an urgency level.
type Level string

const (
	LevelHigh     Level = "high"
	LevelModerate Level = "moderate"
	LevelLow      Level = "low"
)

// Levels lists the urgency levels from most to least urgent.
var Levels = []Level{LevelHigh, LevelModerate, LevelLow}

// Badge is the locked presentation of one urgency level.
type Badge struct {
	Color string
	Label string
}

// Badges holds the policy values for color and label. The model never
// decides these.
var Badges = map[Level]Badge{
	LevelHigh:     {Color: "red", Label: "High Urgency"},
	LevelModerate: {Color: "yellow", Label: "Moderate Urgency"},
	LevelLow:      {Color: "green", Label: "Low Urgency"},
}

// AnalysisResult is the response contract returned to callers.
type AnalysisResult struct {
	Config     ResultConfig `json:"config" yaml:"config"`
	Urgency    Urgency      `json:"urgency" yaml:"urgency"`
	Conditions Conditions   `json:"conditions" yaml:"conditions"`
}

type ResultConfig struct {
	MinCharCount      int               `json:"minCharCount" yaml:"minCharCount"`
	SymptomScores     map[string]int    `json:"symptomScores" yaml:"symptomScores"`
	UrgencyThresholds UrgencyThresholds `json:"urgencyThresholds" yaml:"urgencyThresholds"`
}

type UrgencyThresholds struct {
	High     float64 `json:"high" yaml:"high"`
	Moderate float64 `json:"moderate" yaml:"moderate"`
}

type Urgency struct {
	High     UrgencyLevel `json:"high" yaml:"high"`
	Moderate UrgencyLevel `json:"moderate" yaml:"moderate"`
	Low      UrgencyLevel `json:"low" yaml:"low"`
}

type UrgencyLevel struct {
	Color       string `json:"color" yaml:"color"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description" yaml:"description"`
	Advice      string `json:"advice" yaml:"advice"`
}

type Conditions struct {
	High     []Condition `json:"high" yaml:"high"`
	Moderate []Condition `json:"moderate" yaml:"moderate"`
	Low      []Condition `json:"low" yaml:"low"`
}

type Condition struct {
	Name        string `json:"name" yaml:"name"`
	Tag         string `json:"tag" yaml:"tag"`
	Description string `json:"description" yaml:"description"`
}

// Level returns the urgency entry for l.
func (u *Urgency) Level(l Level) *UrgencyLevel {
	switch l {
	case LevelHigh:
		return &u.High
	case LevelModerate:
		return &u.Moderate
	default:
		return &u.Low
	}
}

// Decode converts a validated, enforced document into the typed result.
// Only Validate may reject a document; Decode is lenient about the editable
// content. Scalars in text fields become strings, arrays of scalars are
// joined with spaces, condition entries that are not objects are skipped and
// scores are rounded to whole numbers.
func Decode(doc map[string]interface{}) *AnalysisResult {
	config := asObject(doc["config"])
	thresholds := asObject(config["urgencyThresholds"])
	urgency := asObject(doc["urgency"])
	conditions := asObject(doc["conditions"])

	res := &AnalysisResult{
		Config: ResultConfig{
			MinCharCount:  MinCharCount,
			SymptomScores: scores(config["symptomScores"]),
			UrgencyThresholds: UrgencyThresholds{
				High:     number(thresholds["high"]),
				Moderate: number(thresholds["moderate"]),
			},
		},
	}
	for _, l := range Levels {
		src := asObject(urgency[string(l)])
		b := Badges[l]
		*res.Urgency.Level(l) = UrgencyLevel{
			Color:       b.Color,
			Label:       b.Label,
			Description: text(src["description"]),
			Advice:      text(src["advice"]),
		}
		*res.Conditions.Level(l) = conditionList(conditions[string(l)])
	}
	return res
}

// Level returns the condition list for l.
func (c *Conditions) Level(l Level) *[]Condition {
	switch l {
	case LevelHigh:
		return &c.High
	case LevelModerate:
		return &c.Moderate
	default:
		return &c.Low
	}
}

func asObject(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func text(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if _, nested := e.([]interface{}); nested {
				continue
			}
			if s := text(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

func number(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f
	default:
		return 0
	}
}

func scores(v interface{}) map[string]int {
	out := make(map[string]int)
	for k, raw := range asObject(v) {
		switch t := raw.(type) {
		case float64:
			out[k] = int(math.Round(t))
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				out[k] = int(math.Round(f))
			}
		}
	}
	return out
}

func conditionList(v interface{}) []Condition {
	items, _ := v.([]interface{})
	out := make([]Condition, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, Condition{
			Name:        text(m["name"]),
			Tag:         text(m["tag"]),
			Description: text(m["description"]),
		})
	}
	return out
}

// skeleton is the template shown to the model: locked values filled in,
// editable values left blank.
func skeleton() AnalysisResult {
	res := AnalysisResult{
		Config: ResultConfig{
			MinCharCount:  MinCharCount,
			SymptomScores: map[string]int{"<symptom phrase>": 0},
		},
		Conditions: Conditions{
			High:     []Condition{{}},
			Moderate: []Condition{{}},
			Low:      []Condition{{}},
		},
	}
	for _, l := range Levels {
		b := Badges[l]
		lvl := res.Urgency.Level(l)
		lvl.Color, lvl.Label = b.Color, b.Label
	}
	return res
}
