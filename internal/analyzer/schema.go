package analyzer

import (
	apperrors "github.com/Skufu/symptomgate/pkg/errors"
)

// Validate checks the shape of a parsed model document. It does not judge
// content. The first violation found is returned as a SCHEMA_VIOLATION.
func Validate(doc map[string]interface{}) error {
	config, err := object(doc, "config")
	if err != nil {
		return err
	}
	urgency, err := object(doc, "urgency")
	if err != nil {
		return err
	}
	conditions, err := object(doc, "conditions")
	if err != nil {
		return err
	}

	n, ok := config["minCharCount"].(float64)
	if !ok || n != MinCharCount {
		return apperrors.Newf(apperrors.CodeSchemaViolation, "config.minCharCount must be %d", MinCharCount)
	}
	if _, err := object(config, "symptomScores", "config"); err != nil {
		return err
	}
	thresholds, err := object(config, "urgencyThresholds", "config")
	if err != nil {
		return err
	}
	for _, k := range []string{"high", "moderate"} {
		if _, ok := thresholds[k].(float64); !ok {
			return apperrors.Newf(apperrors.CodeSchemaViolation, "config.urgencyThresholds.%s must be a number", k)
		}
	}

	for _, l := range Levels {
		if _, err := object(urgency, string(l), "urgency"); err != nil {
			return err
		}
		if _, ok := conditions[string(l)].([]interface{}); !ok {
			return apperrors.Newf(apperrors.CodeSchemaViolation, "conditions.%s must be an array", l)
		}
	}
	return nil
}

// Enforce overwrites the policy fields with their locked values, whatever
// the model produced. doc must have passed Validate.
func Enforce(doc map[string]interface{}) {
	if config, ok := doc["config"].(map[string]interface{}); ok {
		config["minCharCount"] = MinCharCount
	}
	urgency, ok := doc["urgency"].(map[string]interface{})
	if !ok {
		return
	}
	for _, l := range Levels {
		lvl, ok := urgency[string(l)].(map[string]interface{})
		if !ok {
			continue
		}
		b := Badges[l]
		lvl["color"] = b.Color
		lvl["label"] = b.Label
	}
}

func object(parent map[string]interface{}, key string, path ...string) (map[string]interface{}, error) {
	name := key
	if len(path) > 0 {
		name = path[0] + "." + key
	}
	v, present := parent[key]
	if !present {
		return nil, apperrors.Newf(apperrors.CodeSchemaViolation, "%s is missing", name)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, apperrors.Newf(apperrors.CodeSchemaViolation, "%s must be an object", name)
	}
	return m, nil
}
