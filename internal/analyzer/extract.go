package analyzer

import (
	"encoding/json"
	"strings"

	apperrors "github.com/Skufu/symptomgate/pkg/errors"
)

// ExtractJSON returns the substring from the first '{' to the last '}' of
// raw. Code fences and chatter around the object are dropped.
func ExtractJSON(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return "", apperrors.New(apperrors.CodeModelProtocol, "no JSON object in model output")
	}
	return raw[start : end+1], nil
}

// ParseDocument extracts and decodes the JSON object in raw.
func ParseDocument(raw string) (map[string]interface{}, error) {
	body, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeModelProtocol, "model output is not valid JSON")
	}
	return doc, nil
}
