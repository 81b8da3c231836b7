package soil

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"kisansetu-be/pkg/advisory"
)

var codeFence = regexp.MustCompile("(?m)^\\s*```[a-zA-Z]*\\s*$")

// parseProfile reads model text into a Profile. Strict JSON is tried first, then the
// first balanced {...} object found after removing code fences.
func parseProfile(text string) (Profile, error) {
	obj, err := decodeObject(text)
	if err != nil {
		cleaned := codeFence.ReplaceAllString(text, "")
		candidate, ok := extractObject(cleaned)
		if !ok {
			return Profile{}, fmt.Errorf("no JSON object in model output: %w", advisory.ErrMalformedModelOutput)
		}
		obj, err = decodeObject(candidate)
		if err != nil {
			return Profile{}, fmt.Errorf("lenient parse: %v: %w", err, advisory.ErrMalformedModelOutput)
		}
	}
	return fromObject(obj), nil
}

func decodeObject(text string) (map[string]interface{}, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("not an object")
	}
	return obj, nil
}

// extractObject returns the first brace-balanced substring, ignoring braces inside
// string literals.
func extractObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// normalizeKey folds "soil_type", "Soil Type" and "soilType" onto the same key.
func normalizeKey(k string) string {
	k = strings.ToLower(k)
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(k)
}

func fromObject(obj map[string]interface{}) Profile {
	values := make(map[string]interface{}, len(obj))
	for key, raw := range obj {
		values[normalizeKey(key)] = raw
	}

	pick := func(isPercent bool, keys ...string) string {
		for _, k := range keys {
			if raw, ok := values[k]; ok {
				if s := stringify(raw, isPercent); s != "" {
					return s
				}
			}
		}
		return ""
	}

	return Profile{
		Country:     pick(false, "country"),
		Region:      pick(false, "region", "state"),
		SoilType:    pick(false, "soiltype", "soil"),
		PH:          pick(false, "ph", "phrange"),
		Clay:        pick(true, "clay", "claypercent"),
		Sand:        pick(true, "sand", "sandpercent"),
		Silt:        pick(true, "silt", "siltpercent"),
		Nitrogen:    pick(false, "nitrogen", "nitrogenlevel"),
		Climate:     pick(false, "climate"),
		Description: pick(false, "description", "summary"),
	}
}

func stringify(v interface{}, isPercent bool) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		s := strconv.FormatFloat(val, 'f', -1, 64)
		if isPercent {
			s += "%"
		}
		return s
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
