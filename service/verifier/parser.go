package verifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
	"github.com/viant/toolbox"

	"github.com/viant/curator/model"
	"github.com/viant/curator/model/types"
)

const (
	fenceCode = iota + 1
)

var fenceToken = parsly.NewToken(fenceCode, "Fence", matcher.NewFragment("```"))

// Parse converts a free-form service response into an Outcome. Formatting
// wrappers such as markdown fences and surrounding prose are stripped; any
// malformed output is reported as a types.ParseError.
func Parse(text string) (*model.Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return nil, types.NewParseError("empty response", text)
	}
	fields, err := decodeObject(unwrap(text))
	if err != nil {
		// a fence inside a JSON string can cut the block short
		if fields, err = decodeObject(text); err != nil {
			return nil, types.NewParseError(err.Error(), text)
		}
	}
	normalized := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		normalized[normalizeKey(k)] = v
	}
	return decodeOutcome(normalized, text)
}

func decodeObject(text string) (map[string]interface{}, error) {
	body, err := extractObject(text)
	if err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if err = json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return fields, nil
}

// unwrap returns the body of the first fenced block, or text itself.
func unwrap(text string) string {
	cursor := parsly.NewCursor("response", []byte(text), 0)
	start := -1
	for cursor.HasMore() {
		if cursor.MatchOne(fenceToken).Code != fenceCode {
			cursor.Pos++
			continue
		}
		if start != -1 {
			return text[start : cursor.Pos-3]
		}
		for cursor.HasMore() && cursor.Input[cursor.Pos] != '\n' { // info string, e.g. json
			cursor.Pos++
		}
		start = cursor.Pos
	}
	if start != -1 {
		return text[start:]
	}
	return text
}

// extractObject returns the text between the first '{' and the last '}'.
func extractObject(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return text[start : end+1], nil
}

func normalizeKey(key string) string {
	key = strings.ToLower(key)
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
}

func decodeOutcome(fields map[string]interface{}, raw string) (*model.Outcome, error) {
	ret := &model.Outcome{
		NeedsUpdate:      asBool(lookup(fields, "needsupdate", "updateneeded", "needsupdates")),
		Summary:          asString(lookup(fields, "summary", "reason", "explanation")),
		SuggestedContent: asString(lookup(fields, "suggestedcontent", "updatedcontent", "content", "revisedcontent")),
		Insights:         asStrings(lookup(fields, "insights", "additions", "supplementalinsights")),
		SourcesChecked:   asStrings(lookup(fields, "sourceschecked", "sources")),
	}
	updateType, ok := model.ParseUpdateType(asString(lookup(fields, "updatetype", "changetype")))
	switch {
	case !ret.NeedsUpdate:
		updateType = model.UpdateNone
	case !ok || updateType == model.UpdateNone:
		updateType = model.UpdateMinor
	}
	ret.UpdateType = updateType
	ret.Confidence = asConfidence(lookup(fields, "confidence", "certainty"))
	if ret.NeedsUpdate && strings.TrimSpace(ret.SuggestedContent) == "" {
		return nil, types.NewParseError("needsUpdate without suggested content", raw)
	}
	return ret, nil
}

func lookup(fields map[string]interface{}, keys ...string) interface{} {
	for _, key := range keys {
		if value, ok := fields[key]; ok && value != nil {
			return value
		}
	}
	return nil
}

func asBool(value interface{}) bool {
	if text, ok := value.(string); ok {
		switch strings.ToLower(strings.TrimSpace(text)) {
		case "yes", "y", "true", "1":
			return true
		case "no", "n", "false", "0", "":
			return false
		}
	}
	if value == nil {
		return false
	}
	return toolbox.AsBoolean(value)
}

func asString(value interface{}) string {
	if value == nil {
		return ""
	}
	if toolbox.IsSlice(value) {
		return strings.Join(asStrings(value), "\n")
	}
	return strings.TrimSpace(toolbox.AsString(value))
}

func asStrings(value interface{}) []string {
	if value == nil {
		return nil
	}
	if !toolbox.IsSlice(value) {
		if text := asString(value); text != "" {
			return []string{text}
		}
		return nil
	}
	var ret []string
	for _, item := range toolbox.AsSlice(value) {
		if text := asString(item); text != "" {
			ret = append(ret, text)
		}
	}
	return ret
}

func asConfidence(value interface{}) model.Confidence {
	if score, ok := value.(float64); ok {
		if score > 1 {
			score = score / 100
		}
		switch {
		case score >= 0.75:
			return model.ConfidenceHigh
		case score >= 0.4:
			return model.ConfidenceMedium
		}
		return model.ConfidenceLow
	}
	confidence, _ := model.ParseConfidence(asString(value))
	return confidence
}
