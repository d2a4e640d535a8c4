// Package normalizer coerces semi-structured report columns into typed
// values. Upstream writers are inconsistent about whether JSON columns are
// stored pre-parsed or as JSON text, so every consumer goes through these
// helpers. Malformed input is treated as absent, never as an error.
package normalizer

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/apex/log"

	"insights-dashboard/metrics"
	"insights-dashboard/models"
)

// decode unmarshals raw into dst. It accepts JSON text (string or []byte)
// as well as already-decoded generic values, which are re-marshaled first.
func decode(raw interface{}, dst interface{}, field string) bool {
	if raw == nil {
		return false
	}

	var data []byte
	switch v := raw.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		// Pre-parsed value (map[string]interface{}, []interface{}, ...).
		// Round-trip through JSON to reuse the same coercion path.
		b, err := json.Marshal(v)
		if err != nil {
			warnMalformed(field, err)
			return false
		}
		data = b
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return false
	}

	if err := json.Unmarshal([]byte(trimmed), dst); err != nil {
		warnMalformed(field, err)
		return false
	}
	return true
}

func warnMalformed(field string, err error) {
	log.Warnf("Malformed %s field, treating as absent: %v", field, err)
	metrics.MalformedFieldTotal.WithLabelValues(field).Inc()
}

// StringList decodes a JSON array of strings. Non-string elements are
// skipped rather than failing the whole list.
func StringList(raw interface{}, field string) ([]string, bool) {
	var generic []interface{}
	if !decode(raw, &generic, field) {
		return nil, false
	}

	out := make([]string, 0, len(generic))
	for _, item := range generic {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// IntMap decodes a JSON object of term -> count. Counts may arrive as JSON
// numbers or numeric strings; anything else counts as a single occurrence.
func IntMap(raw interface{}, field string) (map[string]int, bool) {
	var generic map[string]interface{}
	if !decode(raw, &generic, field) {
		return nil, false
	}

	out := make(map[string]int, len(generic))
	for term, value := range generic {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		out[term] = coerceCount(value)
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

func coerceCount(value interface{}) int {
	switch v := value.(type) {
	case float64:
		if v > 0 {
			return int(v)
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f > 0 {
			return int(f)
		}
	}
	return 1
}

// FAQList decodes a JSON array of question/answer objects. Bare strings are
// accepted as questions without answers.
func FAQList(raw interface{}, field string) ([]models.FAQ, bool) {
	var generic []interface{}
	if !decode(raw, &generic, field) {
		return nil, false
	}

	out := make([]models.FAQ, 0, len(generic))
	for _, item := range generic {
		switch v := item.(type) {
		case string:
			if q := strings.TrimSpace(v); q != "" {
				out = append(out, models.FAQ{Question: q})
			}
		case map[string]interface{}:
			faq := models.FAQ{
				Question: stringField(v, "question"),
				Answer:   stringField(v, "answer"),
			}
			if faq.Question != "" {
				out = append(out, faq)
			}
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

func stringField(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// Metadata decodes a chat log metadata blob
func Metadata(raw interface{}) (models.ChatLogMetadata, bool) {
	var meta models.ChatLogMetadata
	if !decode(raw, &meta, "metadata") {
		return models.ChatLogMetadata{}, false
	}
	return meta, true
}
