package digest

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/dota-coach/internal/platform/logging"
)

// CoerceNumber accepts any decoded JSON value and returns a finite
// float64 when the value is a number or a fully numeric string.
// Objects, arrays, booleans, nil, and non-numeric strings report false.
// It never panics.
func CoerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return CoerceNumber(float64(v))
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		return CoerceNumber(string(v))
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// CoerceDocument accepts any decoded JSON value and returns it only
// when it is a non-array associative structure. The result is rebuilt
// through a serialize/deserialize round trip so it can never carry
// non-JSON content.
func CoerceDocument(value any) (map[string]any, bool) {
	doc, ok := value.(map[string]any)
	if !ok {
		return nil, false
	}

	encoded, err := sonic.Marshal(doc)
	if err != nil {
		return nil, false
	}
	var out map[string]any
	if err := sonic.Unmarshal(encoded, &out); err != nil {
		return nil, false
	}
	return out, true
}

// Coercer applies CoerceNumber/CoerceDocument per field and logs a
// drift warning whenever a present value has to be discarded. Missing
// values (nil) are normal and stay silent.
type Coercer struct {
	log *logging.Logger
}

func NewCoercer(log *logging.Logger) *Coercer {
	if log == nil {
		log = logging.Default()
	}
	return &Coercer{log: log}
}

func (c *Coercer) Number(field string, value any) *float64 {
	if value == nil {
		return nil
	}
	parsed, ok := CoerceNumber(value)
	if !ok {
		c.warnDrift("numeric", field, value)
		return nil
	}
	return &parsed
}

func (c *Coercer) Document(field string, value any) map[string]any {
	if value == nil {
		return nil
	}
	doc, ok := CoerceDocument(value)
	if !ok {
		c.warnDrift("document", field, value)
		return nil
	}
	return doc
}

func (c *Coercer) warnDrift(kind, field string, value any) {
	c.log.Warn("discarded drifted provider value",
		"kind", kind,
		"field", field,
		"type", fmt.Sprintf("%T", value),
		"preview", previewValue(value),
	)
}

const previewKeyLimit = 5

func previewValue(value any) string {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		if len(keys) > previewKeyLimit {
			keys = keys[:previewKeyLimit]
		}
		return "keys=" + strings.Join(keys, ",")
	case []any:
		return fmt.Sprintf("array len=%d", len(v))
	default:
		text := fmt.Sprintf("%v", v)
		if len(text) > 64 {
			text = text[:64] + "..."
		}
		return text
	}
}
