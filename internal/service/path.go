package service

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/agentmesh/orchestrator/internal/domain"
)

var pathPlaceholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

// ExpandPathTemplate substitutes {field} placeholders in a service path
// template with top-level payload values. Every placeholder must resolve or
// the whole expansion fails; a partially substituted path is never produced.
func ExpandPathTemplate(template string, payload map[string]interface{}) (string, *domain.Error) {
	if template == "" {
		return "", nil
	}

	var missing []string
	expanded := pathPlaceholderRe.ReplaceAllStringFunc(template, func(m string) string {
		key := m[1 : len(m)-1]
		v, ok := payload[key]
		if !ok {
			missing = append(missing, key)
			return m
		}
		return url.PathEscape(fieldString(v))
	})

	if len(missing) > 0 {
		return "", domain.NewErrorf(domain.ErrCodeBadRequest,
			"payload is missing fields required by the service path: %s", strings.Join(missing, ", "))
	}
	return expanded, nil
}

// fieldString renders a payload value for use in a path segment.
func fieldString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return "null"
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}
