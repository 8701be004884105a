// Package prompt renders the system and user prompts for a chat request and
// owns refusal-text selection.
package prompt

import (
	"regexp"
	"strconv"
	"strings"
)

// tokenPattern matches {{key}} and dotted-path {{a.b.c}} tokens.
var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+(?:\.[A-Za-z0-9_]+)*)\s*\}\}`)

// ArraySeparator joins array values resolved by template substitution.
const ArraySeparator = ". "

// Render substitutes {{key}} and {{a.b.c}} tokens in tpl with values from
// vars. Dotted paths descend into nested maps. Arrays are joined with
// ArraySeparator. Any unresolved token (missing key, absent path segment, or
// non-traversable type) renders as the empty string.
func Render(tpl string, vars map[string]any) string {
	return tokenPattern.ReplaceAllStringFunc(tpl, func(match string) string {
		path := tokenPattern.FindStringSubmatch(match)[1]
		return resolvePath(vars, strings.Split(path, "."))
	})
}

func resolvePath(vars map[string]any, path []string) string {
	var cur any = vars
	for _, segment := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur, ok = m[segment]
		if !ok {
			return ""
		}
	}
	return stringify(cur)
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, ArraySeparator)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ArraySeparator)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	default:
		return ""
	}
}
