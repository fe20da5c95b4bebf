package physical

import (
	"strings"

	"github.com/cube2222/hep/graph"
)

// Conjuncts returns the condition of a filter or join as its list of conjuncts.
func Conjuncts(v *graph.Vertex) []string {
	value, ok := v.Attribute(AttrCondition)
	if !ok {
		return nil
	}
	return stringList(value)
}

// Fields returns the fields of a projection.
func Fields(v *graph.Vertex) []string {
	value, ok := v.Attribute(AttrFields)
	if !ok {
		return nil
	}
	return stringList(value)
}

// IsTrivialCondition reports whether the conjuncts can't filter out any row.
func IsTrivialCondition(conjuncts []string) bool {
	for _, conjunct := range conjuncts {
		if !strings.EqualFold(strings.TrimSpace(conjunct), "true") {
			return false
		}
	}
	return true
}

// IsIdentityProjection reports whether the fields select the whole input unchanged.
func IsIdentityProjection(fields []string) bool {
	return len(fields) == 1 && fields[0] == "*"
}

// MergeConjuncts returns the conjunction of both lists, dropping duplicates and trivially true conjuncts.
func MergeConjuncts(outer, inner []string) []string {
	out := make([]string, 0, len(outer)+len(inner))
	seen := make(map[string]bool, len(outer)+len(inner))
	for _, conjunct := range append(append([]string{}, inner...), outer...) {
		if IsTrivialCondition([]string{conjunct}) || seen[conjunct] {
			continue
		}
		seen[conjunct] = true
		out = append(out, conjunct)
	}
	return out
}

// ComposeProjections returns the fields of outer applied over inner, or false if outer selects
// a field inner doesn't provide.
func ComposeProjections(outer, inner []string) ([]string, bool) {
	if IsIdentityProjection(outer) {
		return inner, true
	}
	if IsIdentityProjection(inner) {
		return outer, true
	}
	provided := make(map[string]bool, len(inner))
	for _, field := range inner {
		provided[field] = true
	}
	for _, field := range outer {
		if !provided[field] {
			return nil, false
		}
	}
	return outer, true
}

func stringList(value interface{}) []string {
	switch value := value.(type) {
	case []string:
		return value
	case []interface{}:
		out := make([]string, 0, len(value))
		for _, item := range value {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case string:
		if value == "" {
			return nil
		}
		return []string{value}
	default:
		return nil
	}
}
