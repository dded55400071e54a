package config

import "strings"

// MergePolicy decides how a key is combined when two configuration maps merge.
type MergePolicy int

const (
	// PolicyRecurse merges nested maps key by key. Applied to all plain objects.
	PolicyRecurse MergePolicy = iota
	// PolicyConcat appends the override slice after the base slice.
	PolicyConcat
	// PolicyReplace takes the override value verbatim. Applied to all slices
	// and scalars without an explicit entry below.
	PolicyReplace
)

// policyTable is the explicit per-key policy set. Keys are dotted paths from
// the configuration root. Anything absent falls back to PolicyRecurse for maps
// and PolicyReplace otherwise, so unknown keys never merge surprisingly.
var policyTable = map[string]MergePolicy{
	"resolve.alias": PolicyConcat,
}

// Merge combines two configuration maps according to the policy table. Neither
// input is mutated. Override scalars win; nested maps recurse; the alias list
// concatenates base-first so earlier aliases keep precedence.
func Merge(base, override map[string]interface{}) map[string]interface{} {
	return mergeAt("", base, override)
}

func mergeAt(path string, base, override map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(base)+len(override))
	for k, v := range base {
		result[k] = v
	}

	for k, overrideVal := range override {
		keyPath := joinPath(path, k)
		baseVal, exists := result[k]
		if !exists {
			result[k] = overrideVal
			continue
		}
		result[k] = mergeValue(keyPath, baseVal, overrideVal)
	}

	return result
}

func mergeValue(path string, base, override interface{}) interface{} {
	switch policyFor(path, base, override) {
	case PolicyRecurse:
		baseMap := base.(map[string]interface{})
		overrideMap := override.(map[string]interface{})
		return mergeAt(path, baseMap, overrideMap)
	case PolicyConcat:
		baseSlice, baseOK := base.([]interface{})
		overrideSlice, overrideOK := override.([]interface{})
		if !baseOK || !overrideOK {
			return override
		}
		combined := make([]interface{}, 0, len(baseSlice)+len(overrideSlice))
		combined = append(combined, baseSlice...)
		combined = append(combined, overrideSlice...)
		return combined
	default:
		return override
	}
}

func policyFor(path string, base, override interface{}) MergePolicy {
	if policy, ok := policyTable[path]; ok {
		return policy
	}
	_, baseIsMap := base.(map[string]interface{})
	_, overrideIsMap := override.(map[string]interface{})
	if baseIsMap && overrideIsMap {
		return PolicyRecurse
	}
	return PolicyReplace
}

func joinPath(parent, key string) string {
	if parent == "" {
		return strings.ToLower(key)
	}
	return parent + "." + strings.ToLower(key)
}
