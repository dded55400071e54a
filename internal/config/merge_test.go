package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeNestedMapsRecurse(t *testing.T) {
	base := map[string]interface{}{
		"server": map[string]interface{}{
			"port": 5000,
			"host": "localhost",
		},
	}
	override := map[string]interface{}{
		"server": map[string]interface{}{
			"port": 8080,
		},
	}

	merged := Merge(base, override)

	server := merged["server"].(map[string]interface{})
	assert.Equal(t, 8080, server["port"], "override scalar wins")
	assert.Equal(t, "localhost", server["host"], "untouched keys survive the merge")
}

func TestMergeAliasListConcatenates(t *testing.T) {
	base := map[string]interface{}{
		"resolve": map[string]interface{}{
			"alias": []interface{}{
				map[string]interface{}{"find": "@", "replacement": "./src"},
			},
		},
	}
	override := map[string]interface{}{
		"resolve": map[string]interface{}{
			"alias": []interface{}{
				map[string]interface{}{"find": "~", "replacement": "./lib"},
			},
		},
	}

	merged := Merge(base, override)

	alias := merged["resolve"].(map[string]interface{})["alias"].([]interface{})
	assert.Len(t, alias, 2)
	assert.Equal(t, "@", alias[0].(map[string]interface{})["find"], "base aliases keep precedence")
	assert.Equal(t, "~", alias[1].(map[string]interface{})["find"])
}

func TestMergeOtherSlicesReplace(t *testing.T) {
	base := map[string]interface{}{
		"plugins": map[string]interface{}{
			"disabled": []interface{}{"a", "b"},
		},
	}
	override := map[string]interface{}{
		"plugins": map[string]interface{}{
			"disabled": []interface{}{"c"},
		},
	}

	merged := Merge(base, override)

	disabled := merged["plugins"].(map[string]interface{})["disabled"].([]interface{})
	assert.Equal(t, []interface{}{"c"}, disabled, "slices without an explicit policy replace wholesale")
}

func TestMergeScalarTypeMismatchReplaces(t *testing.T) {
	base := map[string]interface{}{"server": map[string]interface{}{"port": 5000}}
	override := map[string]interface{}{"server": "disabled"}

	merged := Merge(base, override)
	assert.Equal(t, "disabled", merged["server"])
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	base := map[string]interface{}{
		"server": map[string]interface{}{"port": 5000},
	}
	override := map[string]interface{}{
		"server": map[string]interface{}{"port": 9000},
	}

	Merge(base, override)

	assert.Equal(t, 5000, base["server"].(map[string]interface{})["port"])
	assert.Equal(t, 9000, override["server"].(map[string]interface{})["port"])
}

func TestMergeNewKeysAdopted(t *testing.T) {
	base := map[string]interface{}{"server": map[string]interface{}{"port": 5000}}
	override := map[string]interface{}{"preview": map[string]interface{}{"port": 4173}}

	merged := Merge(base, override)
	assert.Contains(t, merged, "server")
	assert.Contains(t, merged, "preview")
}

func TestMergeCaseInsensitivePolicyLookup(t *testing.T) {
	base := map[string]interface{}{
		"Resolve": map[string]interface{}{
			"Alias": []interface{}{"one"},
		},
	}
	override := map[string]interface{}{
		"Resolve": map[string]interface{}{
			"Alias": []interface{}{"two"},
		},
	}

	merged := Merge(base, override)
	alias := merged["Resolve"].(map[string]interface{})["Alias"].([]interface{})
	assert.Equal(t, []interface{}{"one", "two"}, alias)
}
