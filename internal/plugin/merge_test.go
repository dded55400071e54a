package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeWithUserPrependsResolved(t *testing.T) {
	resolved := []AssembledPlugin{{Name: "vue"}, {Name: "vue-jsx"}}
	user := []AssembledPlugin{{Name: "compress"}, {Name: "inspect"}}

	final := MergeWithUser(resolved, user)
	assert.Equal(t, []string{"vue", "vue-jsx", "compress", "inspect"}, pluginNames(final))
}

func TestMergeWithUserCollisionKeepsUserPlugin(t *testing.T) {
	userHandle := AdapterConfig{Framework: "vue", Options: map[string]interface{}{"custom": true}}
	resolved := []AssembledPlugin{{Name: "vue", Handle: AdapterConfig{Framework: "vue"}}}
	user := []AssembledPlugin{{Name: "vue", Handle: userHandle}}

	final := MergeWithUser(resolved, user)

	require.Len(t, final, 1)
	assert.Equal(t, "vue", final[0].Name)
	assert.Equal(t, userHandle, final[0].Handle, "user-declared plugin wins the name collision")
}

func TestMergeWithUserDropsDuplicateResolvedNames(t *testing.T) {
	resolved := []AssembledPlugin{{Name: "svelte"}, {Name: "svelte"}}

	final := MergeWithUser(resolved, nil)
	assert.Equal(t, []string{"svelte"}, pluginNames(final))
}

func TestDropDisabledRemovesListedNames(t *testing.T) {
	plugins := []AssembledPlugin{{Name: "vue"}, {Name: "vue-jsx"}, {Name: "compress"}}

	final := DropDisabled(plugins, []string{"vue-jsx", "never-present"})
	assert.Equal(t, []string{"vue", "compress"}, pluginNames(final))
}

func TestDropDisabledBeatsUserDeclarations(t *testing.T) {
	resolved := []AssembledPlugin{{Name: "vue"}}
	user := []AssembledPlugin{{Name: "compress"}}

	final := DropDisabled(MergeWithUser(resolved, user), []string{"compress"})
	assert.Equal(t, []string{"vue"}, pluginNames(final))
}

func TestDropDisabledEmptyListIsPassThrough(t *testing.T) {
	plugins := []AssembledPlugin{{Name: "svelte"}}
	assert.Equal(t, plugins, DropDisabled(plugins, nil))
}

func TestMergeWithUserEmptyInputs(t *testing.T) {
	assert.Empty(t, MergeWithUser(nil, nil))

	user := []AssembledPlugin{{Name: "only"}}
	assert.Equal(t, user, MergeWithUser(nil, user))

	resolved := []AssembledPlugin{{Name: "only"}}
	assert.Equal(t, resolved, MergeWithUser(resolved, nil))
}
