package plugin

// AdapterConfig is the handle built-in adapter factories produce. The build
// engine consumes it to wire the framework's transforms into its pipeline.
type AdapterConfig struct {
	Framework  string
	Extensions []string
	Options    map[string]interface{}
}

// PluginName implements Named so built-in adapters keep stable names across
// restarts instead of falling back to synthetic display names.
func (c AdapterConfig) PluginName() string {
	return c.Framework
}

func adapterFactory(framework string, extensions ...string) Factory {
	return func(options map[string]interface{}) (interface{}, error) {
		return AdapterConfig{
			Framework:  framework,
			Extensions: extensions,
			Options:    options,
		}, nil
	}
}

// DefaultLoader returns a registry loader carrying the built-in adapter
// modules for every package in the descriptor table. The react module exposes
// a group factory: the compiler adapter and its JSX dev transform cooperate
// and register together.
func DefaultLoader() *RegistryLoader {
	loader := NewRegistryLoader()

	loader.Register("@launchpad/plugin-react", &Module{
		Default: func(options map[string]interface{}) (interface{}, error) {
			compile, err := adapterFactory("react", ".jsx", ".tsx")(options)
			if err != nil {
				return nil, err
			}
			jsxDev, err := adapterFactory("react-jsx-dev", ".jsx", ".tsx")(nil)
			if err != nil {
				return nil, err
			}
			return []interface{}{compile, jsxDev}, nil
		},
	})
	loader.Register("@launchpad/plugin-react-refresh", &Module{
		Named: map[string]Factory{
			"createRefreshPlugin": adapterFactory("react-refresh"),
		},
	})
	loader.Register("@launchpad/plugin-preact", &Module{
		Default: adapterFactory("preact", ".jsx", ".tsx"),
	})
	loader.Register("@launchpad/plugin-vue", &Module{
		Default: adapterFactory("vue", ".vue"),
	})
	loader.Register("@launchpad/plugin-vue-jsx", &Module{
		Named: map[string]Factory{
			"createVueJsxPlugin": adapterFactory("vue-jsx", ".jsx", ".tsx"),
		},
	})
	loader.Register("@launchpad/plugin-nuxt", &Module{
		Default: adapterFactory("nuxt"),
	})
	loader.Register("@launchpad/plugin-svelte", &Module{
		Default: adapterFactory("svelte", ".svelte"),
	})
	loader.Register("@launchpad/plugin-sveltekit", &Module{
		Default: adapterFactory("sveltekit"),
	})
	loader.Register("@launchpad/plugin-solid", &Module{
		Default: adapterFactory("solid", ".jsx", ".tsx"),
	})
	loader.Register("@launchpad/plugin-lit", &Module{
		// Lit needs no compile step; the module ships a ready-made value.
		Value: AdapterConfig{Framework: "lit", Extensions: []string{".ts", ".js"}},
	})

	return loader
}
