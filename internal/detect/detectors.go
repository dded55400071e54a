package detect

// Framework identifies a supported UI framework.
type Framework string

const (
	FrameworkVanilla   Framework = "vanilla"
	FrameworkReact     Framework = "react"
	FrameworkPreact    Framework = "preact"
	FrameworkVue       Framework = "vue"
	FrameworkNuxt      Framework = "nuxt"
	FrameworkSvelte    Framework = "svelte"
	FrameworkSvelteKit Framework = "sveltekit"
	FrameworkSolid     Framework = "solid"
	FrameworkLit       Framework = "lit"
)

// DependencyRule evaluates a project's dependency map and reports whether the
// framework is detected and with what confidence (0..1).
type DependencyRule func(deps map[string]string) (detected bool, confidence float64)

// Detector is a static registry entry for one framework. Detectors are defined
// at process start and never mutated.
type Detector struct {
	Type Framework
	// Priority breaks confidence ties; higher wins. Meta-frameworks carry a
	// higher priority than the base framework they are built on, so a project
	// declaring both resolves to the meta-framework.
	Priority int
	Rule     DependencyRule
	// FilePatterns are the fallback scan globs, relative to the project root.
	// Detectors without patterns only participate in dependency detection.
	FilePatterns []string
}

func dependencyRule(name string, confidence float64) DependencyRule {
	return func(deps map[string]string) (bool, float64) {
		if _, ok := deps[name]; ok {
			return true, confidence
		}
		return false, 0
	}
}

func anyDependencyRule(names []string, confidence float64) DependencyRule {
	return func(deps map[string]string) (bool, float64) {
		for _, name := range names {
			if _, ok := deps[name]; ok {
				return true, confidence
			}
		}
		return false, 0
	}
}

// Registry returns the built-in detector set, ordered by declaration. Order
// carries no meaning: detection evaluates every rule and ranks the matches.
func Registry() []Detector {
	return []Detector{
		{
			Type:     FrameworkNuxt,
			Priority: 90,
			Rule:     dependencyRule("nuxt", 1.0),
			FilePatterns: []string{
				"nuxt.config.js", "nuxt.config.ts", "nuxt.config.mjs",
			},
		},
		{
			Type:     FrameworkSvelteKit,
			Priority: 90,
			Rule:     dependencyRule("@sveltejs/kit", 1.0),
			FilePatterns: []string{
				"svelte.config.js", "svelte.config.ts",
			},
		},
		{
			Type:     FrameworkVue,
			Priority: 50,
			Rule:     dependencyRule("vue", 0.8),
			FilePatterns: []string{
				"**/*.vue",
			},
		},
		{
			Type:     FrameworkSvelte,
			Priority: 50,
			Rule:     dependencyRule("svelte", 0.8),
			FilePatterns: []string{
				"**/*.svelte",
			},
		},
		{
			Type:     FrameworkPreact,
			Priority: 60,
			Rule:     dependencyRule("preact", 0.9),
		},
		{
			Type:     FrameworkSolid,
			Priority: 60,
			Rule:     dependencyRule("solid-js", 0.9),
		},
		{
			Type:     FrameworkReact,
			Priority: 40,
			Rule:     anyDependencyRule([]string{"react", "react-dom"}, 0.8),
			FilePatterns: []string{
				"**/*.jsx", "**/*.tsx",
			},
		},
		{
			Type:     FrameworkLit,
			Priority: 40,
			Rule:     anyDependencyRule([]string{"lit", "lit-element"}, 0.8),
		},
	}
}

// ParseFramework maps a user-supplied framework name onto a known Framework.
func ParseFramework(name string) (Framework, bool) {
	switch Framework(name) {
	case FrameworkVanilla, FrameworkReact, FrameworkPreact, FrameworkVue,
		FrameworkNuxt, FrameworkSvelte, FrameworkSvelteKit, FrameworkSolid,
		FrameworkLit:
		return Framework(name), true
	}
	return "", false
}
