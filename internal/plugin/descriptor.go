// Package plugin resolves framework adapter plugins for a detected framework
// and normalizes them into the single shape the lifecycle coordinator merges
// with user-declared plugins.
package plugin

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/launchpad-dev/launchpad/internal/detect"
)

// Descriptor is a static table entry describing one adapter plugin package.
type Descriptor struct {
	// Key identifies the adapter slot, unique per framework variant.
	Key string
	// DisplayName doubles as the synthetic plugin name when an instantiated
	// plugin carries no name of its own.
	DisplayName string
	// PackageName is resolved inside the target project's node_modules.
	PackageName string
	// Required adapters degrade to a logged warning when unresolved;
	// optional ones stay silent.
	Required bool
	// NamedExport is the framework-specific factory export, tried when the
	// module exposes no default factory.
	NamedExport string
	// Options are passed verbatim to the plugin factory.
	Options map[string]interface{}
}

var titler = cases.Title(language.English)

func describe(key, pkg string, required bool, namedExport string, options map[string]interface{}) Descriptor {
	return Descriptor{
		Key:         key,
		DisplayName: titler.String(key) + " Adapter",
		PackageName: pkg,
		Required:    required,
		NamedExport: namedExport,
		Options:     options,
	}
}

// Table maps each framework to its adapter descriptors. One required compiler
// adapter per framework, plus optional companions. Vanilla needs no adapter.
func Table() map[detect.Framework][]Descriptor {
	return map[detect.Framework][]Descriptor{
		detect.FrameworkReact: {
			describe("react", "@launchpad/plugin-react", true, "createReactPlugin",
				map[string]interface{}{"jsxRuntime": "automatic"}),
			describe("react-refresh", "@launchpad/plugin-react-refresh", false, "createRefreshPlugin", nil),
		},
		detect.FrameworkPreact: {
			describe("preact", "@launchpad/plugin-preact", true, "createPreactPlugin",
				map[string]interface{}{"jsxImportSource": "preact"}),
		},
		detect.FrameworkVue: {
			describe("vue", "@launchpad/plugin-vue", true, "createVuePlugin", nil),
			describe("vue-jsx", "@launchpad/plugin-vue-jsx", false, "createVueJsxPlugin", nil),
		},
		detect.FrameworkNuxt: {
			describe("nuxt", "@launchpad/plugin-nuxt", true, "createNuxtPlugin", nil),
			describe("vue", "@launchpad/plugin-vue", true, "createVuePlugin", nil),
		},
		detect.FrameworkSvelte: {
			describe("svelte", "@launchpad/plugin-svelte", true, "createSveltePlugin", nil),
		},
		detect.FrameworkSvelteKit: {
			describe("sveltekit", "@launchpad/plugin-sveltekit", true, "createSvelteKitPlugin", nil),
			describe("svelte", "@launchpad/plugin-svelte", true, "createSveltePlugin", nil),
		},
		detect.FrameworkSolid: {
			describe("solid", "@launchpad/plugin-solid", true, "createSolidPlugin",
				map[string]interface{}{"jsxImportSource": "solid-js"}),
		},
		detect.FrameworkLit: {
			describe("lit", "@launchpad/plugin-lit", false, "createLitPlugin", nil),
		},
	}
}

// AssembledPlugin is the canonical post-normalization unit handed to the build
// engine. Handle carries the instantiated adapter value.
type AssembledPlugin struct {
	Name   string
	Handle interface{}
}

// Named is implemented by plugin values that declare their own name.
type Named interface {
	PluginName() string
}
