package plugin

// MergeWithUser builds the final ordered plugin list. User-declared plugins
// stay verbatim in their declared order; resolved plugins whose names are not
// already taken are prepended so auto-resolved adapters run earlier in the
// engine pipeline. A name collision drops the resolved plugin entirely: user
// configuration always wins.
func MergeWithUser(resolved, user []AssembledPlugin) []AssembledPlugin {
	taken := make(map[string]struct{}, len(user))
	for _, p := range user {
		taken[p.Name] = struct{}{}
	}

	var prepend []AssembledPlugin
	for _, p := range resolved {
		if _, exists := taken[p.Name]; exists {
			continue
		}
		// Guard against duplicate names inside the resolved set itself.
		taken[p.Name] = struct{}{}
		prepend = append(prepend, p)
	}

	final := make([]AssembledPlugin, 0, len(prepend)+len(user))
	final = append(final, prepend...)
	final = append(final, user...)
	return final
}

// DropDisabled removes plugins whose names appear in the disabled list.
// Disabling beats every source: a listed name is dropped whether it came from
// adapter resolution or the user's own declarations.
func DropDisabled(plugins []AssembledPlugin, disabled []string) []AssembledPlugin {
	if len(disabled) == 0 {
		return plugins
	}
	off := make(map[string]struct{}, len(disabled))
	for _, name := range disabled {
		off[name] = struct{}{}
	}

	kept := make([]AssembledPlugin, 0, len(plugins))
	for _, p := range plugins {
		if _, drop := off[p.Name]; drop {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
