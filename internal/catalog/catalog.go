// Package catalog merges built-in and dynamically-registered commands into
// the ordered, gated list the palette displays.
package catalog

import (
	"sort"
	"strings"

	"github.com/opencode-ai/commandbar/pkg/types"
)

// Resolve merges builtins with dynamic commands, applies the query filter
// and availability gate, and returns a deterministically ordered list.
//
// Merge rule: one entry per name, dynamic wins ties. Filter rule: substring
// match (case-insensitive) against name or description. Sort rule: commands
// whose name starts with the query come before those that merely contain
// it, lexicographic by name within each group.
func Resolve(builtins, dynamic []types.Command, query string, snap types.SessionSnapshot) []types.Command {
	merged := make(map[string]types.Command, len(builtins)+len(dynamic))
	for _, cmd := range builtins {
		merged[cmd.Name] = cmd
	}
	for _, cmd := range dynamic {
		merged[cmd.Name] = cmd
	}

	q := strings.ToLower(strings.TrimSpace(query))

	visible := make([]types.Command, 0, len(merged))
	for _, cmd := range merged {
		if q != "" && !matchesQuery(cmd, q) {
			continue
		}
		// init is suppressed outright once the session has messages. Its
		// availability predicate says the same thing, but enforcing it at
		// the catalog stage keeps it hidden during transitional snapshots.
		if cmd.Name == "init" && snap.MessageCount > 0 {
			continue
		}
		if !IsAvailable(cmd, snap) {
			continue
		}
		visible = append(visible, cmd)
	}

	sort.Slice(visible, func(i, j int) bool {
		iPrefix := strings.HasPrefix(strings.ToLower(visible[i].Name), q)
		jPrefix := strings.HasPrefix(strings.ToLower(visible[j].Name), q)
		if iPrefix != jPrefix {
			return iPrefix
		}
		return visible[i].Name < visible[j].Name
	})

	return visible
}

func matchesQuery(cmd types.Command, q string) bool {
	return strings.Contains(strings.ToLower(cmd.Name), q) ||
		strings.Contains(strings.ToLower(cmd.Description), q)
}
