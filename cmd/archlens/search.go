package main

import (
	"fmt"
	"strings"

	"github.com/archlens/archlens"
)

// Run executes the search command. The CLI has no keystroke stream to
// debounce; the argument is the settled term.
func (c *SearchCmd) Run(deps *Dependencies) error {
	query := strings.TrimSpace(c.Query)
	if query == "" {
		fmt.Fprintln(deps.Stderr, "error: search term must not be empty")
		return archlens.Errorf(archlens.EINVALID, "search term must not be empty")
	}

	key := archlens.SearchKey(query)
	if err := fetchPages(deps, key, c.Pages, c.All); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", archlens.ErrorMessage(err))
		return err
	}

	state := deps.Packages.State(key)
	if len(state.Items) == 0 {
		fmt.Fprintf(deps.Stdout, "No packages found matching %q.\n", query)
		return nil
	}

	for _, pkg := range state.Items {
		name := pkg.Name
		if pkg.Category != "" {
			name = fmt.Sprintf("%s [%s]", pkg.Name, pkg.Category)
		}
		fmt.Fprintf(deps.Stdout, "%-40s %s\n", name, pkg.Description)
	}
	if state.HasNext {
		fmt.Fprintf(deps.Stdout, "\n%d shown, more available (use --all or --pages)\n", len(state.Items))
	}
	return nil
}
