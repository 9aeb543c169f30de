package main

import (
	"fmt"

	"github.com/archlens/archlens"
	"github.com/archlens/archlens/cache"
)

// Run executes the packages command.
func (c *PackagesCmd) Run(deps *Dependencies) error {
	key := archlens.PackagesKey(c.Category)
	if err := fetchPages(deps, key, c.Pages, c.All); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", archlens.ErrorMessage(err))
		return err
	}

	state := deps.Packages.State(key)
	if len(state.Items) == 0 {
		fmt.Fprintf(deps.Stdout, "No packages found in category %q.\n", c.Category)
		return nil
	}

	printPackages(deps, state)
	return nil
}

// fetchPages ensures the first page for key and appends follow-up pages
// until the requested count is reached or the stream is exhausted.
func fetchPages(deps *Dependencies, key archlens.QueryKey, pages int, all bool) error {
	if err := deps.Packages.Ensure(deps.Ctx, key); err != nil {
		return err
	}
	for state := deps.Packages.State(key); state.HasNext; state = deps.Packages.State(key) {
		if !all && state.Pages >= pages {
			break
		}
		if err := deps.Packages.FetchNext(deps.Ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func printPackages(deps *Dependencies, state cache.State[archlens.Package]) {
	for _, pkg := range state.Items {
		fmt.Fprintf(deps.Stdout, "%-30s %s\n", pkg.Name, pkg.Description)
	}
	if state.HasNext {
		fmt.Fprintf(deps.Stdout, "\n%d shown, more available (use --all or --pages)\n", len(state.Items))
	}
}
