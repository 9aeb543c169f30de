// Package view implements the client's view state machine: which of the
// categories, category-detail, search-results or diagnostic views is
// displayed, and which query keys are live for automatic fetching.
package view

import "github.com/archlens/archlens"

// State identifies the active view. Exactly one state is active at any
// instant; transitions are the only means of changing which query keys
// are live.
type State int

const (
	// Categories shows the category listing. Initial state.
	Categories State = iota
	// PackagesForCategory shows one category's packages.
	PackagesForCategory
	// SearchResults shows free-text search results.
	SearchResults
	// Diagnostic shows the diagnostic tool.
	Diagnostic
)

// String returns the state name for logs and errors.
func (s State) String() string {
	switch s {
	case Categories:
		return "categories"
	case PackagesForCategory:
		return "packages"
	case SearchResults:
		return "search"
	case Diagnostic:
		return "diagnostic"
	default:
		return "unknown"
	}
}

// Coordinator owns the active view state and the currently-typed search
// text. It is not safe for concurrent use; drive it from a single event
// loop, with debounce emissions forwarded into that loop.
type Coordinator struct {
	state    State
	category string

	// rawSearch is the text as typed; settledSearch is the last value
	// the debouncer emitted. The search query key follows settledSearch,
	// while the view label shows rawSearch.
	rawSearch     string
	settledSearch string
}

// NewCoordinator returns a Coordinator in the Categories state.
func NewCoordinator() *Coordinator {
	return &Coordinator{state: Categories}
}

// State returns the active view state.
func (c *Coordinator) State() State {
	return c.state
}

// Category returns the selected category name, valid in the
// PackagesForCategory state.
func (c *Coordinator) Category() string {
	return c.category
}

// SearchText returns the raw (non-debounced) search text, used as the
// optimistic view label while debounce is pending.
func (c *Coordinator) SearchText() string {
	return c.rawSearch
}

// SettledSearch returns the last debounce-settled search term. The search
// query key is keyed on this value.
func (c *Coordinator) SettledSearch() string {
	return c.settledSearch
}

// SelectCategory transitions to PackagesForCategory from any state and
// clears any in-progress search text.
func (c *Coordinator) SelectCategory(name string) {
	c.state = PackagesForCategory
	c.category = name
	c.rawSearch = ""
	c.settledSearch = ""
}

// ChangeSearchText updates the raw search text. Empty text transitions to
// Categories without issuing a search; non-empty text transitions to
// SearchResults, where the query key stays on the last settled term until
// the debouncer fires SettleSearch.
func (c *Coordinator) ChangeSearchText(text string) {
	c.rawSearch = text
	if text == "" {
		c.settledSearch = ""
		if c.state == SearchResults {
			c.state = Categories
		}
		return
	}
	c.state = SearchResults
	c.category = ""
}

// SettleSearch records a debounce-settled search term. Emissions that
// arrive after the user has navigated away from search, or after the raw
// text was cleared, are ignored.
func (c *Coordinator) SettleSearch(term string) {
	if c.state != SearchResults || c.rawSearch == "" {
		return
	}
	c.settledSearch = term
}

// OpenDiagnostic transitions to Diagnostic from any state. Search and
// category query state is suppressed, not discarded.
func (c *Coordinator) OpenDiagnostic() {
	c.state = Diagnostic
}

// CloseDiagnostic leaves the Diagnostic state, restoring whichever view
// the retained category/search state implies.
func (c *Coordinator) CloseDiagnostic() {
	if c.state != Diagnostic {
		return
	}
	switch {
	case c.rawSearch != "":
		c.state = SearchResults
	case c.category != "":
		c.state = PackagesForCategory
	default:
		c.state = Categories
	}
}

// GoBack returns to Categories from PackagesForCategory or from a
// non-empty SearchResults view. It is a no-op from Categories and from
// Diagnostic, which is left only via CloseDiagnostic.
func (c *Coordinator) GoBack() {
	switch c.state {
	case PackagesForCategory:
		c.state = Categories
		c.category = ""
	case SearchResults:
		if c.rawSearch != "" {
			c.state = Categories
			c.rawSearch = ""
			c.settledSearch = ""
		}
	}
}

// LiveKeys returns the query keys eligible for automatic fetching in the
// active state. Cached data for keys not returned here is retained but
// not refreshed.
func (c *Coordinator) LiveKeys() []archlens.QueryKey {
	switch c.state {
	case Categories:
		return []archlens.QueryKey{archlens.CategoriesKey()}
	case PackagesForCategory:
		if c.category == "" {
			return nil
		}
		return []archlens.QueryKey{archlens.PackagesKey(c.category)}
	case SearchResults:
		if c.settledSearch == "" {
			return nil
		}
		return []archlens.QueryKey{archlens.SearchKey(c.settledSearch)}
	default:
		return nil
	}
}
