package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archlens/archlens"
	"github.com/archlens/archlens/cache"
	main "github.com/archlens/archlens/cmd/archlens"
	"github.com/archlens/archlens/mock"
)

// newDeps builds Dependencies over the given mock catalog, with caches
// wired the way Run wires them.
func newDeps(catalog *mock.CatalogService) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	cfg := archlens.DefaultConfig()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	deps := &main.Dependencies{
		Ctx:     context.Background(),
		Stdout:  stdout,
		Stderr:  stderr,
		Config:  cfg,
		Catalog: catalog,
	}
	if catalog != nil {
		deps.Categories = cache.New(cfg, cache.CategoriesFetch(catalog))
		deps.Packages = cache.New(cfg, cache.PackagesFetch(catalog, cfg.PageSize))
	}
	return deps, stdout, stderr
}

func TestCategoriesCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists categories with counts", func(t *testing.T) {
		t.Parallel()

		catalog := &mock.CatalogService{
			FetchCategoriesFn: func(_ context.Context) ([]archlens.Category, error) {
				return []archlens.Category{
					{Name: "Fonts", Count: 12},
					{Name: "Audio & Sound", Count: 7},
				}, nil
			},
		}
		deps, stdout, _ := newDeps(catalog)

		cmd := &main.CategoriesCmd{}
		err := cmd.Run(deps)

		require.NoError(t, err)
		output := stdout.String()
		assert.Contains(t, output, "Fonts")
		assert.Contains(t, output, "12 packages")
		assert.Contains(t, output, "Audio & Sound")
	})

	t.Run("shows message when no categories exist", func(t *testing.T) {
		t.Parallel()

		catalog := &mock.CatalogService{
			FetchCategoriesFn: func(_ context.Context) ([]archlens.Category, error) {
				return []archlens.Category{}, nil
			},
		}
		deps, stdout, _ := newDeps(catalog)

		err := (&main.CategoriesCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No categories")
	})

	t.Run("returns error when fetch fails", func(t *testing.T) {
		t.Parallel()

		catalog := &mock.CatalogService{
			FetchCategoriesFn: func(_ context.Context) ([]archlens.Category, error) {
				return nil, archlens.Errorf(archlens.ENETWORK, "connection refused")
			},
		}
		deps, _, stderr := newDeps(catalog)

		err := (&main.CategoriesCmd{}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, archlens.ENETWORK, archlens.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error:")
	})
}

func TestPackagesCmd_Run(t *testing.T) {
	t.Parallel()

	pagedCatalog := func(pages int) *mock.CatalogService {
		return &mock.CatalogService{
			FetchPackagesFn: func(_ context.Context, category string, page, pageSize int) (*archlens.Page, error) {
				return &archlens.Page{
					Packages: []archlens.Package{
						{ID: page, Name: "pkg-" + category, Description: "desc", Category: category},
					},
					Pagination: archlens.Pagination{Page: page, HasNext: page < pages},
				}, nil
			},
		}
	}

	t.Run("lists first page by default", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(pagedCatalog(3))

		err := (&main.PackagesCmd{Category: "Fonts", Pages: 1}).Run(deps)

		require.NoError(t, err)
		output := stdout.String()
		assert.Contains(t, output, "pkg-Fonts")
		assert.Contains(t, output, "more available")
	})

	t.Run("fetches every page with --all", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(pagedCatalog(3))

		err := (&main.PackagesCmd{Category: "Fonts", Pages: 1, All: true}).Run(deps)

		require.NoError(t, err)
		output := stdout.String()
		assert.NotContains(t, output, "more available")
		assert.Equal(t, 3, deps.Packages.State(archlens.PackagesKey("Fonts")).Pages)
	})

	t.Run("shows message for empty category", func(t *testing.T) {
		t.Parallel()

		catalog := &mock.CatalogService{
			FetchPackagesFn: func(_ context.Context, _ string, page, _ int) (*archlens.Page, error) {
				return &archlens.Page{Pagination: archlens.Pagination{Page: page}}, nil
			},
		}
		deps, stdout, _ := newDeps(catalog)

		err := (&main.PackagesCmd{Category: "Empty", Pages: 1}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No packages found")
	})
}

func TestSearchCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints matches with category badge", func(t *testing.T) {
		t.Parallel()

		catalog := &mock.CatalogService{
			FetchSearchFn: func(_ context.Context, query string, page, pageSize int) (*archlens.Page, error) {
				assert.Equal(t, "bluetooth", query)
				return &archlens.Page{
					Packages: []archlens.Package{
						{ID: 1, Name: "bluez", Description: "Bluetooth stack", Category: "Connectivity"},
					},
					Pagination: archlens.Pagination{Page: page, HasNext: false},
				}, nil
			},
		}
		deps, stdout, _ := newDeps(catalog)

		err := (&main.SearchCmd{Query: "bluetooth", Pages: 1}).Run(deps)

		require.NoError(t, err)
		output := stdout.String()
		assert.Contains(t, output, "bluez [Connectivity]")
		assert.Contains(t, output, "Bluetooth stack")
	})

	t.Run("rejects blank query without a request", func(t *testing.T) {
		t.Parallel()

		catalog := &mock.CatalogService{
			FetchSearchFn: func(_ context.Context, _ string, _, _ int) (*archlens.Page, error) {
				t.Fatal("search request issued for blank query")
				return nil, nil
			},
		}
		deps, _, stderr := newDeps(catalog)

		err := (&main.SearchCmd{Query: "   ", Pages: 1}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, archlens.EINVALID, archlens.ErrorCode(err))
		assert.Contains(t, stderr.String(), "must not be empty")
	})

	t.Run("shows message when nothing matches", func(t *testing.T) {
		t.Parallel()

		catalog := &mock.CatalogService{
			FetchSearchFn: func(_ context.Context, _ string, page, _ int) (*archlens.Page, error) {
				return &archlens.Page{Pagination: archlens.Pagination{Page: page}}, nil
			},
		}
		deps, stdout, _ := newDeps(catalog)

		err := (&main.SearchCmd{Query: "zzzz", Pages: 1}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No packages found")
	})
}

func TestDiagnoseCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints ranked suggestions with commands", func(t *testing.T) {
		t.Parallel()

		diagnostic := &mock.DiagnosticService{
			SubmitDiagnosisFn: func(_ context.Context, problem string) (*archlens.DiagnosticResult, error) {
				assert.Equal(t, "bluetooth headphones won't connect", problem)
				return &archlens.DiagnosticResult{
					TotalFound:      2,
					MatchedKeywords: []string{"bluetooth"},
					Suggestions: []archlens.Suggestion{
						{
							Package:    archlens.Package{Name: "bluez", Category: "Connectivity"},
							Confidence: 95,
							Reason:     "Core bluetooth support",
							Command:    "sudo pacman -S bluez",
						},
						{
							Package:    archlens.Package{Name: "blueman", Category: "Connectivity"},
							Confidence: 75,
							Reason:     "Bluetooth manager GUI",
							Command:    "sudo pacman -S blueman",
						},
					},
				}, nil
			},
		}
		deps, stdout, _ := newDeps(nil)
		deps.Diagnostic = diagnostic

		cmd := &main.DiagnoseCmd{Problem: []string{"bluetooth", "headphones", "won't", "connect"}}
		err := cmd.Run(deps)

		require.NoError(t, err)
		output := stdout.String()
		assert.Contains(t, output, "Found 2 relevant packages")
		assert.Contains(t, output, "matched: bluetooth")
		assert.Contains(t, output, "bluez [Connectivity] 95% (high confidence)")
		assert.Contains(t, output, "blueman [Connectivity] 75% (medium confidence)")
		assert.Contains(t, output, "$ sudo pacman -S bluez")
	})

	t.Run("shows example prompts without arguments", func(t *testing.T) {
		t.Parallel()

		diagnostic := &mock.DiagnosticService{
			SubmitDiagnosisFn: func(_ context.Context, _ string) (*archlens.DiagnosticResult, error) {
				t.Fatal("request issued without a problem description")
				return nil, nil
			},
		}
		deps, stdout, _ := newDeps(nil)
		deps.Diagnostic = diagnostic

		err := (&main.DiagnoseCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "My bluetooth headphones won't connect")
	})

	t.Run("prints fallback message for empty suggestions", func(t *testing.T) {
		t.Parallel()

		diagnostic := &mock.DiagnosticService{
			SubmitDiagnosisFn: func(_ context.Context, _ string) (*archlens.DiagnosticResult, error) {
				return &archlens.DiagnosticResult{TotalFound: 0}, nil
			},
		}
		deps, stdout, _ := newDeps(nil)
		deps.Diagnostic = diagnostic

		err := (&main.DiagnoseCmd{Problem: []string{"quantum", "flux"}}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No specific packages identified")
	})

	t.Run("returns error when submission fails", func(t *testing.T) {
		t.Parallel()

		diagnostic := &mock.DiagnosticService{
			SubmitDiagnosisFn: func(_ context.Context, _ string) (*archlens.DiagnosticResult, error) {
				return nil, archlens.Errorf(archlens.ESERVER, "internal server error")
			},
		}
		deps, _, stderr := newDeps(nil)
		deps.Diagnostic = diagnostic

		err := (&main.DiagnoseCmd{Problem: []string{"no", "sound"}}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error:")
	})
}

func TestExportCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("exports all categories as JSON", func(t *testing.T) {
		t.Parallel()

		catalog := &mock.CatalogService{
			FetchCategoriesFn: func(_ context.Context) ([]archlens.Category, error) {
				return []archlens.Category{
					{Name: "Fonts", Count: 2},
					{Name: "Audio", Count: 1},
				}, nil
			},
			FetchPackagesFn: func(_ context.Context, category string, page, _ int) (*archlens.Page, error) {
				if category == "Fonts" && page == 1 {
					return &archlens.Page{
						Packages:   []archlens.Package{{ID: 1, Name: "ttf-dejavu", Category: category}},
						Pagination: archlens.Pagination{Page: 1, HasNext: true},
					}, nil
				}
				name := "pipewire"
				if category == "Fonts" {
					name = "ttf-liberation"
				}
				return &archlens.Page{
					Packages:   []archlens.Package{{ID: 2, Name: name, Category: category}},
					Pagination: archlens.Pagination{Page: page, HasNext: false},
				}, nil
			},
		}
		deps, stdout, _ := newDeps(catalog)

		err := (&main.ExportCmd{Concurrency: 2}).Run(deps)

		require.NoError(t, err)
		output := stdout.String()
		assert.Contains(t, output, `"ttf-dejavu"`)
		assert.Contains(t, output, `"ttf-liberation"`, "pagination is walked to the end")
		assert.Contains(t, output, `"pipewire"`)
	})

	t.Run("fails when a category walk fails", func(t *testing.T) {
		t.Parallel()

		catalog := &mock.CatalogService{
			FetchCategoriesFn: func(_ context.Context) ([]archlens.Category, error) {
				return []archlens.Category{{Name: "Fonts", Count: 1}}, nil
			},
			FetchPackagesFn: func(_ context.Context, _ string, _, _ int) (*archlens.Page, error) {
				return nil, archlens.Errorf(archlens.ETIMEOUT, "request timed out")
			},
		}
		deps, _, stderr := newDeps(catalog)

		err := (&main.ExportCmd{Concurrency: 2}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error:")
	})
}

func TestHealthCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("reports healthy server", func(t *testing.T) {
		t.Parallel()

		catalog := &mock.CatalogService{
			HealthyFn: func(_ context.Context) error { return nil },
		}
		deps, stdout, _ := newDeps(catalog)

		err := (&main.HealthCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "healthy")
	})

	t.Run("reports unreachable server", func(t *testing.T) {
		t.Parallel()

		catalog := &mock.CatalogService{
			HealthyFn: func(_ context.Context) error {
				return archlens.Errorf(archlens.ENETWORK, "connection refused")
			},
		}
		deps, _, stderr := newDeps(catalog)

		err := (&main.HealthCmd{}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "unreachable")
	})
}
