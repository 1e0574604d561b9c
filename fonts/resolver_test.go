package fonts

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	return NewCatalog(
		FontRef{Name: "Arial", Path: "/f/arial.ttf"},
		FontRef{Name: "DejaVu Sans", Path: "/f/dejavu.ttf"},
		FontRef{Name: "Noto Serif", Path: "/f/noto.ttc", Index: 2},
	)
}

func TestResolveStrategyOrder(t *testing.T) {
	r := NewResolver(testCatalog(), ResolverOptions{
		Mappings: Mappings{"TimesNewRoman": "Noto Serif", "Ghost": "Not Installed"},
	})

	cases := []struct {
		name     string
		want     string
		strategy string
		fallback bool
	}{
		{"TimesNewRoman", "Noto Serif", "override", false},
		{"DejaVu Sans", "DejaVu Sans", "exact", false},
		{"Helvetica", "Arial", "family", true},
		{"Ghost", "Arial", "family", true},
	}
	for _, tc := range cases {
		ref, res, err := r.Resolve(tc.name)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, ref.Name, tc.name)
		assert.Equal(t, tc.strategy, res.Strategy, tc.name)
		assert.Equal(t, tc.fallback, res.Fallback, tc.name)
		assert.Equal(t, tc.name, res.Requested)
	}
}

func TestResolveAnyIsDeterministic(t *testing.T) {
	c := NewCatalog(FontRef{Name: "Zeta"}, FontRef{Name: "Beta"}, FontRef{Name: "Mu"})
	r := NewResolver(c, ResolverOptions{DefaultFamily: "Missing Family"})
	ref, res, err := r.Resolve("Unknown")
	require.NoError(t, err)
	assert.Equal(t, "Beta", ref.Name)
	assert.Equal(t, "any", res.Strategy)
}

func TestResolveEmptyCatalog(t *testing.T) {
	r := NewResolver(NewCatalog(), ResolverOptions{})
	_, _, err := r.Resolve("Arial")
	assert.ErrorIs(t, err, ErrNoFonts)
}

type countingStrategy struct{ calls *int }

func (countingStrategy) Name() string { return "counting" }

func (s countingStrategy) Resolve(name string, c *Catalog) (FontRef, bool) {
	*s.calls++
	return c.Lookup("Arial")
}

func TestResolveCachesPerName(t *testing.T) {
	calls := 0
	r := NewResolver(testCatalog(), ResolverOptions{Strategies: []Strategy{countingStrategy{&calls}}})
	for i := 0; i < 3; i++ {
		_, _, err := r.Resolve("Body")
		require.NoError(t, err)
	}
	_, _, err := r.Resolve("Other")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCheckAvailability(t *testing.T) {
	r := NewResolver(testCatalog(), ResolverOptions{})
	got := r.Check([]string{"Arial", "Wingdings", "Calibri", "Wingdings"})
	assert.False(t, got.AllPresent)
	assert.Equal(t, []string{"Calibri", "Wingdings"}, got.Missing)
	assert.Equal(t, "Arial", got.Suggestions["Calibri"])

	noArial := NewResolver(NewCatalog(FontRef{Name: "Noto Serif"}), ResolverOptions{})
	assert.Equal(t, "Noto Serif", noArial.Check([]string{"Calibri"}).Suggestions["Calibri"])

	assert.True(t, r.Check([]string{"Arial"}).AllPresent)
}

func TestMappingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "font_mappings.json")

	m, err := LoadMappings(path)
	require.NoError(t, err)
	assert.Empty(t, m)

	m["Calibri"] = "Arial"
	require.NoError(t, SaveMappings(path, m))

	loaded, err := LoadMappings(path)
	require.NoError(t, err)
	assert.Equal(t, Mappings{"Calibri": "Arial"}, loaded)
}
