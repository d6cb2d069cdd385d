package crisis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCaseInsensitive(t *testing.T) {
	r := NewResolver("bd")

	lower := r.Resolve("bd")
	upper := r.Resolve("BD")
	padded := r.Resolve("  Bd ")

	assert.Equal(t, lower, upper)
	assert.Equal(t, lower, padded)
	assert.Equal(t, "Bangladesh", lower.RegionName)
	assert.Equal(t, "999", lower.Emergency)
}

func TestResolveEmptyUsesDefaultRegion(t *testing.T) {
	r := NewResolver("us")

	rs := r.Resolve("")
	assert.Equal(t, "United States", rs.RegionName)
	assert.Equal(t, "988", rs.Emergency)
}

func TestResolveUnknownRegionFallsBack(t *testing.T) {
	r := NewResolver("bd")

	rs := r.Resolve("zz")
	assert.Equal(t, "International", rs.RegionName)
	assert.Empty(t, rs.Emergency, "fallback must not carry a local emergency number")
	assert.NotEmpty(t, rs.CrisisLink)
	assert.NotEmpty(t, rs.Guidance)
}

func TestResolveReturnsCopy(t *testing.T) {
	r := NewResolver("bd")

	a := r.Resolve("bd")
	require.NotEmpty(t, a.Guidance)
	a.Guidance[0] = "mutated"

	b := r.Resolve("bd")
	assert.NotEqual(t, "mutated", b.Guidance[0])
}

func TestFormatKnownRegion(t *testing.T) {
	r := NewResolver("bd")
	out := Format(r.Resolve("in"))

	lines := strings.Split(out, "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "call 112 (India)")
	assert.Contains(t, lines[len(lines)-1], "https://findahelpline.com/countries/in")

	// The emergency-department guidance line is folded into the danger line,
	// never repeated as a bullet.
	assert.Equal(t, 1, strings.Count(out, "emergency department"))
}

func TestFormatFallbackUsesGenericDangerLine(t *testing.T) {
	r := NewResolver("bd")
	out := Format(r.Resolve("nowhere"))

	assert.Contains(t, out, "call your local emergency number")
	assert.NotContains(t, out, "call  (")
}
