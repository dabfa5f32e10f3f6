package plans

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRefs() PriceRefs {
	return PriceRefs{Basic: "price_basic", Professional: "price_pro", Enterprise: "price_ent"}
}

func TestDefaultCatalog_TierInvariants(t *testing.T) {
	c, err := DefaultCatalog(testRefs())
	require.NoError(t, err)

	all := c.Plans()
	require.Len(t, all, 4)
	assert.Equal(t, Free, all[0].ID)
	assert.Empty(t, all[0].StripePriceID)

	for i := 1; i < len(all); i++ {
		assert.Greater(t, all[i].MaxAssets, all[i-1].MaxAssets, "maxAssets for %s", all[i].ID)
		for _, f := range all[i-1].Features {
			assert.True(t, all[i].HasFeature(f), "%s should include %s", all[i].ID, f)
		}
		assert.NotEmpty(t, all[i].StripePriceID)
	}
}

func TestLookup(t *testing.T) {
	c, err := DefaultCatalog(testRefs())
	require.NoError(t, err)

	assert.Equal(t, 500, c.Lookup(Professional).MaxAssets)
	assert.Equal(t, Free, c.Lookup("platinum").ID)
	assert.Equal(t, Free, c.Lookup("").ID)
}

func TestLookup_ReturnsCopies(t *testing.T) {
	c, err := DefaultCatalog(testRefs())
	require.NoError(t, err)

	p := c.Lookup(Basic)
	p.Features[0] = "tampered"
	assert.Equal(t, BasicScanning, c.Lookup(Basic).Features[0])
}

func TestReversePriceLookup(t *testing.T) {
	c, err := DefaultCatalog(testRefs())
	require.NoError(t, err)

	tests := []struct {
		price string
		want  PlanID
	}{
		{"price_basic", Basic},
		{"price_pro", Professional},
		{"price_ent", Enterprise},
		{"", Free},
		{"price_unknown", Free},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.ReversePriceLookup(tt.price), "price %q", tt.price)
	}
}

func TestPurchasable(t *testing.T) {
	c, err := DefaultCatalog(testRefs())
	require.NoError(t, err)

	assert.False(t, c.Purchasable(Free))
	assert.True(t, c.Purchasable(Enterprise))
	assert.False(t, c.Purchasable("gold"))
}

func TestNewCatalog_Rejects(t *testing.T) {
	base := func() []Plan {
		c, err := DefaultCatalog(testRefs())
		require.NoError(t, err)
		return c.Plans()
	}

	tests := []struct {
		name   string
		mutate func([]Plan) []Plan
	}{
		{"missing tier", func(p []Plan) []Plan { return p[:3] }},
		{"non increasing assets", func(p []Plan) []Plan { p[2].MaxAssets = p[1].MaxAssets; return p }},
		{"dropped feature", func(p []Plan) []Plan { p[3].Features = p[3].Features[1:]; return p }},
		{"free with price", func(p []Plan) []Plan { p[0].StripePriceID = "price_free"; return p }},
		{"paid without price", func(p []Plan) []Plan { p[1].StripePriceID = ""; return p }},
		{"shared price", func(p []Plan) []Plan { p[2].StripePriceID = p[1].StripePriceID; return p }},
		{"unknown id", func(p []Plan) []Plan { p[3].ID = "platinum"; return p }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.mutate(base()))
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestParsePlanID(t *testing.T) {
	id, ok := ParsePlanID(" Professional ")
	assert.True(t, ok)
	assert.Equal(t, Professional, id)

	_, ok = ParsePlanID("gold")
	assert.False(t, ok)
}
