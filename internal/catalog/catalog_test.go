package catalog

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rogers-f/contract-engine/internal/domain"
)

func testTemplates(kind domain.Kind, n int) []domain.MissionTemplate {
	out := make([]domain.MissionTemplate, n)
	for i := range out {
		out[i] = domain.MissionTemplate{
			TemplateID:      fmt.Sprintf("%s-%d", kind, i),
			Kind:            kind,
			Title:           fmt.Sprintf("%s run %d", kind, i),
			RiskTier:        domain.TierLow,
			BasePayout:      1000,
			DurationSeconds: 120,
		}
	}
	return out
}

func newCatalog(t *testing.T, templates []domain.MissionTemplate) *Catalog {
	t.Helper()
	c, err := New(templates, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	return c
}

func TestSample_WithoutReplacement(t *testing.T) {
	c := newCatalog(t, testTemplates(domain.KindTrade, 8))

	got := c.Sample(domain.KindTrade, 5)
	require.Len(t, got, 5)

	seen := map[string]bool{}
	for _, tpl := range got {
		assert.Equal(t, domain.KindTrade, tpl.Kind)
		assert.False(t, seen[tpl.TemplateID], "template %s drawn twice", tpl.TemplateID)
		seen[tpl.TemplateID] = true
	}
}

func TestSample_FewerThanCountReturnsAll(t *testing.T) {
	c := newCatalog(t, testTemplates(domain.KindEscort, 3))

	got := c.Sample(domain.KindEscort, 5)
	assert.Len(t, got, 3)
}

func TestSample_FiltersByKind(t *testing.T) {
	templates := append(testTemplates(domain.KindTrade, 4), testTemplates(domain.KindTaxi, 2)...)
	c := newCatalog(t, templates)

	got := c.Sample(domain.KindTaxi, 10)
	require.Len(t, got, 2)
	for _, tpl := range got {
		assert.Equal(t, domain.KindTaxi, tpl.Kind)
	}
	assert.Empty(t, c.Sample(domain.KindStrike, 4))
	assert.Empty(t, c.Sample(domain.KindTrade, 0))
}

func TestSample_RandomizesOrder(t *testing.T) {
	c := newCatalog(t, testTemplates(domain.KindTrade, 10))

	orders := map[string]bool{}
	for i := 0; i < 20; i++ {
		got := c.Sample(domain.KindTrade, 10)
		key := ""
		for _, tpl := range got {
			key += tpl.TemplateID + ","
		}
		orders[key] = true
	}
	assert.Greater(t, len(orders), 1, "expected more than one ordering across draws")
}

func TestSample_DoesNotMutateCatalog(t *testing.T) {
	templates := testTemplates(domain.KindTrade, 6)
	c := newCatalog(t, templates)

	_ = c.Sample(domain.KindTrade, 3)
	assert.Equal(t, 6, c.Count(domain.KindTrade))
	titles := make(map[string]string)
	for _, tpl := range c.Sample(domain.KindTrade, 6) {
		titles[tpl.TemplateID] = tpl.Title
	}
	assert.Len(t, titles, 6)
	assert.Equal(t, "trade run 0", titles["trade-0"])
}

func TestNew_RejectsInvalidTemplates(t *testing.T) {
	bad := testTemplates(domain.KindTrade, 1)
	bad[0].DurationSeconds = 0

	_, err := New(bad, rand.New(rand.NewPCG(1, 1)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrWorldInvalid))

	dup := append(testTemplates(domain.KindTrade, 1), testTemplates(domain.KindTrade, 1)...)
	_, err = New(dup, rand.New(rand.NewPCG(1, 1)))
	assert.True(t, errors.Is(err, domain.ErrWorldInvalid))

	unknown := testTemplates("mining", 1)
	_, err = New(unknown, rand.New(rand.NewPCG(1, 1)))
	assert.True(t, errors.Is(err, domain.ErrWorldInvalid))
}
