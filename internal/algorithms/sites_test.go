package algorithms

import (
	"testing"

	"portal_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CTZ", "CTZ"},
		{"Amazon CTZ", "CTZ"},
		{"amazon ctz", "CTZ"},
		{"den2", "DEN2"},
		{"  AMAZON   DEN2 ", "DEN2"},
		{"amazonRYT", "RYT"},
		{"Amazonryt", "RYT"},
		{"Amazon-OLD1", "OLD1"},
		{"Amazon", ""},
		{"   ", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SiteCode(tt.in))
		})
	}
}

func TestNormalizeSiteLabels(t *testing.T) {
	t.Run("variants of one site collapse to the first seen", func(t *testing.T) {
		got := NormalizeSiteLabels([]string{"CTZ", "Amazon CTZ", "amazon ctz"})
		assert.Equal(t, []string{"Amazon CTZ"}, got)
	})

	t.Run("lowercase codes get the canonical label", func(t *testing.T) {
		assert.Equal(t, []string{"Amazon DEN2"}, NormalizeSiteLabels([]string{"den2"}))
		assert.Equal(t, []string{"Amazon CTZ"}, NormalizeSiteLabels([]string{"amazon ctz", "CTZ"}))
	})

	t.Run("slug and label agree for every spelling", func(t *testing.T) {
		for _, in := range []string{"den2", "DEN2", "Amazon Den2", "amazonden2"} {
			got := NormalizeSites([]string{in})
			require.Len(t, got, 1, in)
			assert.Equal(t, DesiredSite{Slug: "DEN2", Label: "Amazon DEN2"}, got[0], in)
		}
	})

	t.Run("order of first appearance is kept", func(t *testing.T) {
		got := NormalizeSiteLabels([]string{"RYT", "Amazon DEN2", "ryt", "", "Amazon", "OLD1"})
		assert.Equal(t, []string{"Amazon RYT", "Amazon DEN2", "Amazon OLD1"}, got)
	})

	t.Run("empty input gives empty non-nil slice", func(t *testing.T) {
		got := NormalizeSiteLabels(nil)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestNormalizeAccounts(t *testing.T) {
	got := NormalizeAccounts([]string{" acct-1", "acct-2", "", "acct-1 "})
	assert.Equal(t, []string{"acct-1", "acct-2"}, got)

	assert.NotNil(t, NormalizeAccounts(nil))
}

func TestPlanSiteSync(t *testing.T) {
	existing := []models.UserSite{
		{ID: 1, UserID: 7, SiteSlug: "DEN2", Label: "Amazon DEN2", IsDefault: false},
		{ID: 2, UserID: 7, SiteSlug: "OLD1", Label: "Amazon OLD1", IsDefault: true},
	}
	desired := NormalizeSites([]string{"Amazon DEN2", "RYT"})

	plan := PlanSiteSync(existing, desired)

	assert.Equal(t, []uint{2}, plan.Delete)
	require.Len(t, plan.Update, 1)
	assert.Equal(t, SiteUpdate{ID: 1, Slug: "DEN2", Label: "Amazon DEN2", IsDefault: true}, plan.Update[0])
	require.Len(t, plan.Insert, 1)
	assert.Equal(t, SiteInsert{Slug: "RYT", Label: "Amazon RYT", IsDefault: false}, plan.Insert[0])
	assert.Equal(t, "DEN2", plan.DefaultSlug)
}

func TestPlanSiteSync_MatchesCaseInsensitively(t *testing.T) {
	existing := []models.UserSite{{ID: 4, SiteSlug: "ctz", Label: "Amazon ctz"}}

	plan := PlanSiteSync(existing, NormalizeSites([]string{"Amazon CTZ"}))

	assert.Empty(t, plan.Delete)
	assert.Empty(t, plan.Insert)
	require.Len(t, plan.Update, 1)
	assert.Equal(t, uint(4), plan.Update[0].ID)
	assert.Equal(t, "Amazon CTZ", plan.Update[0].Label)
}

func TestPlanSiteSync_DuplicateRowsKeepOldest(t *testing.T) {
	existing := []models.UserSite{
		{ID: 9, SiteSlug: "ctz"},
		{ID: 3, SiteSlug: "CTZ"},
	}

	plan := PlanSiteSync(existing, NormalizeSites([]string{"CTZ"}))

	assert.Equal(t, []uint{9}, plan.Delete)
	require.Len(t, plan.Update, 1)
	assert.Equal(t, uint(3), plan.Update[0].ID)
}

func TestPlanSiteSync_EmptyDesiredDeletesEverything(t *testing.T) {
	existing := []models.UserSite{{ID: 1, SiteSlug: "A"}, {ID: 2, SiteSlug: "B", IsDefault: true}}

	plan := PlanSiteSync(existing, nil)

	assert.Equal(t, []uint{1, 2}, plan.Delete)
	assert.Empty(t, plan.Update)
	assert.Empty(t, plan.Insert)
	assert.Empty(t, plan.DefaultSlug)
}

func TestDefaultSite(t *testing.T) {
	assert.Nil(t, DefaultSite(nil))

	sites := []models.UserSite{{ID: 5, SiteSlug: "B"}, {ID: 2, SiteSlug: "A"}}
	assert.Equal(t, uint(2), DefaultSite(sites).ID)

	sites[0].IsDefault = true
	assert.Equal(t, uint(5), DefaultSite(sites).ID)
}
