package services

import (
	"context"
	"testing"

	"portal_backend/internal/addresslookup"
	"portal_backend/internal/algorithms"
	"portal_backend/internal/repositories"
	"portal_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShippingSyncer_FetchKeepsSiteOrder(t *testing.T) {
	testutil.QuietLogger()
	lookup := testutil.NewStubLookup()
	lookup.SetAddress("Amazon CTZ", &addresslookup.Address{City: "Austin"})
	lookup.SetAddress("Amazon SEA1", &addresslookup.Address{City: "Seattle"})

	syncer := NewShippingSyncer(lookup, repositories.NewShippingRepository(), 3)
	sites := algorithms.NormalizeSites([]string{"DEN2", "SEA1", "CTZ"})

	res := syncer.Fetch(context.Background(), sites, "Ann", "Lee")
	require.NotNil(t, res)
	assert.Equal(t, "Amazon SEA1", res.Site.Label)
	assert.Equal(t, "Seattle", res.Address.City)

	calls := lookup.Calls()
	assert.Len(t, calls, 3, "опрашиваются все сайты")
	for _, c := range calls {
		assert.Equal(t, "Ann", c.FirstName)
		assert.Equal(t, "Lee", c.LastName)
	}
}

func TestShippingSyncer_NothingFound(t *testing.T) {
	testutil.QuietLogger()

	syncer := NewShippingSyncer(testutil.NewStubLookup(), repositories.NewShippingRepository(), 1)
	assert.Nil(t, syncer.Fetch(context.Background(), algorithms.NormalizeSites([]string{"CTZ"}), "", ""))

	disabled := NewShippingSyncer(testutil.NewDisabledLookup(), repositories.NewShippingRepository(), 1)
	assert.Nil(t, disabled.Fetch(context.Background(), algorithms.NormalizeSites([]string{"CTZ"}), "", ""))

	assert.Nil(t, syncer.Fetch(context.Background(), nil, "", ""))
}
