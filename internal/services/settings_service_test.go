package services

import (
	"context"
	"testing"

	"portal_backend/internal/services/dto"
	"portal_backend/internal/testutil"
	"portal_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestSettings_UpdateOnlyGivenFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, testutil.UniqueEmail("settings"), true)

	resp, err := f.settings.Update(ctx, f.db, user.ID, &dto.UpdateSettingsRequest{
		JobTitle:      strPtr(" Director "),
		OtherAccounts: []string{"b", "a", "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Test", resp.FirstName)
	assert.Equal(t, "Director", resp.JobTitle)
	assert.Equal(t, []string{"b", "a"}, resp.OtherAccounts)
	assert.Nil(t, resp.AmazonSite)

	resp, err = f.settings.Update(ctx, f.db, user.ID, &dto.UpdateSettingsRequest{AmazonSite: strPtr("CTZ")})
	require.NoError(t, err)
	require.NotNil(t, resp.AmazonSite)
	assert.Equal(t, "Amazon CTZ", *resp.AmazonSite)
	assert.Equal(t, "Director", resp.JobTitle)
}

func TestSettings_Shipping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, testutil.UniqueEmail("shipping"), true)

	_, err := f.settings.GetShipping(ctx, f.db, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrShippingNotFound)

	info, err := f.settings.UpdateShipping(ctx, f.db, user.ID, &dto.ShippingRequest{
		Address1: "1 Main St",
		City:     "Austin",
		ShipTo:   "Dock 4",
	})
	require.NoError(t, err)
	assert.Equal(t, "Austin", info.City)

	info, err = f.settings.UpdateShipping(ctx, f.db, user.ID, &dto.ShippingRequest{
		Address1: "2 Side St",
		City:     "Dallas",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dallas", info.City)
	assert.Empty(t, info.ShipTo)

	var count int64
	f.db.Table("shipping_information").Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count, "одна строка адреса на аккаунт")
}
