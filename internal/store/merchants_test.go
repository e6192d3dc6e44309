package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerchants_ListActive(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ms := db.Merchants()

	ctx := context.Background()

	insertTestMerchant(t, db, "m1")
	_, err := db.db.ExecContext(ctx,
		"INSERT INTO merchants (id, ga4_connected) VALUES ('m2', 1)")
	require.NoError(t, err)
	_, err = db.db.ExecContext(ctx,
		"INSERT INTO merchants (id) VALUES ('m3')")
	require.NoError(t, err)

	merchants, err := ms.ListActive(ctx)
	assert.NoError(t, err)
	require.Len(t, merchants, 2)

	m, err := ms.GetMerchant(ctx, "m1")
	assert.NoError(t, err)
	assert.True(t, m.ShopifyConnected)
	assert.Equal(t, "m1.myshopify.com", m.ShopDomain.String)

	conns := m.Connections()
	assert.True(t, conns.Shopify)
	assert.False(t, conns.GA4)

	_, err = ms.GetMerchant(ctx, "nope")
	assert.ErrorIs(t, err, ErrMerchantNotFound)
}
