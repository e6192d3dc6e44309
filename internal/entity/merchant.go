package entity

import (
	"database/sql"
	"time"
)

// Merchant represents a row of the merchants table. Credential exchange
// and storage live upstream; the metrics service only needs the
// connection flags to pick providers and phrase the empty-state insight.
type Merchant struct {
	ID               string         `db:"id"`
	ShopDomain       sql.NullString `db:"shop_domain"`
	ShopifyConnected bool           `db:"shopify_connected"`
	GA4Connected     bool           `db:"ga4_connected"`
	HubSpotConnected bool           `db:"hubspot_connected"`
	CreatedAt        time.Time      `db:"created_at"`
}

// Connections maps the merchant's integration flags onto the snapshot's
// connection status block.
func (m Merchant) Connections() ConnectionStatus {
	return ConnectionStatus{
		Shopify: m.ShopifyConnected,
		GA4:     m.GA4Connected,
		HubSpot: m.HubSpotConnected,
	}
}
