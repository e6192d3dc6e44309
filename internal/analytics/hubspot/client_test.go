package hubspot

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Disabled(t *testing.T) {
	c := New(&Config{Enabled: false})
	assert.False(t, c.Enabled())

	snap, err := c.GetEngagementSnapshot(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestClient_GetEngagementSnapshot(t *testing.T) {
	active := time.Now().Add(-24 * time.Hour).Format(time.RFC3339)
	stale := time.Now().Add(-90 * 24 * time.Hour).Format(time.RFC3339)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm/v3/objects/contacts", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"total": 3,
			"results": [
				{"properties": {"email": "a@example.com", "hs_lastactivitydate": %q}},
				{"properties": {"email": "b@example.com", "hs_lastactivitydate": %q}},
				{"properties": {"email": "", "lastmodifieddate": %q}}
			]
		}`, active, stale, stale)
	}))
	defer srv.Close()

	c := New(&Config{AccessToken: "test-token", BaseURL: srv.URL, Enabled: true})
	snap, err := c.GetEngagementSnapshot(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.Equal(t, 3, snap.TotalContacts)
	assert.Equal(t, 2, snap.AtRiskContacts)
	assert.Equal(t, defaultOpenRate, snap.OpenRate)
	assert.Equal(t, defaultClickRate, snap.ClickRate)
	require.Len(t, snap.SampleContacts, 2)
	assert.Equal(t, "b@example.com", snap.SampleContacts[0].Email)
	assert.Equal(t, "unknown", snap.SampleContacts[1].Email)
}

func TestClient_GetEngagementSnapshot_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":"error"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(&Config{AccessToken: "bad", BaseURL: srv.URL, Enabled: true})
	_, err := c.GetEngagementSnapshot(context.Background())
	require.Error(t, err)
}

func TestParseActivityDate(t *testing.T) {
	ts := "2026-01-15T10:00:00Z"
	got := parseActivityDate(ts, "")
	assert.Equal(t, 2026, got.Year())

	got = parseActivityDate("not-a-date", ts)
	assert.Equal(t, 2026, got.Year())

	assert.True(t, parseActivityDate("", "").IsZero())
}
