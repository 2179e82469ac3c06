package contentapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vogiaan1904/repairhub-display/internal/models"
)

func TestClient_FetchContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/locations/loc-1/content", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.ContentBundle{
			LocationID: "loc-1",
			Slides:     []models.Slide{{ID: "sl-1", Title: "Trade-In Bonus"}},
			Branding:   models.Branding{ShopName: "TechFix"},
		})
	}))
	defer srv.Close()

	bundle, err := NewClient(srv.URL).FetchContent(context.Background(), "loc-1")
	require.NoError(t, err)
	assert.Equal(t, "loc-1", bundle.LocationID)
	require.Len(t, bundle.Slides, 1)
	assert.Equal(t, "TechFix", bundle.Branding.ShopName)
}

func TestClient_FetchContentServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchContent(context.Background(), "loc-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_FetchContentUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewClient(srv.URL).FetchContent(context.Background(), "loc-1")
	require.Error(t, err)
}
