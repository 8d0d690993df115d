package catalogclient

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetCatalog(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/catalog", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"product_id": 0, "product_name": "RBC A+ Adult", "mass_g": 700},
			{"product_id": 1, "product_name": "RBC B+ Adult", "mass_g": 700}]`))
	}))
	defer ts.Close()

	client := NewCatalogClient(ts.URL)
	products, err := client.GetCatalog()
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "RBC A+ Adult", products[0].Name)
	require.Equal(t, 700, products[0].MassG)
}

func TestGetCatalogBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewCatalogClient(ts.URL)
	_, err := client.GetCatalog()
	require.Error(t, err)
}
