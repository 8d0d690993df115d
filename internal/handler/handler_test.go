package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iurnickita/stockroom/internal/service"
	serviceConfig "github.com/iurnickita/stockroom/internal/service/config"
	"github.com/iurnickita/stockroom/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv, err := service.NewService(serviceConfig.Config{}, store.NewMemStore(), zap.NewNop())
	require.NoError(t, err)

	h := newHandler(srv, zap.NewNop())
	ts := httptest.NewServer(h.newRouter())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body string) (*http.Response, APIResponse) {
	t.Helper()

	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var apiResp APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiResp))
	return resp, apiResp
}

func getJSON(t *testing.T, url string) (*http.Response, APIResponse) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var apiResp APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiResp))
	return resp, apiResp
}

func TestInitCatalogAndProcessOrder(t *testing.T) {
	ts := newTestServer(t)

	resp, apiResp := postJSON(t, ts.URL+"/v1/init_catalog",
		`[{"product_id": 1, "product_name": "RBC A+ Adult", "mass_g": 700}]`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, apiResp.Success)

	resp, apiResp = postJSON(t, ts.URL+"/v1/process_restock",
		`[{"product_id": 1, "quantity": 3}]`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, apiResp.Success)

	resp, apiResp = postJSON(t, ts.URL+"/v1/process_order",
		`{"order_id": 123, "requested": [{"product_id": 1, "quantity": 3}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, apiResp.Success)

	data, err := json.Marshal(apiResp.Data)
	require.NoError(t, err)
	var orderResp OrderResponseJSON
	require.NoError(t, json.Unmarshal(data, &orderResp))
	require.Equal(t, int64(123), orderResp.OrderID)
	require.Equal(t, "FULFILLED", orderResp.Status)
	require.Len(t, orderResp.Items, 1)
	require.Equal(t, int64(3), orderResp.Items[0].FulfilledQty)
}

func TestProcessOrderUnknownProduct(t *testing.T) {
	ts := newTestServer(t)

	resp, apiResp := postJSON(t, ts.URL+"/v1/process_order",
		`{"order_id": 1, "requested": [{"product_id": 99, "quantity": 1}]}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.False(t, apiResp.Success)
	require.NotEmpty(t, apiResp.Error)
}

func TestInitCatalogDuplicateProduct(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := postJSON(t, ts.URL+"/v1/init_catalog",
		`[{"product_id": 1, "product_name": "RBC A+ Adult", "mass_g": 700}]`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, apiResp := postJSON(t, ts.URL+"/v1/init_catalog",
		`[{"product_id": 1, "product_name": "RBC A+ Adult", "mass_g": 700}]`)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.False(t, apiResp.Success)
}

func TestGetShipmentNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp, apiResp := getJSON(t, ts.URL+"/v1/ship_package/missing")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.False(t, apiResp.Success)
}

func TestGetShipmentRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	postJSON(t, ts.URL+"/v1/init_catalog",
		`[{"product_id": 2, "product_name": "RBC B+ Adult", "mass_g": 700}]`)
	postJSON(t, ts.URL+"/v1/process_restock", `[{"product_id": 2, "quantity": 2}]`)
	postJSON(t, ts.URL+"/v1/process_order",
		`{"order_id": 5, "requested": [{"product_id": 2, "quantity": 2}]}`)

	_, apiResp := getJSON(t, ts.URL+"/v1/order/5")
	data, err := json.Marshal(apiResp.Data)
	require.NoError(t, err)
	var orderResp OrderResponseJSON
	require.NoError(t, json.Unmarshal(data, &orderResp))
	require.Equal(t, "FULFILLED", orderResp.Status)
}

func TestProcessRestockBadBody(t *testing.T) {
	ts := newTestServer(t)

	resp, apiResp := postJSON(t, ts.URL+"/v1/process_restock", `not json`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.False(t, apiResp.Success)
}
