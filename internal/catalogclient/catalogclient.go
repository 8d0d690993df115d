package catalogclient

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/iurnickita/stockroom/internal/model"
)

// JSON ответ сервиса каталога
type catalogProduct struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	MassG       int    `json:"mass_g"`
}

type CatalogClient interface {
	GetCatalog() ([]model.Product, error)
}

type catalogClient struct {
	serviceAddr string
}

func NewCatalogClient(serviceAddr string) CatalogClient {
	return catalogClient{serviceAddr: serviceAddr}
}

func (client catalogClient) GetCatalog() ([]model.Product, error) {
	path := "/v1/catalog"

	setreq := resty.New().R()
	setreq.Method = http.MethodGet
	setreq.URL = client.serviceAddr + path
	setresp, err := setreq.Send()
	if err != nil {
		return nil, err
	}

	switch setresp.StatusCode() {
	case http.StatusOK:
		var catalog []catalogProduct
		if err := json.Unmarshal(setresp.Body(), &catalog); err != nil {
			return nil, err
		}
		products := make([]model.Product, 0, len(catalog))
		for _, product := range catalog {
			products = append(products, model.Product{
				ID:    product.ProductID,
				Name:  product.ProductName,
				MassG: product.MassG,
			})
		}
		return products, nil
	default:
		return nil, fmt.Errorf("catalog request status: %d", setresp.StatusCode())
	}
}
