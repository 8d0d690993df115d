package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/iurnickita/stockroom/internal/handler/config"
	"github.com/iurnickita/stockroom/internal/logger"
	"github.com/iurnickita/stockroom/internal/model"
	"github.com/iurnickita/stockroom/internal/service"
)

func Serve(cfg config.Config, service service.Service, zaplog *zap.Logger) error {
	h := newHandler(service, zaplog)
	router := h.newRouter()

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
	}

	return srv.ListenAndServe()
}

type handler struct {
	service service.Service
	zaplog  *zap.Logger
}

func newHandler(service service.Service, zaplog *zap.Logger) *handler {
	return &handler{
		service: service,
		zaplog:  zaplog,
	}
}

func (h *handler) newRouter() chi.Router {
	router := chi.NewRouter()
	router.Use(logger.RequestLogMdlw(h.zaplog))
	router.Use(middleware.Compress(5))

	router.Route("/v1", func(router chi.Router) {
		router.Post("/init_catalog", h.InitCatalog)
		router.Post("/process_order", h.ProcessOrder)
		router.Post("/process_restock", h.ProcessRestock)
		router.Get("/ship_package/{shipmentID}", h.GetShipment)
		router.Get("/order/{orderID}", h.GetOrder)
	})

	return router
}

// Общий конверт ответа
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (h *handler) writeJSON(w http.ResponseWriter, statusCode int, resp APIResponse) {
	responseJSON, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(responseJSON)
}

func (h *handler) writeError(w http.ResponseWriter, statusCode int, message string, err error) {
	h.writeJSON(w, statusCode, APIResponse{
		Success: false,
		Message: message,
		Error:   err.Error(),
	})
}

type ProductJSON struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	MassG       int    `json:"mass_g"`
}

func (h *handler) InitCatalog(w http.ResponseWriter, r *http.Request) {
	var productsJSON []ProductJSON
	if err := json.NewDecoder(r.Body).Decode(&productsJSON); err != nil {
		h.writeError(w, http.StatusBadRequest, "failed to initialize catalog", err)
		return
	}

	products := make([]model.Product, 0, len(productsJSON))
	for _, product := range productsJSON {
		products = append(products, model.Product{
			ID:    product.ProductID,
			Name:  product.ProductName,
			MassG: product.MassG,
		})
	}

	if err := h.service.InitCatalog(r.Context(), products); err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateProduct):
			h.writeError(w, http.StatusConflict, "failed to initialize catalog", err)
		case errors.Is(err, service.ErrInsufficientData):
			h.writeError(w, http.StatusBadRequest, "failed to initialize catalog", err)
		default:
			h.writeError(w, http.StatusInternalServerError, "failed to initialize catalog", err)
		}
		return
	}

	message := "catalog initialized with " + strconv.Itoa(len(products)) + " products"
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: message,
		Data:    message,
	})
}

type OrderRequestJSON struct {
	OrderID   int64 `json:"order_id"`
	Requested []struct {
		ProductID int64 `json:"product_id"`
		Quantity  int64 `json:"quantity"`
	} `json:"requested"`
}

type OrderItemJSON struct {
	ProductID    int64  `json:"product_id"`
	RequestedQty int64  `json:"requested_qty"`
	FulfilledQty int64  `json:"fulfilled_qty"`
	Status       string `json:"status"`
}

type OrderResponseJSON struct {
	OrderID    int64           `json:"order_id"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	TotalItems int             `json:"total_items"`
	Items      []OrderItemJSON `json:"items"`
}

func orderResponse(order model.Order) OrderResponseJSON {
	resp := OrderResponseJSON{
		OrderID:    order.ID,
		Status:     order.Status,
		CreatedAt:  order.CreatedAt,
		TotalItems: len(order.Lines),
	}
	for _, line := range order.Lines {
		resp.Items = append(resp.Items, OrderItemJSON{
			ProductID:    line.ProductID,
			RequestedQty: line.RequestedQty,
			FulfilledQty: line.FulfilledQty,
			Status:       line.Status,
		})
	}
	return resp
}

func (h *handler) ProcessOrder(w http.ResponseWriter, r *http.Request) {
	var orderJSON OrderRequestJSON
	if err := json.NewDecoder(r.Body).Decode(&orderJSON); err != nil {
		h.writeError(w, http.StatusBadRequest, "failed to process order", err)
		return
	}

	requested := make([]service.RequestLine, 0, len(orderJSON.Requested))
	for _, item := range orderJSON.Requested {
		requested = append(requested, service.RequestLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.service.ProcessOrder(r.Context(), orderJSON.OrderID, requested)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound),
			errors.Is(err, service.ErrInsufficientData),
			errors.Is(err, service.ErrOversizedUnit):
			h.writeError(w, http.StatusBadRequest, "failed to process order", err)
		case errors.Is(err, service.ErrDuplicateOrder):
			h.writeError(w, http.StatusConflict, "failed to process order", err)
		default:
			h.writeError(w, http.StatusInternalServerError, "failed to process order", err)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "order processed",
		Data:    orderResponse(order),
	})
}

type RestockItemJSON struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type RestockResponseJSON struct {
	ProductsRestocked int `json:"products_restocked"`
	ShipmentsCreated  int `json:"shipments_created"`
	OrdersUpdated     int `json:"orders_updated"`
}

func (h *handler) ProcessRestock(w http.ResponseWriter, r *http.Request) {
	var itemsJSON []RestockItemJSON
	if err := json.NewDecoder(r.Body).Decode(&itemsJSON); err != nil {
		h.writeError(w, http.StatusBadRequest, "failed to process restock", err)
		return
	}

	items := make([]service.RestockItem, 0, len(itemsJSON))
	for _, item := range itemsJSON {
		items = append(items, service.RestockItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	result, err := h.service.ProcessRestock(r.Context(), items)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound),
			errors.Is(err, service.ErrInsufficientData),
			errors.Is(err, service.ErrOversizedUnit):
			h.writeError(w, http.StatusBadRequest, "failed to process restock", err)
		default:
			h.writeError(w, http.StatusInternalServerError, "failed to process restock", err)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "restock processed",
		Data: RestockResponseJSON{
			ProductsRestocked: result.ProductsRestocked,
			ShipmentsCreated:  result.ShipmentsCreated,
			OrdersUpdated:     result.OrdersUpdated,
		},
	})
}

type ShippedItemJSON struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type ShipmentResponseJSON struct {
	OrderID int64             `json:"order_id"`
	Shipped []ShippedItemJSON `json:"shipped"`
}

func (h *handler) GetShipment(w http.ResponseWriter, r *http.Request) {
	shipmentID := chi.URLParam(r, "shipmentID")

	shipment, err := h.service.GetShipment(r.Context(), shipmentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShipmentNotFound):
			h.writeError(w, http.StatusNotFound, "failed to retrieve shipment", err)
		default:
			h.writeError(w, http.StatusInternalServerError, "failed to retrieve shipment", err)
		}
		return
	}

	resp := ShipmentResponseJSON{OrderID: shipment.OrderID}
	for _, line := range shipment.Lines {
		resp.Shipped = append(resp.Shipped, ShippedItemJSON{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "shipment retrieved",
		Data:    resp,
	})
}

func (h *handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "failed to retrieve order", err)
		return
	}

	order, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			h.writeError(w, http.StatusNotFound, "failed to retrieve order", err)
		default:
			h.writeError(w, http.StatusInternalServerError, "failed to retrieve order", err)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "order retrieved",
		Data:    orderResponse(order),
	})
}
