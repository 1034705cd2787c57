// README: Customer-facing order endpoints: create, get, history, cancel.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"swiftdrop/internal/modules/order"
	"swiftdrop/internal/types"
)

type OrderHandler struct {
	order *order.Service
}

func NewOrderHandler(svc *order.Service) *OrderHandler {
	return &OrderHandler{order: svc}
}

type packageReq struct {
	Size        string  `json:"size"`
	WeightKg    float64 `json:"weight_kg"`
	Fragile     bool    `json:"fragile"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
}

type createOrderReq struct {
	PickupAddress string     `json:"pickup_address"`
	DropAddress   string     `json:"drop_address"`
	Package       packageReq `json:"package"`
	VehicleType   string     `json:"vehicle_type"`
	PaymentMethod string     `json:"payment_method"`
	DistanceKm    float64    `json:"distance_km"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	actor := callerActor(c)
	id, err := h.order.Create(c.Request.Context(), order.CreateCommand{
		Actor:         actor,
		CustomerID:    actor.ID,
		PickupAddress: req.PickupAddress,
		DropAddress:   req.DropAddress,
		Package: order.PackageDetails{
			Size:        order.PackageSize(req.Package.Size),
			WeightKg:    req.Package.WeightKg,
			Fragile:     req.Package.Fragile,
			Description: req.Package.Description,
			ImageURL:    req.Package.ImageURL,
		},
		VehicleType:   order.VehicleType(req.VehicleType),
		PaymentMethod: order.PaymentMethod(req.PaymentMethod),
		DistanceKm:    req.DistanceKm,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	o, err := h.order.Get(c.Request.Context(), id, actor)
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, toOrderResponse(o, actor))
}

func (h *OrderHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing order id")
		return
	}
	actor := callerActor(c)
	o, err := h.order.Get(c.Request.Context(), types.ID(id), actor)
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toOrderResponse(o, actor))
}

// List serves the history view for whoever is calling: customers get their own
// orders, drivers their assigned ones, admins everything.
func (h *OrderHandler) List(c *gin.Context) {
	actor := callerActor(c)
	orders, err := h.order.ListForActor(c.Request.Context(), actor, 50)
	if err != nil {
		writeOrderError(c, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i], actor))
	}
	writeJSON(c, http.StatusOK, gin.H{"orders": out})
}

type cancelReq struct {
	Reason string `json:"reason"`
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing order id")
		return
	}
	var req cancelReq
	_ = c.ShouldBindJSON(&req)
	err := h.order.Cancel(c.Request.Context(), order.CancelCommand{
		Actor:   callerActor(c),
		OrderID: types.ID(id),
		Reason:  req.Reason,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": order.StatusCancelled})
}

type orderResponse struct {
	ID            string     `json:"id"`
	Status        string     `json:"status"`
	CustomerID    string     `json:"customer_id"`
	DriverID      *string    `json:"driver_id,omitempty"`
	PickupAddress string     `json:"pickup_address"`
	DropAddress   string     `json:"drop_address"`
	Package       packageReq `json:"package"`
	VehicleType   string     `json:"vehicle_type"`
	Fare          int64      `json:"fare"`
	Currency      string     `json:"currency"`
	DistanceKm    float64    `json:"distance_km"`
	PaymentMethod string     `json:"payment_method"`
	// DeliveryOTP is shown to the customer only; the driver has to collect it
	// at the door.
	DeliveryOTP      string     `json:"delivery_otp,omitempty"`
	PickupPhotoURL   *string    `json:"pickup_photo_url,omitempty"`
	DeliveryPhotoURL *string    `json:"delivery_photo_url,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	AcceptedAt       *time.Time `json:"accepted_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

func toOrderResponse(o *order.Order, actor order.Actor) orderResponse {
	resp := orderResponse{
		ID:            string(o.ID),
		Status:        string(o.Status),
		CustomerID:    string(o.CustomerID),
		PickupAddress: o.PickupAddress,
		DropAddress:   o.DropAddress,
		Package: packageReq{
			Size:        string(o.Package.Size),
			WeightKg:    o.Package.WeightKg,
			Fragile:     o.Package.Fragile,
			Description: o.Package.Description,
			ImageURL:    o.Package.ImageURL,
		},
		VehicleType:      string(o.VehicleType),
		Fare:             o.Fare.Amount,
		Currency:         o.Fare.Currency,
		DistanceKm:       o.DistanceKm,
		PaymentMethod:    string(o.PaymentMethod),
		PickupPhotoURL:   o.PickupPhotoURL,
		DeliveryPhotoURL: o.DeliveryPhotoURL,
		CreatedAt:        o.CreatedAt,
		AcceptedAt:       o.AcceptedAt,
		CompletedAt:      o.CompletedAt,
	}
	if o.DriverID != nil {
		d := string(*o.DriverID)
		resp.DriverID = &d
	}
	if actor.Type == order.ActorCustomer || actor.Type == order.ActorAdmin {
		resp.DeliveryOTP = o.DeliveryOTP
	}
	return resp
}
