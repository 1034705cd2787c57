// README: Driver-facing endpoints: availability, arrival, proofs, pickup, transit, completion.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"swiftdrop/internal/modules/dispatch"
	"swiftdrop/internal/modules/order"
	"swiftdrop/internal/modules/proof"
	"swiftdrop/internal/types"
)

type DriverHandler struct {
	order    *order.Service
	pool     *dispatch.Pool
	uploader proof.Uploader
}

func NewDriverHandler(orderSvc *order.Service, pool *dispatch.Pool, uploader proof.Uploader) *DriverHandler {
	return &DriverHandler{order: orderSvc, pool: pool, uploader: uploader}
}

type availabilityReq struct {
	Online bool `json:"online"`
}

func (h *DriverHandler) SetAvailability(c *gin.Context) {
	actor := callerActor(c)
	if actor.Type != order.ActorDriver {
		writeOrderError(c, order.ErrUnauthorized)
		return
	}
	var req availabilityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.pool.SetAvailability(c.Request.Context(), actor.ID, req.Online); err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"online": req.Online})
}

func (h *DriverHandler) Arrive(c *gin.Context) {
	err := h.order.Arrive(c.Request.Context(), order.ArriveCommand{
		Actor:   callerActor(c),
		OrderID: types.ID(c.Param("id")),
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": order.StatusDriverArrived})
}

type uploadProofReq struct {
	Kind string `json:"kind"`
}

// UploadProof runs the capture collaborator and records the resulting URL on
// the order in one step.
func (h *DriverHandler) UploadProof(c *gin.Context) {
	var req uploadProofReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	kind := order.ProofKind(req.Kind)
	if kind != order.ProofPickup && kind != order.ProofDelivery {
		writeError(c, http.StatusBadRequest, "kind must be pickup or delivery")
		return
	}
	orderID := types.ID(c.Param("id"))
	url, err := h.uploader.Upload(c.Request.Context(), orderID, kind)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "upload failed")
		return
	}
	err = h.order.AttachProof(c.Request.Context(), order.AttachProofCommand{
		Actor:    callerActor(c),
		OrderID:  orderID,
		Kind:     kind,
		PhotoURL: url,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"photo_url": url})
}

func (h *DriverHandler) ConfirmPickup(c *gin.Context) {
	err := h.order.ConfirmPickup(c.Request.Context(), order.ConfirmPickupCommand{
		Actor:   callerActor(c),
		OrderID: types.ID(c.Param("id")),
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": order.StatusPickedUp})
}

func (h *DriverHandler) StartTransit(c *gin.Context) {
	err := h.order.StartTransit(c.Request.Context(), order.StartTransitCommand{
		Actor:   callerActor(c),
		OrderID: types.ID(c.Param("id")),
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": order.StatusInTransit})
}

type completeReq struct {
	OTP string `json:"otp"`
}

func (h *DriverHandler) Complete(c *gin.Context) {
	var req completeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.order.Complete(c.Request.Context(), order.CompleteCommand{
		Actor:   callerActor(c),
		OrderID: types.ID(c.Param("id")),
		OTP:     req.OTP,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": order.StatusCompleted})
}
