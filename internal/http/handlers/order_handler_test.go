// README: Handler tests over an in-memory engine; exercises the error-to-status mapping.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"swiftdrop/internal/http/middleware"
	"swiftdrop/internal/modules/dispatch"
	"swiftdrop/internal/modules/identity"
	"swiftdrop/internal/modules/order"
	"swiftdrop/internal/modules/pricing"
	"swiftdrop/internal/modules/proof"
	"swiftdrop/internal/types"
)

type stubVerifier map[string]identity.Claims

func (v stubVerifier) Verify(_ context.Context, token string) (*identity.Claims, error) {
	c, ok := v[token]
	if !ok {
		return nil, identity.ErrInvalidToken
	}
	return &c, nil
}

var testSessions = stubVerifier{
	"tok-customer": {UID: "cust-1", Role: "customer"},
	"tok-driver":   {UID: "drv-1", Role: "driver"},
	"tok-admin":    {UID: "admin-1", Role: "admin"},
}

type testEnv struct {
	router *gin.Engine
	order  *order.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	orderSvc := order.NewService(order.NewMemStore(), pricing.NewService(nil))
	mr := miniredis.RunT(t)
	pool := dispatch.NewPool(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	uploader := proof.NewLocalUploader("https://cdn.test")

	r := gin.New()
	authed := r.Group("/api", middleware.Auth(testSessions))

	oh := NewOrderHandler(orderSvc)
	authed.POST("/orders", oh.Create)
	authed.GET("/orders", oh.List)
	authed.GET("/orders/:id", oh.Get)
	authed.POST("/orders/:id/cancel", oh.Cancel)

	dh := NewDriverHandler(orderSvc, pool, uploader)
	authed.PUT("/drivers/availability", dh.SetAvailability)
	authed.POST("/orders/:id/arrive", dh.Arrive)
	authed.POST("/orders/:id/proofs", dh.UploadProof)
	authed.POST("/orders/:id/pickup", dh.ConfirmPickup)
	authed.POST("/orders/:id/transit", dh.StartTransit)
	authed.POST("/orders/:id/complete", dh.Complete)

	return &testEnv{router: r, order: orderSvc}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

var createBody = gin.H{
	"pickup_address": "Central Station",
	"drop_address":   "Tech Park, Gate 4",
	"package":        gin.H{"size": "medium", "weight_kg": 5},
	"vehicle_type":   "auto",
	"payment_method": "cash",
	"distance_km":    8.5,
}

func (e *testEnv) createOrder(t *testing.T) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/orders", "tok-customer", createBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("create order: status %d body %s", w.Code, w.Body.String())
	}
	var resp orderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.ID
}

func (e *testEnv) assignDriver(t *testing.T, id string) {
	t.Helper()
	err := e.order.Assign(context.Background(), order.AssignCommand{
		Actor:    order.Actor{Type: order.ActorSystem},
		OrderID:  types.ID(id),
		DriverID: "drv-1",
	})
	if err != nil {
		t.Fatalf("assign driver: %v", err)
	}
}

func TestCreateOrderEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/orders", "tok-customer", createBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp orderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "searching" {
		t.Errorf("expected searching, got %s", resp.Status)
	}
	if resp.Fare != 105 || resp.Currency != "INR" {
		t.Errorf("expected fare 105 INR, got %d %s", resp.Fare, resp.Currency)
	}
	// The customer sees the delivery OTP.
	if len(resp.DeliveryOTP) != 4 {
		t.Errorf("expected otp in customer view, got %q", resp.DeliveryOTP)
	}

	// A second create while the first is active is a conflict.
	w = env.do(t, http.MethodPost, "/api/orders", "tok-customer", createBody)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for second active order, got %d", w.Code)
	}
}

func TestOrderVisibilityPerRole(t *testing.T) {
	env := newTestEnv(t)
	id := env.createOrder(t)
	env.assignDriver(t, id)

	// Driver view must not leak the OTP.
	w := env.do(t, http.MethodGet, "/api/orders/"+id, "tok-driver", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("driver get: %d", w.Code)
	}
	var resp orderResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.DeliveryOTP != "" {
		t.Error("otp leaked to driver view")
	}

	// Admin view includes it.
	w = env.do(t, http.MethodGet, "/api/orders/"+id, "tok-admin", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.DeliveryOTP) != 4 {
		t.Error("expected otp in admin view")
	}
}

func TestEndpointAuthAndRoles(t *testing.T) {
	env := newTestEnv(t)
	id := env.createOrder(t)
	env.assignDriver(t, id)

	// No token at all.
	if w := env.do(t, http.MethodGet, "/api/orders/"+id, "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	// A customer cannot drive the delivery forward.
	if w := env.do(t, http.MethodPost, "/api/orders/"+id+"/arrive", "tok-customer", nil); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer arrive, got %d", w.Code)
	}
	// A customer cannot flip driver availability.
	body := gin.H{"online": true}
	if w := env.do(t, http.MethodPut, "/api/drivers/availability", "tok-customer", body); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer availability, got %d", w.Code)
	}
	if w := env.do(t, http.MethodPut, "/api/drivers/availability", "tok-driver", body); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for driver availability, got %d", w.Code)
	}
}

func TestDriverFlowEndpoints(t *testing.T) {
	env := newTestEnv(t)
	id := env.createOrder(t)
	env.assignDriver(t, id)

	steps := []struct {
		path string
		body any
		want int
	}{
		{"/arrive", nil, http.StatusOK},
		// Pickup without proof is a precondition failure, not a state error.
		{"/pickup", nil, http.StatusBadRequest},
		{"/proofs", gin.H{"kind": "pickup"}, http.StatusOK},
		{"/pickup", nil, http.StatusOK},
		{"/transit", nil, http.StatusOK},
		// Completion needs delivery proof first, then the right OTP.
		{"/complete", gin.H{"otp": "0000"}, http.StatusBadRequest},
		{"/proofs", gin.H{"kind": "delivery"}, http.StatusOK},
	}
	for _, s := range steps {
		w := env.do(t, http.MethodPost, "/api/orders/"+id+s.path, "tok-driver", s.body)
		if w.Code != s.want {
			t.Fatalf("%s: expected %d, got %d: %s", s.path, s.want, w.Code, w.Body.String())
		}
	}

	o, err := env.order.Get(context.Background(), types.ID(id), order.Actor{Type: order.ActorSystem})
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	wrong := "0000"
	if wrong == o.DeliveryOTP {
		wrong = "9999"
	}
	if w := env.do(t, http.MethodPost, "/api/orders/"+id+"/complete", "tok-driver", gin.H{"otp": wrong}); w.Code != http.StatusBadRequest {
		t.Fatalf("wrong otp: expected 400, got %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/api/orders/"+id+"/complete", "tok-driver", gin.H{"otp": o.DeliveryOTP}); w.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Terminal orders answer 409 to further transitions.
	if w := env.do(t, http.MethodPost, "/api/orders/"+id+"/cancel", "tok-customer", nil); w.Code != http.StatusConflict {
		t.Fatalf("cancel after complete: expected 409, got %d", w.Code)
	}
}

func TestCancelEndpoint(t *testing.T) {
	env := newTestEnv(t)
	id := env.createOrder(t)

	w := env.do(t, http.MethodPost, "/api/orders/"+id+"/cancel", "tok-customer", gin.H{"reason": "changed my mind"})
	if w.Code != http.StatusOK {
		t.Fatalf("cancel: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/orders/"+id, "tok-customer", nil)
	var resp orderResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != "cancelled" {
		t.Fatalf("expected cancelled, got %s", resp.Status)
	}
}

func TestGetUnknownOrderEndpoint(t *testing.T) {
	env := newTestEnv(t)
	if w := env.do(t, http.MethodGet, "/api/orders/nope", "tok-admin", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
