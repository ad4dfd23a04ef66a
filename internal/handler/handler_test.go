package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"beautypos/internal/authgate"
	"beautypos/internal/dto"
	"beautypos/internal/handler"
	"beautypos/internal/middleware"
	"beautypos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// ── Service fakes ─────────────────────────────────────────────────────────────

// fakeCart answers every call with err, or an empty cart when err is nil.
// Methods not overridden panic through the nil embedded interface.
type fakeCart struct {
	service.CartService
	err    error
	userID uuid.UUID
}

func (f *fakeCart) reply(userID uuid.UUID) (*dto.CartResponse, error) {
	f.userID = userID
	if f.err != nil {
		return nil, f.err
	}
	return &dto.CartResponse{Items: []dto.CartItemResponse{}}, nil
}

func (f *fakeCart) Get(_ context.Context, userID uuid.UUID) (*dto.CartResponse, error) {
	return f.reply(userID)
}

func (f *fakeCart) AddItem(_ context.Context, userID uuid.UUID, _ dto.AddCartItemRequest) (*dto.CartResponse, error) {
	return f.reply(userID)
}

func (f *fakeCart) RemoveItem(_ context.Context, userID, _ uuid.UUID, _ *authgate.Approval) (*dto.CartResponse, error) {
	return f.reply(userID)
}

type fakeAuthz struct {
	service.AuthorizationService
	outcome authgate.Outcome
	err     error
	pending bool
}

func (f *fakeAuthz) Confirm(context.Context, uuid.UUID, dto.ConfirmAuthorizationRequest) (authgate.Outcome, error) {
	return f.outcome, f.err
}

func (f *fakeAuthz) Cancel(uuid.UUID) bool { return f.pending }

// ── Helpers ───────────────────────────────────────────────────────────────────

var caller = uuid.New()

func engine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &middleware.JWTClaims{UserID: caller.String(), Name: "Ana", Role: "employee", Type: "access"})
		c.Next()
	})
	return r
}

func cartEngine(svc service.CartService) *gin.Engine {
	r := engine()
	h := handler.NewCartHandler(svc)
	r.GET("/v1/cart", h.Get)
	r.POST("/v1/cart/items", h.AddItem)
	r.DELETE("/v1/cart/items/:product_id", h.RemoveItem)
	return r
}

func serve(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("%w: quantity", service.ErrValidation), http.StatusUnprocessableEntity},
		{fmt.Errorf("product: %w", service.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: no open till", service.ErrConflict), http.StatusConflict},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		svc := &fakeCart{err: tc.err}
		w := serve(cartEngine(svc), http.MethodGet, "/v1/cart", nil)
		assert.Equal(t, tc.code, w.Code, "%v", tc.err)
		assert.Equal(t, caller, svc.userID)
	}
}

func TestInternalErrorIsHidden(t *testing.T) {
	w := serve(cartEngine(&fakeCart{err: errors.New("pq: password authentication failed")}), http.MethodGet, "/v1/cart", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
}

func TestParkedActionAnswers202(t *testing.T) {
	parked := authgate.Request{ID: uuid.New(), Action: authgate.ActionRemoveCartItem, RequestedBy: caller}
	svc := &fakeCart{err: &service.AuthorizationRequiredError{Request: parked}}

	w := serve(cartEngine(svc), http.MethodDelete, "/v1/cart/items/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp dto.AuthorizationRequiredResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, parked.ID, resp.Request.ID)
	assert.Equal(t, authgate.ActionRemoveCartItem, resp.Request.Action)
}

func TestBindingErrors(t *testing.T) {
	r := cartEngine(&fakeCart{})

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/v1/cart/items", "{not json").Code)

	w := serve(r, http.MethodPost, "/v1/cart/items", dto.AddCartItemRequest{ProductID: "nope", Quantity: 0})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var verr struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verr))
	assert.Equal(t, "uuid", verr.Fields["ProductID"])
	assert.Equal(t, "required", verr.Fields["Quantity"])

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/v1/cart/items", dto.AddCartItemRequest{ProductID: uuid.NewString(), Quantity: 2}).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodDelete, "/v1/cart/items/42", nil).Code)
}

func TestConfirmStatuses(t *testing.T) {
	creds := dto.ConfirmAuthorizationRequest{Identifier: "marta", Password: "manager-pass"}
	cases := []struct {
		name string
		svc  *fakeAuthz
		code int
	}{
		{"nothing pending", &fakeAuthz{err: authgate.ErrNoPendingRequest}, http.StatusConflict},
		{"rejected", &fakeAuthz{outcome: authgate.Outcome{Message: "user lacks authorization"}}, http.StatusUnauthorized},
		{"authorized", &fakeAuthz{outcome: authgate.Outcome{Authorized: true, Result: map[string]int{"items": 0}}}, http.StatusOK},
		{"replay failed", &fakeAuthz{err: fmt.Errorf("%w: till not open", service.ErrConflict)}, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := engine()
			r.POST("/v1/authorizations/confirm", handler.NewAuthorizationsHandler(tc.svc).Confirm)
			w := serve(r, http.MethodPost, "/v1/authorizations/confirm", creds)
			assert.Equal(t, tc.code, w.Code)
		})
	}
}

func TestCancelWithoutPending(t *testing.T) {
	r := engine()
	h := handler.NewAuthorizationsHandler(&fakeAuthz{})
	r.DELETE("/v1/authorizations", h.Cancel)
	assert.Equal(t, http.StatusConflict, serve(r, http.MethodDelete, "/v1/authorizations", nil).Code)

	r = engine()
	r.DELETE("/v1/authorizations", handler.NewAuthorizationsHandler(&fakeAuthz{pending: true}).Cancel)
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodDelete, "/v1/authorizations", nil).Code)
}
