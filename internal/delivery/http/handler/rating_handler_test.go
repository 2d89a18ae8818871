package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"carrier-rate-engine/internal/domain/shipping"
	aggregation "carrier-rate-engine/internal/rating"
	ratingUsecase "carrier-rate-engine/internal/usecase/rating"
	apperrors "carrier-rate-engine/pkg/errors"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type fakeRatingService struct {
	shopResp   *ratingUsecase.RateResponse
	shopErr    error
	shipResp   *ratingUsecase.ShipResponse
	shipErr    error
	addons     []shipping.AddonDefinition
	addonsErr  error
	reloadErr  error
	gotCarrier string
	gotService string
	gotValue   *float64
	gotRate    *ratingUsecase.RateRequest
}

func (f *fakeRatingService) Shop(_ context.Context, in *ratingUsecase.RateRequest) (*ratingUsecase.RateResponse, error) {
	f.gotRate = in
	return f.shopResp, f.shopErr
}

func (f *fakeRatingService) Ship(_ context.Context, _ *ratingUsecase.ShipRequest) (*ratingUsecase.ShipResponse, error) {
	return f.shipResp, f.shipErr
}

func (f *fakeRatingService) EligibleAddons(_ context.Context, carrier, service string, declared *float64) ([]shipping.AddonDefinition, error) {
	f.gotCarrier, f.gotService, f.gotValue = carrier, service, declared
	return f.addons, f.addonsErr
}

func (f *fakeRatingService) BillableWeight(in *ratingUsecase.BillableWeightRequest) (*ratingUsecase.BillableWeightResponse, error) {
	if in.Weight <= 0 {
		return nil, apperrors.Validation("Invalid input", errors.New("weight must be positive"))
	}
	return &ratingUsecase.BillableWeightResponse{BillableWeight: in.Weight, WeightUnit: "LB", Divisor: 139}, nil
}

func (f *fakeRatingService) Metrics() aggregation.Metrics {
	return aggregation.Metrics{Shops: 3}
}

func (f *fakeRatingService) ReloadConfig(context.Context) error {
	return f.reloadErr
}

type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    jsoniter.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Details string `json:"details"`
	} `json:"error"`
}

func setupRouter(svc RatingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewRatingHandler(svc)
	h.RegisterRoutes(r.Group("/api/v1"))
	h.RegisterAdminRoutes(r.Group("/api/v1/admin"))
	return r
}

func perform(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestRates_Success(t *testing.T) {
	svc := &fakeRatingService{shopResp: &ratingUsecase.RateResponse{QuoteID: "q-1", Quotes: []ratingUsecase.QuoteResponse{}}}
	r := setupRouter(svc)

	w, env := perform(t, r, http.MethodPost, "/api/v1/rates", `{"reference":"ord-9","carrier":"ups"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"quote_id":"q-1"`)
	require.NotNil(t, svc.gotRate)
	assert.Equal(t, "ord-9", svc.gotRate.Reference)
}

func TestRates_BadJSON(t *testing.T) {
	w, env := perform(t, setupRouter(&fakeRatingService{}), http.MethodPost, "/api/v1/rates", `{`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, apperrors.CodeValidation, env.Error.Code)
}

func TestRates_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", apperrors.Validation("Invalid input", nil), http.StatusBadRequest, apperrors.CodeValidation},
		{"unsupported", apperrors.NewAppError(apperrors.CodeUnsupportedRoute, "No service", nil), http.StatusUnprocessableEntity, apperrors.CodeUnsupportedRoute},
		{"weight", apperrors.NewAppError(apperrors.CodeWeightExceeded, "Too heavy", nil), http.StatusUnprocessableEntity, apperrors.CodeWeightExceeded},
		{"addon conflict", apperrors.NewAppError(apperrors.CodeAddonConflict, "Conflict", nil), http.StatusConflict, apperrors.CodeAddonConflict},
		{"carrier", apperrors.NewAppError(apperrors.CodeCarrierUnavailable, "Down", nil), http.StatusBadGateway, apperrors.CodeCarrierUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, env := perform(t, setupRouter(&fakeRatingService{shopErr: tc.err}), http.MethodPost, "/api/v1/rates", `{}`)

			assert.Equal(t, tc.status, w.Code)
			assert.False(t, env.Success)
			if tc.code != "" {
				require.NotNil(t, env.Error)
				assert.Equal(t, tc.code, env.Error.Code)
			}
		})
	}
}

func TestShipments_Created(t *testing.T) {
	svc := &fakeRatingService{shipResp: &ratingUsecase.ShipResponse{
		Reference: "ord-1",
		Shipment:  &shipping.ShipmentResult{Carrier: shipping.CarrierUPS, TrackingNumber: "1Z999"},
	}}

	w, env := perform(t, setupRouter(svc), http.MethodPost, "/api/v1/shipments", `{"carrier":"ups"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, string(env.Data), "1Z999")
}

func TestBillableWeight(t *testing.T) {
	r := setupRouter(&fakeRatingService{})

	w, env := perform(t, r, http.MethodPost, "/api/v1/weights/billable", `{"weight":4}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"divisor":139`)

	w, _ = perform(t, r, http.MethodPost, "/api/v1/weights/billable", `{"weight":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddons_ParsesQuery(t *testing.T) {
	svc := &fakeRatingService{addons: []shipping.AddonDefinition{{Code: "INSURANCE"}}}
	r := setupRouter(svc)

	w, env := perform(t, r, http.MethodGet, "/api/v1/addons?carrier=dhl&service=P&declared_value=250", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "INSURANCE")
	assert.Equal(t, "dhl", svc.gotCarrier)
	assert.Equal(t, "P", svc.gotService)
	require.NotNil(t, svc.gotValue)
	assert.Equal(t, 250.0, *svc.gotValue)
}

func TestAddons_RejectsBadInput(t *testing.T) {
	r := setupRouter(&fakeRatingService{})

	w, _ := perform(t, r, http.MethodGet, "/api/v1/addons", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = perform(t, r, http.MethodGet, "/api/v1/addons?carrier=ups&declared_value=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsAndReload(t *testing.T) {
	r := setupRouter(&fakeRatingService{})

	w, env := perform(t, r, http.MethodGet, "/api/v1/metrics/carriers", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"shops":3`)

	w, env = perform(t, r, http.MethodPost, "/api/v1/admin/config/reload", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	failing := setupRouter(&fakeRatingService{reloadErr: apperrors.NewAppError(apperrors.CodeConfiguration, "Failed to reload configuration", errors.New("db down"))})
	w, env = perform(t, failing, http.MethodPost, "/api/v1/admin/config/reload", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to reload configuration", env.Message)
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", NewHealthHandler(map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
	}).Health)

	w, _ := perform(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	r = gin.New()
	r.GET("/health", NewHealthHandler(map[string]HealthCheck{
		"redis": func(context.Context) error { return errors.New("refused") },
	}).Health)

	w, _ = perform(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
