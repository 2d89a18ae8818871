package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"carrier-rate-engine/internal/config"
	"carrier-rate-engine/internal/domain/shipping"
	"carrier-rate-engine/internal/domain/shipping/mocks"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Environment: "test"},
		RateLimit: config.RateLimitConfig{GeneralRPS: 100, GeneralBurst: 100},
		JWT:       config.JWTConfig{Secret: "s3cret"},
		Carriers: config.CarriersConfig{
			FedEx: config.CarrierConfig{Enabled: true},
			UPS:   config.CarrierConfig{Enabled: true, AccountNumber: "A1"},
		},
		Engine: config.EngineConfig{
			CarrierOrder:      []string{"ups", "fedex", "usps"},
			CarrierTimeout:    time.Second,
			QuoteCacheTTL:     time.Minute,
			ConfigCacheTTL:    time.Minute,
			LowValueThreshold: 2500,
			Commissions:       map[string]float64{"ups": 0, "bogus": 3},
			FallbackRates:     map[string]config.FallbackRateConfig{"fedex": {Base: 20, PerLb: 2}},
		},
	}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return SetupRoutes(ctx, testConfig(), Infrastructure{Transport: mocks.NewMockTransport(ctrl)})
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSetupRoutes_Surface(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", "").Code)

	w := serve(r, http.MethodPost, "/api/v1/weights/billable", `{"weight":2,"length":10,"width":10,"height":10,"dimension_unit":"IN"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"billable_weight":7.19`)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/metrics/carriers", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/api/v1/admin/config/reload", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/nope", "").Code)
	assert.NotEmpty(t, serve(r, http.MethodGet, "/health", "").Header().Get("X-Request-ID"))
}

func TestNewRatingService_RegistersEnabledCarriersInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewRatingService(testConfig(), Infrastructure{Transport: mocks.NewMockTransport(ctrl)})

	addons, err := svc.EligibleAddons(context.Background(), "ups", "03", nil)
	require.NoError(t, err)
	assert.Empty(t, addons)

	_, err = svc.EligibleAddons(context.Background(), "usps", "", nil)
	assert.Error(t, err)
}

func TestOverrides(t *testing.T) {
	assert.Equal(t, map[shipping.CarrierCode]float64{shipping.CarrierUPS: 0}, commissionOverrides(map[string]float64{"UPS": 0, "bogus": 3}))

	rates := fallbackOverrides(map[string]config.FallbackRateConfig{"dhl": {Base: 30, PerLb: 4}})
	assert.Equal(t, 30.0, rates[shipping.CarrierDHL].Base)

	origin := originDefaults(config.OriginConfig{Name: "Ops", Street1: "1 Main", Street2: "Suite 2", CountryCode: "US"})
	require.NotNil(t, origin.Address.Street2)
	assert.Equal(t, "Suite 2", *origin.Address.Street2)
}
