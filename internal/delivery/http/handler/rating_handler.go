package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"carrier-rate-engine/internal/domain/shipping"
	"carrier-rate-engine/internal/logger"
	"carrier-rate-engine/internal/middleware"
	aggregation "carrier-rate-engine/internal/rating"
	ratingUsecase "carrier-rate-engine/internal/usecase/rating"
	apperrors "carrier-rate-engine/pkg/errors"
	"carrier-rate-engine/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RatingService is the rating usecase as seen by the HTTP layer.
type RatingService interface {
	Shop(ctx context.Context, in *ratingUsecase.RateRequest) (*ratingUsecase.RateResponse, error)
	Ship(ctx context.Context, in *ratingUsecase.ShipRequest) (*ratingUsecase.ShipResponse, error)
	EligibleAddons(ctx context.Context, carrierCode, serviceCode string, declaredValue *float64) ([]shipping.AddonDefinition, error)
	BillableWeight(in *ratingUsecase.BillableWeightRequest) (*ratingUsecase.BillableWeightResponse, error)
	Metrics() aggregation.Metrics
	ReloadConfig(ctx context.Context) error
}

type RatingHandler struct {
	service RatingService
}

func NewRatingHandler(service RatingService) *RatingHandler {
	return &RatingHandler{service: service}
}

func (h *RatingHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/rates", h.Rates)
	router.POST("/shipments", h.Shipments)
	router.POST("/weights/billable", h.BillableWeight)
	router.GET("/addons", h.Addons)
	router.GET("/metrics/carriers", h.Metrics)
}

func (h *RatingHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.POST("/config/reload", h.ReloadConfig)
}

func (h *RatingHandler) Rates(c *gin.Context) {
	var req ratingUsecase.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.CodedErrorResponse(c, http.StatusBadRequest, apperrors.CodeValidation, "Invalid request body", err.Error())
		return
	}

	result, err := h.service.Shop(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Rates retrieved successfully", result)
}

func (h *RatingHandler) Shipments(c *gin.Context) {
	var req ratingUsecase.ShipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.CodedErrorResponse(c, http.StatusBadRequest, apperrors.CodeValidation, "Invalid request body", err.Error())
		return
	}

	result, err := h.service.Ship(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Shipment created successfully", result)
}

func (h *RatingHandler) BillableWeight(c *gin.Context) {
	var req ratingUsecase.BillableWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.CodedErrorResponse(c, http.StatusBadRequest, apperrors.CodeValidation, "Invalid request body", err.Error())
		return
	}

	result, err := h.service.BillableWeight(&req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Billable weight calculated", result)
}

func (h *RatingHandler) Addons(c *gin.Context) {
	carrier := c.Query("carrier")
	if carrier == "" {
		utils.CodedErrorResponse(c, http.StatusBadRequest, apperrors.CodeValidation, "carrier is required", "")
		return
	}

	var declared *float64
	if raw := strings.TrimSpace(c.Query("declared_value")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			utils.CodedErrorResponse(c, http.StatusBadRequest, apperrors.CodeValidation, "Invalid declared_value", raw)
			return
		}
		declared = &v
	}

	addons, err := h.service.EligibleAddons(c.Request.Context(), carrier, c.Query("service"), declared)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Addons retrieved successfully", addons)
}

func (h *RatingHandler) Metrics(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Carrier metrics", h.service.Metrics())
}

func (h *RatingHandler) ReloadConfig(c *gin.Context) {
	if err := h.service.ReloadConfig(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}

	logger.WithRequestID(middleware.GetRequestID(c)).Info("Configuration reload requested",
		zap.String("event", "config_reload_requested"),
		zap.String("user_id", c.GetString(middleware.ContextUserID)),
	)
	utils.SuccessResponse(c, http.StatusOK, "Configuration reloaded", nil)
}

func (h *RatingHandler) respondError(c *gin.Context, err error) {
	status := StatusFor(err)
	code := apperrors.CodeOf(err)

	var appErr *apperrors.AppError
	message := "Internal server error"
	details := ""
	if errors.As(err, &appErr) {
		message = appErr.Message
		if appErr.Err != nil {
			details = appErr.Err.Error()
		}
	}

	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		if code == "" {
			details = ""
		}
	}
	utils.CodedErrorResponse(c, status, code, message, details)
}

// StatusFor maps the error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeValidation:
		return http.StatusBadRequest
	case apperrors.CodeUnsupportedRoute, apperrors.CodeWeightExceeded:
		return http.StatusUnprocessableEntity
	case apperrors.CodeAddonConflict:
		return http.StatusConflict
	case apperrors.CodeCarrierUnavailable, apperrors.CodeCarrierRejected, apperrors.CodeParseTolerance:
		return http.StatusBadGateway
	case apperrors.CodePricingUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
