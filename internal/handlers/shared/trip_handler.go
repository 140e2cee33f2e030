package handlers

import (
	"context"
	"net/http"
	"strconv"

	"bringalong/internal/middleware"
	"bringalong/internal/models"
	"bringalong/internal/services"
	"bringalong/internal/utils"
	"bringalong/internal/validators"
	"bringalong/pkg/logger"

	"github.com/gin-gonic/gin"
)

type TripHandler struct {
	tripService   services.TripService
	searchService services.TripSearchService
	userService   services.UserService
	geoService    services.GeoService
	logger        *logger.Logger
}

// NewTripHandler wires the trip endpoints. userService and geoService are
// only used to pick the display currency and may be nil.
func NewTripHandler(
	tripService services.TripService,
	searchService services.TripSearchService,
	userService services.UserService,
	geoService services.GeoService,
	log *logger.Logger,
) *TripHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &TripHandler{
		tripService:   tripService,
		searchService: searchService,
		userService:   userService,
		geoService:    geoService,
		logger:        log,
	}
}

var locationParams = []string{"from", "to", "fromCity", "fromCountry", "toCity", "toCountry"}

// ListTrips searches when any location parameter is present and browses
// otherwise.
func (h *TripHandler) ListTrips(c *gin.Context) {
	for _, name := range locationParams {
		if c.Query(name) != "" {
			h.SearchTrips(c)
			return
		}
	}
	h.BrowseTrips(c)
}

// SearchTrips runs the tiered route search. The result is the response body
// itself; errors still use the envelope.
func (h *TripHandler) SearchTrips(c *gin.Context) {
	fromDate, toDate, err := parseDateRange(c)
	if err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}
	page, limit := pageParams(c)

	result, err := h.searchService.Search(c.Request.Context(), &models.SearchQuery{
		From:        c.Query("from"),
		To:          c.Query("to"),
		FromCity:    c.Query("fromCity"),
		FromCountry: c.Query("fromCountry"),
		ToCity:      c.Query("toCity"),
		ToCountry:   c.Query("toCountry"),
		FromDate:    fromDate,
		ToDate:      toDate,
		SortBy:      c.Query("sortBy"),
		SortOrder:   c.Query("sortOrder"),
		Page:        page,
		Limit:       limit,
		Status:      statusParam(c),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// BrowseTrips lists trips with fees shown in the viewer's currency
func (h *TripHandler) BrowseTrips(c *gin.Context) {
	fromDate, toDate, err := parseDateRange(c)
	if err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}
	page, limit := pageParams(c)

	result, err := h.tripService.BrowseTrips(c.Request.Context(), &models.BrowseQuery{
		FromDate:       fromDate,
		ToDate:         toDate,
		SortBy:         c.Query("sortBy"),
		SortOrder:      c.Query("sortOrder"),
		Page:           page,
		Limit:          limit,
		Status:         statusParam(c),
		ViewerCurrency: h.viewerCurrency(c),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// viewerCurrency picks the display currency: explicit query parameter, the
// caller's preference, then the currency of the client's IP location. An
// empty result leaves the service default in place.
func (h *TripHandler) viewerCurrency(c *gin.Context) string {
	if code := utils.NormalizeCurrencyCode(c.Query("currency")); utils.IsCurrencyCode(code) {
		return code
	}

	ctx := c.Request.Context()
	if userID, ok := middleware.GetUserID(c); ok && h.userService != nil {
		if user, err := h.userService.GetProfile(ctx, userID); err == nil && user.PreferredCurrency != "" {
			return user.PreferredCurrency
		}
	}

	if h.geoService != nil {
		if code := h.detectCurrency(ctx, c.ClientIP()); code != "" {
			return code
		}
	}

	return ""
}

func (h *TripHandler) detectCurrency(ctx context.Context, ip string) string {
	location, err := h.geoService.Detect(ctx, ip)
	if err != nil {
		h.logger.WithError(err).WithField("ip", ip).Debug("Currency detection skipped")
		return ""
	}
	if code := utils.NormalizeCurrencyCode(location.Currency); utils.IsCurrencyCode(code) {
		return code
	}
	return ""
}

// statusParam returns the requested status, or empty (meaning active) when
// the value is not a known status.
func statusParam(c *gin.Context) models.TripStatus {
	status := models.TripStatus(c.Query("status"))
	if !status.IsValid() {
		return ""
	}
	return status
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return utils.NormalizePage(page, limit)
}

// Trip management
func (h *TripHandler) CreateTrip(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.CreateTripRequest
	if !bindJSON(c, &req, validators.ValidateCreateTrip) {
		return
	}

	trip, err := h.tripService.CreateTrip(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.CreatedResponse(c, "Trip created successfully", trip)
}

func (h *TripHandler) GetTrip(c *gin.Context) {
	tripID, ok := paramObjectID(c, "id", "trip")
	if !ok {
		return
	}

	trip, err := h.tripService.GetTrip(c.Request.Context(), tripID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Trip retrieved successfully", trip)
}

func (h *TripHandler) UpdateTrip(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	tripID, ok := paramObjectID(c, "id", "trip")
	if !ok {
		return
	}

	var req models.UpdateTripRequest
	if !bindJSON(c, &req, validators.ValidateUpdateTrip) {
		return
	}

	trip, err := h.tripService.UpdateTrip(c.Request.Context(), userID, tripID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Trip updated successfully", trip)
}

func (h *TripHandler) UpdateTripStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	tripID, ok := paramObjectID(c, "id", "trip")
	if !ok {
		return
	}

	var req models.UpdateTripStatusRequest
	if !bindJSON(c, &req, validators.ValidateUpdateTripStatus) {
		return
	}

	trip, err := h.tripService.UpdateTripStatus(c.Request.Context(), userID, tripID, req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Trip status updated successfully", trip)
}

func (h *TripHandler) DeleteTrip(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	tripID, ok := paramObjectID(c, "id", "trip")
	if !ok {
		return
	}

	if err := h.tripService.DeleteTrip(c.Request.Context(), userID, tripID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Trip deleted successfully", nil)
}

func (h *TripHandler) GetMyTrips(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	trips, total, err := h.tripService.GetMyTrips(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	}

	response := map[string]interface{}{
		"trips": trips,
	}

	utils.SuccessResponseWithMeta(c, "Trips retrieved successfully", response, meta)
}

// Requests
func (h *TripHandler) RequestTrip(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	tripID, ok := paramObjectID(c, "id", "trip")
	if !ok {
		return
	}

	var req models.CreateTripRequestRequest
	if !bindJSON(c, &req, validators.ValidateTripRequest) {
		return
	}

	request, err := h.tripService.RequestTrip(c.Request.Context(), userID, tripID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.CreatedResponse(c, "Trip request sent successfully", request)
}

func (h *TripHandler) GetTripRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	tripID, ok := paramObjectID(c, "id", "trip")
	if !ok {
		return
	}

	requests, err := h.tripService.GetTripRequests(c.Request.Context(), userID, tripID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Trip requests retrieved successfully", map[string]interface{}{
		"requests": requests,
	}, &utils.Meta{Count: len(requests)})
}
