package handlers

import (
	"errors"
	"net/http"
	"time"

	"bringalong/internal/middleware"
	"bringalong/internal/services"
	"bringalong/internal/utils"
	"bringalong/internal/validators"
	"bringalong/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errInvalidDate = errors.New("dates must be YYYY-MM-DD or RFC3339")

// statusFor maps service errors to their HTTP status and error code.
var statusFor = []struct {
	err    error
	status int
	code   string
}{
	{services.ErrTripNotFound, http.StatusNotFound, "TRIP_NOT_FOUND"},
	{services.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{services.ErrNotTripOwner, http.StatusForbidden, "NOT_TRIP_OWNER"},
	{services.ErrOwnTrip, http.StatusBadRequest, "OWN_TRIP"},
	{services.ErrTripNotActive, http.StatusConflict, "TRIP_NOT_ACTIVE"},
	{services.ErrDuplicateRequest, http.StatusConflict, "DUPLICATE_REQUEST"},
	{services.ErrInvalidTripDates, http.StatusBadRequest, "INVALID_TRIP_DATES"},
	{services.ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{services.ErrAccountSuspended, http.StatusForbidden, "ACCOUNT_SUSPENDED"},
	{services.ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN"},
	{services.ErrInvalidCurrency, http.StatusBadRequest, "INVALID_CURRENCY"},
	{services.ErrUnsupportedRate, http.StatusUnprocessableEntity, "UNSUPPORTED_RATE"},
	{services.ErrInvalidImage, http.StatusBadRequest, "INVALID_IMAGE"},
	{services.ErrUnsupportedAddress, http.StatusUnprocessableEntity, "UNSUPPORTED_ADDRESS"},
}

// respondError writes the envelope for a service error. Unknown errors are
// logged and reported as a generic 500.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	for _, m := range statusFor {
		if errors.Is(err, m.err) {
			utils.ErrorResponse(c, m.status, m.code, m.err.Error())
			return
		}
	}

	log.WithRequestID(c.GetString(utils.ContextRequestID)).WithError(err).WithFields(map[string]interface{}{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).Error("Request failed")
	utils.InternalServerErrorResponse(c)
}

// bindJSON decodes the body into req and runs validate on it, writing the
// error response itself when either step fails.
func bindJSON[T any](c *gin.Context, req *T, validate func(*T) validators.ValidationErrors) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return false
	}
	if errs := validate(req); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Details())
		return false
	}
	return true
}

func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
	}
	return userID, ok
}

func paramObjectID(c *gin.Context, name, resource string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+resource+" ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

// parseDateRange reads fromDate and toDate. A calendar date given as toDate
// covers the whole day.
func parseDateRange(c *gin.Context) (from, to *time.Time, err error) {
	if raw := c.Query("fromDate"); raw != "" {
		t, _, err := utils.ParseDateParam(raw)
		if err != nil {
			return nil, nil, errInvalidDate
		}
		from = &t
	}
	if raw := c.Query("toDate"); raw != "" {
		t, dateOnly, err := utils.ParseDateParam(raw)
		if err != nil {
			return nil, nil, errInvalidDate
		}
		if dateOnly {
			t = utils.EndOfDay(t)
		}
		to = &t
	}
	return from, to, nil
}
