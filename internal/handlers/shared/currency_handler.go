package handlers

import (
	"strconv"

	"bringalong/internal/services"
	"bringalong/internal/utils"
	"bringalong/pkg/logger"

	"github.com/gin-gonic/gin"
)

type CurrencyHandler struct {
	currencyService services.CurrencyService
	defaultCurrency string
	logger          *logger.Logger
}

func NewCurrencyHandler(currencyService services.CurrencyService, defaultCurrency string, log *logger.Logger) *CurrencyHandler {
	if log == nil {
		log = logger.NewNop()
	}
	if defaultCurrency == "" {
		defaultCurrency = utils.DefaultCurrency
	}
	return &CurrencyHandler{
		currencyService: currencyService,
		defaultCurrency: defaultCurrency,
		logger:          log,
	}
}

func (h *CurrencyHandler) GetRates(c *gin.Context) {
	base := c.DefaultQuery("base", h.defaultCurrency)

	rates, err := h.currencyService.GetRates(c.Request.Context(), base)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Exchange rates retrieved successfully", rates)
}

func (h *CurrencyHandler) Convert(c *gin.Context) {
	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil || amount < 0 {
		utils.BadRequestResponse(c, "amount must be a non-negative number")
		return
	}
	from := utils.NormalizeCurrencyCode(c.Query("from"))
	to := utils.NormalizeCurrencyCode(c.DefaultQuery("to", h.defaultCurrency))

	converted, err := h.currencyService.Convert(c.Request.Context(), amount, from, to)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Amount converted successfully", gin.H{
		"amount":    amount,
		"from":      from,
		"to":        to,
		"converted": utils.RoundCurrency(converted, to),
		"formatted": utils.FormatCurrency(converted, to),
	})
}
