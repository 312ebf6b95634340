package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-leave-api/internal/models"
	"github.com/noah-isme/faculty-leave-api/pkg/response"
)

type balanceService interface {
	GetBalances(ctx context.Context, caller models.Caller, userID string, year int) ([]models.BalanceView, error)
}

// BalanceHandler exposes leave balances.
type BalanceHandler struct {
	balances balanceService
}

// NewBalanceHandler constructs a balance handler.
func NewBalanceHandler(balances balanceService) *BalanceHandler {
	return &BalanceHandler{balances: balances}
}

// List godoc
// @Summary Leave balances per type
// @Tags Balances
// @Produce json
// @Param userId query string false "User ID (defaults to caller)"
// @Param year query int false "Year (defaults to current)"
// @Success 200 {object} response.Envelope
// @Router /balances [get]
func (h *BalanceHandler) List(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		return
	}
	year, err := queryInt(c, "year")
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.balances.GetBalances(c.Request.Context(), caller, c.Query("userId"), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}
