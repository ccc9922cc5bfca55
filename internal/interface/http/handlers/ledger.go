package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/indelible-labs/indelibled/internal/core/ports"
	"github.com/indelible-labs/indelibled/pkg/errors"
)

type LedgerHandler struct {
	ledger ports.Ledger
}

func NewLedgerHandler(ledger ports.Ledger) *LedgerHandler {
	return &LedgerHandler{ledger}
}

func (h *LedgerHandler) GetBalance(c *gin.Context) {
	addr, err := parseAddress(c.Param("address"))
	if err != nil {
		WriteError(c, err)
		return
	}
	balance, err := h.ledger.Balance(c.Request.Context(), addr)
	if err != nil {
		WriteError(c, errors.INTERNAL_ERROR.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": addr.Hex(), "balance": balance.String()})
}

// Deposit credits an account out of thin air, for development setups only.
func (h *LedgerHandler) Deposit(c *gin.Context) {
	addr, err := parseAddress(c.Param("address"))
	if err != nil {
		WriteError(c, err)
		return
	}
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		WriteError(c, err)
		return
	}
	if err := h.ledger.Deposit(c.Request.Context(), addr, amount); err != nil {
		WriteError(c, err)
		return
	}
	balance, err := h.ledger.Balance(c.Request.Context(), addr)
	if err != nil {
		WriteError(c, errors.INTERNAL_ERROR.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": addr.Hex(), "balance": balance.String()})
}
