package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"andespos/internal/apierror"
	"andespos/internal/dto"
	"andespos/internal/service"
)

type WalletHandler struct{ svc service.WalletService }

func NewWalletHandler(svc service.WalletService) *WalletHandler {
	return &WalletHandler{svc: svc}
}

// Get godoc
// @Summary Saldo de la billetera del cliente
// @Tags billetera
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de cliente"
// @Success 200 {object} dto.WalletResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/clientes/{id}/billetera [get]
func (h *WalletHandler) Get(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), clientID)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Entries godoc
// @Summary Historial de movimientos de la billetera
// @Tags billetera
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de cliente"
// @Param page query int false "Página"
// @Param limit query int false "Tamaño de página"
// @Success 200 {object} dto.WalletEntryListResponse
// @Router /v1/clientes/{id}/billetera/movimientos [get]
func (h *WalletHandler) Entries(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	resp, err := h.svc.Entries(c.Request.Context(), clientID, page, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deposit godoc
// @Summary Deposita dinero en la billetera del cliente
// @Tags billetera
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de cliente"
// @Param body body dto.WalletOperationRequest true "Depósito"
// @Success 200 {object} dto.WalletResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/clientes/{id}/billetera/depositos [post]
func (h *WalletHandler) Deposit(c *gin.Context) {
	h.operate(c, h.svc.Deposit)
}

type walletOp func(ctx context.Context, userID, clientID uuid.UUID, req dto.WalletOperationRequest) (*dto.WalletResponse, error)

// Withdraw godoc
// @Summary Retira saldo de la billetera del cliente
// @Tags billetera
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de cliente"
// @Param body body dto.WalletOperationRequest true "Retiro"
// @Success 200 {object} dto.WalletResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/clientes/{id}/billetera/retiros [post]
func (h *WalletHandler) Withdraw(c *gin.Context) {
	h.operate(c, h.svc.Withdraw)
}

func (h *WalletHandler) operate(c *gin.Context, op walletOp) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.WalletOperationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := op(c.Request.Context(), currentUserID(c), clientID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
