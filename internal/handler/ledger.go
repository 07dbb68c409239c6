package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"andespos/internal/apierror"
	"andespos/internal/dto"
	"andespos/internal/model"
	"andespos/internal/service"
)

type LedgerHandler struct{ svc service.LedgerService }

func NewLedgerHandler(svc service.LedgerService) *LedgerHandler {
	return &LedgerHandler{svc: svc}
}

// Record godoc
// @Summary Registra un ingreso o egreso manual
// @Tags movimientos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MovementRequest true "Movimiento"
// @Success 201 {object} dto.MovementResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/movimientos [post]
func (h *LedgerHandler) Record(c *gin.Context) {
	var req dto.MovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordMovement(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary Lista movimientos con filtros de fecha a granularidad de día UTC
// @Description Admite date (YYYY-MM-DD), week (YYYY-Www), month (YYYY-MM) o from/to; solo uno a la vez.
// @Tags movimientos
// @Produce json
// @Security BearerAuth
// @Param branch_id query int true "Sucursal"
// @Param date query string false "Día"
// @Param week query string false "Semana ISO"
// @Param month query string false "Mes"
// @Param from query string false "Desde (inclusive)"
// @Param to query string false "Hasta (inclusive)"
// @Param type query string false "ingreso | egreso"
// @Param target query string false "efectivo o id de cuenta"
// @Success 200 {object} dto.MovementListResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/movimientos [get]
func (h *LedgerHandler) List(c *gin.Context) {
	var filter dto.MovementFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("filtros inválidos: "+err.Error()))
		return
	}
	if filter.BranchID < 1 {
		c.JSON(http.StatusBadRequest, apierror.New("branch_id inválido"))
		return
	}
	resp, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Balance godoc
// @Summary Saldo actual de efectivo o de una cuenta bancaria
// @Tags movimientos
// @Produce json
// @Security BearerAuth
// @Param branch_id query int true "Sucursal"
// @Param target query string false "efectivo (por defecto) o id de cuenta"
// @Success 200 {object} dto.BalanceResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/movimientos/saldo [get]
func (h *LedgerHandler) Balance(c *gin.Context) {
	branchID, err := strconv.Atoi(c.Query("branch_id"))
	if err != nil || branchID < 1 {
		c.JSON(http.StatusBadRequest, apierror.New("branch_id inválido"))
		return
	}
	target := c.DefaultQuery("target", model.MethodCash)
	resp, err := h.svc.Balance(c.Request.Context(), branchID, target)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
