package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"andespos/internal/apierror"
	"andespos/internal/dto"
	"andespos/internal/service"
)

type CashboxHandler struct{ svc service.CashboxService }

func NewCashboxHandler(svc service.CashboxService) *CashboxHandler {
	return &CashboxHandler{svc: svc}
}

// Open godoc
// @Summary Abre una sesión de caja con conteo de denominaciones
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenCashboxRequest true "Datos de apertura"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.DiscrepancyError
// @Router /v1/caja/abrir [post]
func (h *CashboxHandler) Open(c *gin.Context) {
	var req dto.OpenCashboxRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Open(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close godoc
// @Summary Cierra la sesión de caja con conteo de denominaciones
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CloseCashboxRequest true "Datos de cierre"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.DiscrepancyError
// @Router /v1/caja/cerrar [post]
func (h *CashboxHandler) Close(c *gin.Context) {
	var req dto.CloseCashboxRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Active godoc
// @Summary Devuelve la sesión abierta de la sucursal
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param branch_id query int true "Sucursal"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/activa [get]
func (h *CashboxHandler) Active(c *gin.Context) {
	branchID, err := strconv.Atoi(c.Query("branch_id"))
	if err != nil || branchID < 1 {
		c.JSON(http.StatusBadRequest, apierror.New("branch_id inválido"))
		return
	}
	resp, err := h.svc.Active(c.Request.Context(), branchID)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Session godoc
// @Summary Obtiene una sesión de caja por id
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesión"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/{id} [get]
func (h *CashboxHandler) Session(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Session(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History godoc
// @Summary Lista el historial de sesiones de caja
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param branch_id query int false "Sucursal"
// @Param page query int false "Página"
// @Param limit query int false "Tamaño de página"
// @Success 200 {object} map[string]interface{}
// @Router /v1/caja/historial [get]
func (h *CashboxHandler) History(c *gin.Context) {
	branchID, _ := strconv.Atoi(c.Query("branch_id"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	sessions, total, err := h.svc.History(c.Request.Context(), branchID, page, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sessions, "total": total, "page": page, "limit": limit})
}

// RunningBalances godoc
// @Summary Saldo acumulado por destino desde la apertura de la sesión
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesión"
// @Success 200 {array} dto.RunningBalanceEntry
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/{id}/saldos [get]
func (h *CashboxHandler) RunningBalances(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.RunningBalances(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
