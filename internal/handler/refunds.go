package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"andespos/internal/apierror"
	"andespos/internal/dto"
	"andespos/internal/service"
)

type RefundHandler struct{ svc service.RefundService }

func NewRefundHandler(svc service.RefundService) *RefundHandler {
	return &RefundHandler{svc: svc}
}

// Create godoc
// @Summary Emite una nota de crédito devolviendo artículos de una venta
// @Description Las líneas de devolución deben cubrir exactamente el total calculado de la devolución.
// @Tags devoluciones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreditNoteRequest true "Nota de crédito"
// @Success 201 {object} dto.CreditNoteResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/notas-credito [post]
func (h *RefundHandler) Create(c *gin.Context) {
	var req dto.CreditNoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ProcessCreditNote(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary Obtiene una nota de crédito por id
// @Tags devoluciones
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de nota de crédito"
// @Success 200 {object} dto.CreditNoteResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/notas-credito/{id} [get]
func (h *RefundHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.GetCreditNote(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListBySale godoc
// @Summary Lista las notas de crédito de una venta
// @Tags devoluciones
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de venta"
// @Success 200 {array} dto.CreditNoteResponse
// @Router /v1/ventas/{id}/notas-credito [get]
func (h *RefundHandler) ListBySale(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ListBySale(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
