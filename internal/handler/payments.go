package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"andespos/internal/dto"
	"andespos/internal/service"
)

type PaymentHandler struct{ svc service.PaymentService }

func NewPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// Register godoc
// @Summary Registra un pago asignado a una o más ventas
// @Description Los montos por artículo que excedan el saldo pendiente se recortan; el excedente del monto recibido se acredita a la billetera del cliente de la última venta.
// @Tags pagos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegisterPaymentRequest true "Pago a registrar"
// @Success 201 {object} dto.RegisterPaymentResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/pagos [post]
func (h *PaymentHandler) Register(c *gin.Context) {
	var req dto.RegisterPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegisterPayment(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
