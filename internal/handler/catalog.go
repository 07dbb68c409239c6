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

type CatalogHandler struct{ svc service.CatalogService }

func NewCatalogHandler(svc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// CreateAccount godoc
// @Summary Registra una cuenta bancaria
// @Tags catalogo
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateAccountRequest true "Cuenta"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/cuentas [post]
func (h *CatalogHandler) CreateAccount(c *gin.Context) {
	var req dto.CreateAccountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateAccount(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListAccounts godoc
// @Summary Lista las cuentas bancarias activas
// @Tags catalogo
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.AccountResponse
// @Router /v1/cuentas [get]
func (h *CatalogHandler) ListAccounts(c *gin.Context) {
	resp, err := h.svc.ListAccounts(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateClient godoc
// @Summary Registra un cliente
// @Tags catalogo
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateClientRequest true "Cliente"
// @Success 201 {object} dto.ClientResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/clientes [post]
func (h *CatalogHandler) CreateClient(c *gin.Context) {
	var req dto.CreateClientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateClient(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetClient godoc
// @Summary Obtiene un cliente por id
// @Tags catalogo
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de cliente"
// @Success 200 {object} dto.ClientResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/clientes/{id} [get]
func (h *CatalogHandler) GetClient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.GetClient(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListClients godoc
// @Summary Lista los clientes registrados
// @Tags catalogo
// @Produce json
// @Security BearerAuth
// @Param page query int false "Página"
// @Param limit query int false "Tamaño de página"
// @Success 200 {object} map[string]interface{}
// @Router /v1/clientes [get]
func (h *CatalogHandler) ListClients(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	clients, total, err := h.svc.ListClients(c.Request.Context(), page, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": clients, "total": total, "page": page, "limit": limit})
}
