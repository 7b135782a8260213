package registration

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/registration"
)

type Handler struct {
	service *registration.Service
}

func NewHandler(service *registration.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	registrations := r.Group("/registrations")
	{
		registrations.POST("", h.CreateRegistration)
		registrations.GET("", h.ListRegistrations)
		registrations.GET("/:id", h.GetRegistration)
		registrations.POST("/:id/complete", h.CompleteRegistration)
		registrations.DELETE("/:id", h.DeleteRegistration)
	}
	r.GET("/patients/:id/registrations", h.ListByPatient)
}

func (h *Handler) CreateRegistration(c *gin.Context) {
	var req model.CreateRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	reg, err := h.service.CreateRegistration(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(reg))
}

func (h *Handler) GetRegistration(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid registration ID"))
		return
	}

	reg, err := h.service.GetRegistration(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(reg))
}

func (h *Handler) ListRegistrations(c *gin.Context) {
	filters := &model.RegistrationFilters{}

	if raw := c.Query("department_id"); raw != "" {
		departmentID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid department ID"))
			return
		}
		filters.DepartmentID = &departmentID
	}

	if raw := c.Query("visit_date"); raw != "" {
		visitDate, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid visit date, expected YYYY-MM-DD"))
			return
		}
		filters.VisitDate = &visitDate
	}

	if status := c.Query("status"); status != "" {
		filters.Status = &status
	}

	registrations, err := h.service.ListRegistrations(c.Request.Context(), filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(registrations))
}

func (h *Handler) ListByPatient(c *gin.Context) {
	patientID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	registrations, err := h.service.ListRegistrationsByPatient(c.Request.Context(), patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(registrations))
}

func (h *Handler) CompleteRegistration(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid registration ID"))
		return
	}

	reg, err := h.service.CompleteRegistration(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(reg))
}

func (h *Handler) DeleteRegistration(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid registration ID"))
		return
	}

	if err := h.service.DeleteRegistration(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
