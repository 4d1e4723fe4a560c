package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/docbook/docbook-api/internal/middleware"
	"github.com/docbook/docbook-api/internal/model"
	"github.com/docbook/docbook-api/internal/service/auth"
	"github.com/docbook/docbook-api/internal/service/booking"
	"github.com/docbook/docbook-api/internal/service/doctor"
	"github.com/docbook/docbook-api/pkg/httputil"
)

type Handler struct {
	authService    *auth.Service
	doctorService  *doctor.Service
	bookingService *booking.Service
}

func NewHandler(authService *auth.Service, doctorService *doctor.Service, bookingService *booking.Service) *Handler {
	return &Handler{
		authService:    authService,
		doctorService:  doctorService,
		bookingService: bookingService,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMw *middleware.AuthMiddleware) {
	admin := r.Group("/admin")
	{
		admin.POST("/login", h.Login)

		authed := admin.Group("", authMw.AuthenticateAdmin())
		{
			authed.POST("/add-doctor", h.AddDoctor)
			authed.POST("/all-doctors", h.AllDoctors)
			authed.POST("/change-availability", h.ChangeAvailability)
			authed.GET("/appointments", h.ListAppointments)
			authed.POST("/cancel-appointment", h.CancelAppointment)
			authed.GET("/dashboard", h.Dashboard)
		}
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.FailStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.authService.LoginAdmin(req.Email, req.Password)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"token": token})
}

func (h *Handler) AddDoctor(c *gin.Context) {
	var req model.AddDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.FailStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.doctorService.Add(c.Request.Context(), &req); err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.Created(c, gin.H{"message": "doctor added"})
}

func (h *Handler) AllDoctors(c *gin.Context) {
	doctors, err := h.doctorService.ListAll(c.Request.Context())
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"doctors": doctors})
}

func (h *Handler) ChangeAvailability(c *gin.Context) {
	var req model.ChangeAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.FailStatus(c, http.StatusBadRequest, err.Error())
		return
	}
	docID, err := uuid.Parse(req.DocID)
	if err != nil {
		httputil.FailStatus(c, http.StatusBadRequest, "invalid doctor ID")
		return
	}

	if err := h.doctorService.ToggleAvailability(c.Request.Context(), docID); err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OKMessage(c, "availability changed")
}

func (h *Handler) ListAppointments(c *gin.Context) {
	appointments, err := h.bookingService.ListAll(c.Request.Context())
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"appointments": appointments})
}

// CancelAppointment is the administrative override; no ownership check.
func (h *Handler) CancelAppointment(c *gin.Context) {
	var req model.CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.FailStatus(c, http.StatusBadRequest, err.Error())
		return
	}
	appointmentID, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		httputil.FailStatus(c, http.StatusBadRequest, "invalid appointment ID")
		return
	}

	if err := h.bookingService.CancelOverride(c.Request.Context(), appointmentID); err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OKMessage(c, "appointment cancelled")
}

func (h *Handler) Dashboard(c *gin.Context) {
	dashboard, err := h.bookingService.AdminDashboard(c.Request.Context())
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"dashData": dashboard})
}
