package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/docbook/docbook-api/internal/middleware"
	"github.com/docbook/docbook-api/internal/model"
	"github.com/docbook/docbook-api/internal/service/auth"
	"github.com/docbook/docbook-api/internal/service/booking"
	"github.com/docbook/docbook-api/internal/service/user"
	"github.com/docbook/docbook-api/pkg/httputil"
)

type Handler struct {
	authService    *auth.Service
	userService    *user.Service
	bookingService *booking.Service
}

func NewHandler(authService *auth.Service, userService *user.Service, bookingService *booking.Service) *Handler {
	return &Handler{
		authService:    authService,
		userService:    userService,
		bookingService: bookingService,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMw *middleware.AuthMiddleware) {
	users := r.Group("/users")
	{
		users.POST("/register", h.Register)
		users.POST("/login", h.Login)

		authed := users.Group("", authMw.AuthenticateUser())
		{
			authed.GET("/get-profile", h.GetProfile)
			authed.POST("/update-profile", h.UpdateProfile)
			// The path keeps the historical spelling the clients call.
			authed.POST("/book-appoinment", h.BookAppointment)
			authed.GET("/appointments", h.ListAppointments)
			authed.POST("/cancel-appointments", h.CancelAppointment)
		}
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.FailStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.authService.RegisterUser(c.Request.Context(), &req)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.Created(c, gin.H{"token": token})
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.FailStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"token": token})
}

func (h *Handler) GetProfile(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"userData": profile})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.FailStatus(c, http.StatusBadRequest, "data missing")
		return
	}

	if _, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req); err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OKMessage(c, "profile updated")
}

func (h *Handler) BookAppointment(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.FailStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	docID, err := uuid.Parse(req.DocID)
	if err != nil {
		httputil.FailStatus(c, http.StatusBadRequest, "invalid doctor ID")
		return
	}

	if _, err := h.bookingService.Book(c.Request.Context(), userID, docID, req.SlotDate, req.SlotTime); err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OKMessage(c, "appointment booked")
}

func (h *Handler) ListAppointments(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	appointments, err := h.bookingService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"appointments": appointments})
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

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

	if err := h.bookingService.CancelForUser(c.Request.Context(), userID, appointmentID); err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OKMessage(c, "appointment cancelled")
}
