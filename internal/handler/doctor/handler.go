package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/docbook/docbook-api/internal/middleware"
	"github.com/docbook/docbook-api/internal/model"
	"github.com/docbook/docbook-api/internal/service/auth"
	"github.com/docbook/docbook-api/internal/service/booking"
	"github.com/docbook/docbook-api/internal/service/doctor"
	"github.com/docbook/docbook-api/internal/service/speciality"
	"github.com/docbook/docbook-api/pkg/httputil"
)

type Handler struct {
	authService       *auth.Service
	doctorService     *doctor.Service
	bookingService    *booking.Service
	specialityService *speciality.Service
}

func NewHandler(
	authService *auth.Service,
	doctorService *doctor.Service,
	bookingService *booking.Service,
	specialityService *speciality.Service,
) *Handler {
	return &Handler{
		authService:       authService,
		doctorService:     doctorService,
		bookingService:    bookingService,
		specialityService: specialityService,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMw *middleware.AuthMiddleware) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("/list", h.List)
		doctors.POST("/login", h.Login)
		doctors.GET("/availability/:id", h.Availability)
		doctors.POST("/match-speciality", h.MatchSpeciality)

		authed := doctors.Group("", authMw.AuthenticateDoctor())
		{
			authed.GET("/appointments", h.ListAppointments)
			authed.POST("/complete-appointment", h.CompleteAppointment)
			authed.POST("/cancel-appointment", h.CancelAppointment)
			authed.GET("/dashboard", h.Dashboard)
			authed.GET("/profile", h.GetProfile)
			authed.POST("/update-profile", h.UpdateProfile)
		}
	}
}

func (h *Handler) List(c *gin.Context) {
	doctors, err := h.doctorService.ListPublic(c.Request.Context())
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"doctors": doctors})
}

func (h *Handler) Login(c *gin.Context) {
	var req model.DoctorLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.FailStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.authService.LoginDoctor(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"token": token})
}

// Availability returns the bookable slot grid for one doctor: seven day
// buckets of open slots, derived from the live slots_booked map.
func (h *Handler) Availability(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.FailStatus(c, http.StatusBadRequest, "invalid doctor ID")
		return
	}

	slots, err := h.bookingService.AvailableSlots(c.Request.Context(), docID)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"slots": slots})
}

// MatchSpeciality routes a free-text symptom description to a speciality
// and returns the available doctors of that speciality.
func (h *Handler) MatchSpeciality(c *gin.Context) {
	var req model.MatchSpecialityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.FailStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	spec, doctors, err := h.specialityService.MatchDoctors(c.Request.Context(), req.Symptoms)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"speciality": spec, "doctors": doctors})
}

func (h *Handler) ListAppointments(c *gin.Context) {
	docID := c.MustGet(middleware.ContextDoctorID).(uuid.UUID)

	appointments, err := h.bookingService.ListForDoctor(c.Request.Context(), docID)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"appointments": appointments})
}

func (h *Handler) CompleteAppointment(c *gin.Context) {
	docID := c.MustGet(middleware.ContextDoctorID).(uuid.UUID)

	var req model.CompleteAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.FailStatus(c, http.StatusBadRequest, err.Error())
		return
	}
	appointmentID, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		httputil.FailStatus(c, http.StatusBadRequest, "invalid appointment ID")
		return
	}

	if err := h.bookingService.Complete(c.Request.Context(), docID, appointmentID); err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OKMessage(c, "appointment completed")
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	docID := c.MustGet(middleware.ContextDoctorID).(uuid.UUID)

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

	if err := h.bookingService.CancelForDoctor(c.Request.Context(), docID, appointmentID); err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OKMessage(c, "appointment cancelled")
}

func (h *Handler) Dashboard(c *gin.Context) {
	docID := c.MustGet(middleware.ContextDoctorID).(uuid.UUID)

	dashboard, err := h.bookingService.DoctorDashboard(c.Request.Context(), docID)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"dashData": dashboard})
}

func (h *Handler) GetProfile(c *gin.Context) {
	docID := c.MustGet(middleware.ContextDoctorID).(uuid.UUID)

	profile, err := h.doctorService.Get(c.Request.Context(), docID)
	if err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OK(c, gin.H{"profileData": profile})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	docID := c.MustGet(middleware.ContextDoctorID).(uuid.UUID)

	var req model.UpdateDoctorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.FailStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.doctorService.UpdateProfile(c.Request.Context(), docID, &req); err != nil {
		httputil.Fail(c, err)
		return
	}

	httputil.OKMessage(c, "profile updated")
}
