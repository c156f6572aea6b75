package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"visa-consultancy/backend/config"
	"visa-consultancy/backend/internal/api/handler"
	"visa-consultancy/backend/internal/api/middleware"
	"visa-consultancy/backend/pkg/jwt"
	"visa-consultancy/backend/pkg/metrics"
	"visa-consultancy/backend/pkg/redis"
)

// Deps collaborators of the router. Redis may be nil; revocation and rate
// limiting are then skipped.
type Deps struct {
	Config   *config.Config
	Handler  *handler.Handler
	JWT      *jwt.Manager
	Redis    *redis.Client
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Health   func() error
	Logger   *zap.Logger
}

// Setup builds the gin engine
func Setup(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	cfg := d.Config
	h := d.Handler

	// keep a nil *redis.Client out of the interface values
	var blacklist middleware.TokenBlacklist
	var limiter middleware.RateLimiter
	if d.Redis != nil {
		blacklist = d.Redis
		limiter = d.Redis
	}

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(d.Logger))
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Metrics(d.Metrics))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── probes ──
	r.GET("/health", func(c *gin.Context) {
		if d.Health != nil {
			if err := d.Health(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
	})
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	authn := middleware.JWTAuth(d.JWT, blacklist)
	limit := middleware.RateLimit(limiter, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	staff := middleware.RoleAuth(jwt.RoleStaff)
	download := middleware.DownloadHeaders()

	// ── back office API ──
	v1 := r.Group("/api/v1", limit, authn)
	{
		v1.POST("/auth/logout", h.Auth.Logout)
		v1.GET("/auth/me", h.Auth.GetCurrentUser)

		office := v1.Group("", staff)

		office.GET("/dashboard", h.Dashboard.GetStatistics)

		students := office.Group("/students")
		{
			students.GET("", h.Student.ListStudents)
			students.POST("", h.Student.CreateStudent)
			students.GET("/:id", h.Student.GetStudent)
			students.PUT("/:id", h.Student.UpdateStudent)
			students.DELETE("/:id", h.Student.DeleteStudent)
			students.POST("/:id/actions/:action", h.Student.Act)
			students.GET("/:id/calendar.ics", download, h.Export.StudentCalendar)
		}

		universities := office.Group("/universities")
		{
			universities.GET("", h.University.ListUniversities)
			universities.POST("", h.University.CreateUniversity)
			universities.GET("/:id", h.University.GetUniversity)
			universities.PUT("/:id", h.University.UpdateUniversity)
			universities.DELETE("/:id", h.University.DeleteUniversity)
			universities.GET("/:id/courses", h.University.ListCourses)
			universities.POST("/:id/courses", h.University.CreateCourse)
		}

		courses := office.Group("/courses")
		{
			courses.PUT("/:id", h.University.UpdateCourse)
			courses.DELETE("/:id", h.University.DeleteCourse)
		}

		consultants := office.Group("/consultants")
		{
			consultants.GET("", h.Consultant.ListConsultants)
			consultants.POST("", h.Consultant.CreateConsultant)
			consultants.GET("/:id", h.Consultant.GetConsultant)
			consultants.PUT("/:id", h.Consultant.UpdateConsultant)
			consultants.DELETE("/:id", h.Consultant.DeleteConsultant)
		}

		applications := office.Group("/applications")
		{
			applications.GET("", h.Application.ListApplications)
			applications.POST("", h.Application.CreateApplication)
			applications.GET("/:id", h.Application.GetApplication)
			applications.PUT("/:id", h.Application.UpdateApplication)
			applications.DELETE("/:id", h.Application.DeleteApplication)
			applications.POST("/:id/duplicate", h.Application.DuplicateApplication)
			applications.POST("/:id/actions/:action", h.Application.Act)
		}

		documents := office.Group("/documents")
		{
			documents.GET("", h.Document.ListDocuments)
			documents.POST("", h.Document.CreateDocument)
			documents.GET("/:id", h.Document.GetDocument)
			documents.PUT("/:id", h.Document.UpdateDocument)
			documents.DELETE("/:id", h.Document.DeleteDocument)
			documents.POST("/:id/actions/:action", h.Document.Act)
		}

		payments := office.Group("/payments")
		{
			payments.GET("", h.Payment.ListPayments)
			payments.POST("", h.Payment.CreatePayment)
			payments.GET("/:id", h.Payment.GetPayment)
			payments.PUT("/:id", h.Payment.UpdatePayment)
			payments.DELETE("/:id", h.Payment.DeletePayment)
			payments.POST("/:id/actions/:action", h.Payment.Act)
		}

		invoices := office.Group("/invoices")
		{
			invoices.GET("", h.Invoice.ListInvoices)
			invoices.POST("", h.Invoice.CreateInvoice)
			invoices.GET("/:id", h.Invoice.GetInvoice)
			invoices.PUT("/:id", h.Invoice.UpdateInvoice)
			invoices.DELETE("/:id", h.Invoice.DeleteInvoice)
			invoices.GET("/:id/print", download, h.Export.PrintInvoice)
			invoices.POST("/:id/lines", h.Invoice.AddLine)
			invoices.PUT("/:id/lines/:line_id", h.Invoice.UpdateLine)
			invoices.DELETE("/:id/lines/:line_id", h.Invoice.RemoveLine)
			invoices.POST("/:id/actions/:action", h.Invoice.Act)
		}

		export := office.Group("/export", download)
		{
			export.GET("/applications", h.Export.ExportApplications)
			export.GET("/payments", h.Export.ExportPayments)
		}
	}

	// ── portal ──
	portal := r.Group(handler.PortalBase, middleware.BodyLimit(cfg.Server.PortalBodyLimit), limit, authn)
	{
		portal.GET("", h.Portal.Home)

		portal.GET("/students", h.Portal.ListStudents)
		portal.POST("/students", h.Portal.CreateStudent)
		portal.GET("/students/:id", h.Portal.GetStudent)
		portal.PUT("/students/:id", h.Portal.UpdateStudent)
		portal.DELETE("/students/:id", h.Portal.DeleteStudent)

		portal.GET("/applications", h.Portal.ListApplications)
		portal.POST("/applications", h.Portal.CreateApplication)
		portal.GET("/applications/:id", h.Portal.GetApplication)
		portal.PUT("/applications/:id", h.Portal.UpdateApplication)
		portal.DELETE("/applications/:id", h.Portal.DeleteApplication)

		portal.GET("/documents", h.Portal.ListDocuments)
		portal.POST("/documents", h.Portal.CreateDocument)
		portal.GET("/documents/:id", h.Portal.GetDocument)
		portal.PUT("/documents/:id", h.Portal.UpdateDocument)
		portal.DELETE("/documents/:id", h.Portal.DeleteDocument)

		portal.GET("/payments", h.Portal.ListPayments)
		portal.POST("/payments", h.Portal.CreatePayment)
		portal.GET("/payments/:id", h.Portal.GetPayment)
		portal.PUT("/payments/:id", h.Portal.UpdatePayment)
		portal.DELETE("/payments/:id", h.Portal.DeletePayment)
	}

	return r
}
