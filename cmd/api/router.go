package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"petclinic/internal/config"
	"petclinic/internal/domain"
	"petclinic/internal/events"
	"petclinic/internal/middleware"
	"petclinic/internal/modules/assignment"
	"petclinic/internal/modules/booking"
	"petclinic/internal/modules/invoice"
	"petclinic/internal/modules/procedures"
	jwtsvc "petclinic/internal/pkg/jwt"
	"petclinic/internal/repository"
)

type Dependencies struct {
	DB        *gorm.DB
	Lease     assignment.Lease
	Publisher events.Publisher
	Hub       *events.Hub
}

var staffRoles = []string{
	string(domain.RoleDoctor),
	string(domain.RoleReceptionist),
	string(domain.RoleManager),
}

func NewRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	bookingRepo := repository.NewBookingRepository(deps.DB)
	customerRepo := repository.NewCustomerRepository(deps.DB)
	employeeRepo := repository.NewEmployeeRepository(deps.DB)
	invoiceRepo := repository.NewInvoiceRepository(deps.DB)

	selector := assignment.NewSelector(employeeRepo)

	bookingHandler := booking.NewHandler(
		booking.NewService(bookingRepo, customerRepo, selector, deps.Lease, deps.Publisher),
	)
	invoiceHandler := invoice.NewHandler(
		invoice.NewService(invoiceRepo, employeeRepo, deps.Publisher),
	)
	proceduresHandler := procedures.NewHandler(
		procedures.NewService(invoiceRepo, employeeRepo, deps.Publisher, cfg.Loyalty.PointUnit),
	)

	tokens := jwtsvc.New(cfg.JWT.Secret, cfg.JWT.TTL)
	staffOnly := middleware.RequireRoles(staffRoles...)

	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.CORS(cfg.CORS.AllowedOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := deps.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(tokens))
	{
		bookingHandler.RegisterRoutes(v1, staffOnly)

		staff := v1.Group("", staffOnly)
		invoiceHandler.RegisterRoutes(staff)
		proceduresHandler.RegisterRoutes(staff)

		if deps.Hub != nil {
			staff.GET("/ws/frontdesk", deps.Hub.ServeWS)
		}
	}

	return r
}
