package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/edulink/internal/config"
	"github.com/stemsi/edulink/internal/handler"
	"github.com/stemsi/edulink/internal/middleware"
	"github.com/stemsi/edulink/internal/model"
	"github.com/stemsi/edulink/internal/response"
	"github.com/stemsi/edulink/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Health       *handler.HealthHandler
	Person       *handler.PersonHandler
	Relationship *handler.RelationshipHandler
	School       *handler.SchoolHandler
	IdentityFlag *handler.IdentityFlagHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// searchLimiter throttles the typeahead endpoint.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	searchLimiter *middleware.RateLimiter,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", handlers.Health.Health)

	api := router.Group("/api/v1")
	api.Use(middleware.RequireOperatorJWT(authService))

	read := middleware.RequirePermission(model.PermissionPersonsRead)
	write := middleware.RequirePermission(model.PermissionPersonsWrite)
	link := middleware.RequirePermission(model.PermissionRelationshipsWrite)
	review := middleware.RequirePermission(model.PermissionIdentityFlagsReview)

	// ─── 1. Persons (tenant-agnostic) ──────────────────────────────────
	persons := api.Group("/persons")
	{
		persons.GET("/search", read, searchLimiter.Middleware(), handlers.Person.Search)
		persons.POST("/check-existing", read, handlers.Person.CheckExisting)
		persons.POST("", write, handlers.Person.Register)
		persons.GET("/:id", read, handlers.Person.Get)
		persons.PUT("/:id/contact", write, handlers.Person.UpdateContact)
		persons.GET("/:id/relationships", read, handlers.Person.Relationships)
		persons.GET("/:id/children", read, handlers.Person.Children)
		persons.GET("/:id/assignments", read, handlers.Person.Assignments)
		persons.GET("/:id/statistics", read, handlers.Person.Statistics)
	}

	// ─── 2. Schools (operator must be scoped to :school_id) ────────────
	schools := api.Group("/schools/:school_id")
	schools.Use(middleware.RequireSchoolScope("school_id"))
	{
		schools.GET("", read, handlers.School.GetSchool)
		schools.GET("/students", read, handlers.School.ListStudents)
		schools.GET("/students/:id", read, handlers.School.GetStudent)

		schools.POST("/guardians", link, handlers.Relationship.LinkGuardian)
		schools.POST("/staff", link, handlers.Relationship.LinkStaff)
		schools.POST("/relationships/:id/deactivate", link, handlers.Relationship.Deactivate)
	}

	// ─── 3. Identity review queue ──────────────────────────────────────
	flags := api.Group("/identity-flags")
	flags.Use(review)
	{
		flags.GET("", handlers.IdentityFlag.List)
		flags.POST("/:id/resolve", handlers.IdentityFlag.Resolve)
	}

	return router
}
