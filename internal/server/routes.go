// Package server contain implementation of go-gin-server and each route handlers
package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	// Init swagger doc
	_ "github.com/Sseankzs/openprofile/docs"
	"github.com/Sseankzs/openprofile/internal/auth"
	"github.com/Sseankzs/openprofile/internal/controller/account"
	"github.com/Sseankzs/openprofile/internal/controller/applicant"
	"github.com/Sseankzs/openprofile/internal/controller/application"
	"github.com/Sseankzs/openprofile/internal/controller/company"
	"github.com/Sseankzs/openprofile/internal/controller/document"
	"github.com/Sseankzs/openprofile/internal/controller/file"
	"github.com/Sseankzs/openprofile/internal/controller/job"
	"github.com/Sseankzs/openprofile/internal/middleware"
	"github.com/Sseankzs/openprofile/internal/model"
)

func allowOrigins() []string {
	origins := []string{}
	for _, o := range strings.Split(os.Getenv("ALLOW_ORIGIN"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = append(origins, "http://localhost:3000")
	}
	return origins
}

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *Server) RegisterRoutes() http.Handler {
	r := gin.New()

	lAuth := auth.NewLocalAuthHandler(s.DB)
	logout := auth.NewLogoutController(s.Blacklist)
	accountCtrl := account.NewAccountController(s.DB)
	applicantCtrl := applicant.NewApplicantController(s.DB, s.Storage)
	companyCtrl := company.NewCompanyController(s.DB, s.Storage)
	jobCtrl := job.NewJobController(s.DB)
	applicationCtrl := application.NewApplicationController(s.DB, s.Storage, s.Analyzer)
	documentCtrl := document.NewDocumentController(s.DB, s.Storage)
	fileCtrl := file.NewFileController(s.Storage)

	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(zap.L()),
		middleware.NewMetricsBuilder(s.Registry).Build(),
		middleware.SafeHeader(),
		cors.New(cors.Config{
			AllowOrigins:     allowOrigins(),
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
			AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
		}),
	)

	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{})))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/file/:bucket/*object", fileCtrl.GetFile)

		authRoute := v1.Group("/auth", middleware.EnvRateLimitMiddleware())
		{
			authRoute.POST("register", lAuth.LocalRegisterHandler)
			authRoute.POST("login", lAuth.LocalLoginHandler)
			authRoute.POST("logout", middleware.JwtBlacklistCheck(s.Blacklist), middleware.RequireAuth(s.DB), logout.LogoutHandler)
		}

		needAuth := v1.Group("", middleware.JwtBlacklistCheck(s.Blacklist), middleware.RequireAuth(s.DB))
		{
			me := needAuth.Group("/me")
			{
				me.GET("", accountCtrl.GetMe)
				me.PATCH("/role", accountCtrl.SetRole)
				me.POST("/role/switch", accountCtrl.SwitchRole)
			}

			jobRoute := needAuth.Group("/jobs")
			{
				jobRoute.GET("", jobCtrl.SearchJobs)
				jobRoute.GET("/:id", jobCtrl.GetJob)
				jobRoute.POST("/:id/apply",
					middleware.CheckRole(model.RoleApplicant),
					middleware.SizeLimit(application.MaxApplicationSize),
					applicationCtrl.Apply)

				ownJobs := jobRoute.Group("", middleware.CheckRole(model.RoleCompany))
				ownJobs.POST("", jobCtrl.CreateJob)
				ownJobs.PATCH("/:id", jobCtrl.EditJob)
				ownJobs.DELETE("/:id", jobCtrl.DeleteJob)
				ownJobs.GET("/:id/applicants", applicationCtrl.ListApplicants)
			}

			applicationRoute := needAuth.Group("/applications")
			{
				applicationRoute.GET("/me", middleware.CheckRole(model.RoleApplicant), applicationCtrl.ListMyApplications)
				applicationRoute.GET("/:id", applicationCtrl.GetApplication)
			}

			needApplicant := needAuth.Group("", middleware.CheckRole(model.RoleApplicant))
			{
				needApplicant.GET("/documents", documentCtrl.ListDocuments)
				needApplicant.POST("/documents", middleware.SizeLimit(document.MaxDocumentSize), documentCtrl.UploadDocument)

				needApplicant.GET("/applicant/profile", applicantCtrl.GetProfile)
				needApplicant.PUT("/applicant/profile", applicantCtrl.UpsertProfile)
				needApplicant.POST("/applicant/profile/image", middleware.SizeLimit(applicant.MaxImageSize), applicantCtrl.UploadImage)
			}

			companyRoute := needAuth.Group("/company")
			{
				companyRoute.GET("/:id", companyCtrl.GetCompanyByID)

				mine := companyRoute.Group("", middleware.CheckRole(model.RoleCompany))
				mine.GET("/profile", companyCtrl.GetProfile)
				mine.POST("/profile", middleware.SizeLimit(company.MaxLogoSize), companyCtrl.CreateProfile)
				mine.PATCH("/profile", companyCtrl.EditProfile)
				mine.POST("/profile/logo", middleware.SizeLimit(company.MaxLogoSize), companyCtrl.UploadLogo)
				mine.GET("/jobs", companyCtrl.ListMyJobs)
			}
		}
	}

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	stats := s.DB.Health()
	if stats["status"] != "up" {
		c.JSON(http.StatusServiceUnavailable, stats)
		return
	}
	c.JSON(http.StatusOK, stats)
}
