package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-roster-api/api/swagger"
	"github.com/noah-isme/school-roster-api/internal/handler"
	"github.com/noah-isme/school-roster-api/internal/middleware"
	"github.com/noah-isme/school-roster-api/internal/service"
	"github.com/noah-isme/school-roster-api/pkg/config"
	"github.com/noah-isme/school-roster-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-roster-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-roster-api/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, app *application, ops *handler.MetricsHandler, verifier middleware.TokenVerifier, metrics *service.MetricsService, logr *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	school := r.Group(cfg.APIPrefix+"/schools/:"+middleware.SchoolParam, middleware.JWT(verifier), middleware.TenantGuard())
	staff := middleware.RequireRoles(middleware.SchoolStaff...)
	admins := middleware.RequireRoles(middleware.Admins...)

	school.GET("/class-levels", staff, app.classes.ListLevels)
	school.POST("/class-levels", admins, app.classes.CreateLevel)
	school.GET("/classes", staff, app.classes.List)
	school.POST("/classes", admins, app.classes.Create)
	school.GET("/classes/:classId", staff, app.classes.Get)
	school.PATCH("/classes/:classId", admins, app.classes.Update)
	school.DELETE("/classes/:classId", admins, app.classes.Delete)

	school.GET("/classes/:classId/teachers", staff, app.teachers.List)
	school.POST("/classes/:classId/teachers", admins, app.teachers.Assign)
	school.DELETE("/classes/:classId/teachers/:teacherId", admins, app.teachers.Remove)

	school.GET("/teachers/workload", admins, app.workload.Rank)

	school.GET("/classes/:classId/timetable", staff, app.timetable.Get)
	school.PUT("/classes/:classId/timetable", admins, app.timetable.Save)
	school.POST("/classes/:classId/timetable/autofill", admins, app.timetable.AutoFill)
	school.POST("/classes/:classId/timetable/rows", admins, app.timetable.InsertRow)
	school.GET("/classes/:classId/timetable/export", staff, app.timetable.Export)

	return r
}
