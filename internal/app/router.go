package app

import (
	"adaptive_lms_backend/docs"
	"adaptive_lms_backend/internal/config"
	"adaptive_lms_backend/internal/middleware"
	"adaptive_lms_backend/internal/model"
	"adaptive_lms_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/api/health", c.health.HealthCheck)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerAttemptRoutes(authGroup, c)
		a.registerPracticeRoutes(authGroup, c)
		a.registerEnrollmentRoutes(authGroup, c)
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/practice-sets", c.practice.CreateSet)
		admin.PATCH("/practice-sets/:practiceSetId/expire", c.practice.ExpireSet)
	}
}

func (a *App) registerAttemptRoutes(group *gin.RouterGroup, c *controllers) {
	group.POST("/quizzes/:quizId/attempts/start", c.attempt.Start)
	group.GET("/quizzes/:quizId/attempts", c.attempt.ListForQuiz)
	group.POST("/quiz-attempts/:attemptId/questions/:questionId/answer", c.attempt.Answer)
	group.POST("/quiz-attempts/:attemptId/submit", c.attempt.Submit)
	group.GET("/quiz-attempts/:attemptId", c.attempt.Get)
}

func (a *App) registerPracticeRoutes(group *gin.RouterGroup, c *controllers) {
	group.POST("/practice-sets/:practiceSetId/attempts/start", c.practice.StartAttempt)
	group.GET("/practice-sets/:practiceSetId", c.practice.GetSet)
	group.GET("/me/practice-sets", c.practice.ListMine)
	group.POST("/practice-attempts/:attemptId/answer", c.practice.Answer)
	group.POST("/practice-attempts/:attemptId/submit", c.practice.Submit)
	group.POST("/lessons/:lessonId/practice-requests", c.practice.RequestPractice)
}

func (a *App) registerEnrollmentRoutes(group *gin.RouterGroup, c *controllers) {
	group.POST("/courses/:courseId/enroll", c.enrollment.Enroll)
	group.GET("/me/enrollments", c.enrollment.ListMine)
	group.PATCH("/courses/:courseId/enrollment/drop", c.enrollment.Drop)
}
