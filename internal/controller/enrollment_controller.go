package controller

import (
	"adaptive_lms_backend/internal/service"
	"adaptive_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

// @Summary 选课
// @Tags 选课
// @Security ApiKeyAuth
// @Produce json
// @Param courseId path int true "课程ID"
// @Success 201 {object} util.Response
// @Router /api/courses/{courseId}/enroll [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}

	enr, created, err := c.EnrollmentService.Enroll(ctx.Request.Context(), caller, courseID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	if created {
		util.Created(ctx, enr)
		return
	}
	util.Success(ctx, enr)
}

// @Summary 我的选课
// @Tags 选课
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/me/enrollments [get]
func (c *EnrollmentController) ListMine(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}

	list, err := c.EnrollmentService.ListMine(ctx.Request.Context(), caller)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary 退课
// @Tags 选课
// @Security ApiKeyAuth
// @Produce json
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{courseId}/enrollment/drop [patch]
func (c *EnrollmentController) Drop(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}

	if err := c.EnrollmentService.Drop(ctx.Request.Context(), caller, courseID); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"success": true})
}
