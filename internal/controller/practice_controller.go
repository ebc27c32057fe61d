package controller

import (
	"adaptive_lms_backend/internal/service"
	"adaptive_lms_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type PracticeController struct {
	AttemptService *service.PracticeAttemptService
	SetService     *service.PracticeSetService
}

func NewPracticeController(attemptService *service.PracticeAttemptService, setService *service.PracticeSetService) *PracticeController {
	return &PracticeController{AttemptService: attemptService, SetService: setService}
}

// @Summary 开始练习
// @Tags 练习
// @Security ApiKeyAuth
// @Produce json
// @Param practiceSetId path int true "练习集ID"
// @Success 201 {object} util.Response
// @Router /api/practice-sets/{practiceSetId}/attempts/start [post]
func (c *PracticeController) StartAttempt(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	setID, ok := pathID(ctx, "practiceSetId")
	if !ok {
		return
	}

	resp, err := c.AttemptService.StartAttempt(ctx.Request.Context(), caller, setID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, resp)
}

// @Summary 提交练习题答案
// @Tags 练习
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param attemptId path int true "练习作答ID"
// @Param body body service.PracticeAnswerReq true "答案"
// @Success 201 {object} util.Response
// @Router /api/practice-attempts/{attemptId}/answer [post]
func (c *PracticeController) Answer(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	attemptID, ok := pathID(ctx, "attemptId")
	if !ok {
		return
	}

	var req service.PracticeAnswerReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.AttemptService.RecordAnswer(ctx.Request.Context(), caller, attemptID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, resp)
}

// @Summary 提交练习
// @Tags 练习
// @Security ApiKeyAuth
// @Produce json
// @Param attemptId path int true "练习作答ID"
// @Success 200 {object} util.Response
// @Router /api/practice-attempts/{attemptId}/submit [post]
func (c *PracticeController) Submit(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	attemptID, ok := pathID(ctx, "attemptId")
	if !ok {
		return
	}

	resp, err := c.AttemptService.Submit(ctx.Request.Context(), caller, attemptID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// @Summary 练习集详情
// @Tags 练习
// @Security ApiKeyAuth
// @Produce json
// @Param practiceSetId path int true "练习集ID"
// @Success 200 {object} util.Response
// @Router /api/practice-sets/{practiceSetId} [get]
func (c *PracticeController) GetSet(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	setID, ok := pathID(ctx, "practiceSetId")
	if !ok {
		return
	}

	set, err := c.SetService.Get(ctx.Request.Context(), caller, setID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, set)
}

// @Summary 我的练习集
// @Tags 练习
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/me/practice-sets [get]
func (c *PracticeController) ListMine(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}

	sets, err := c.SetService.ListActive(ctx.Request.Context(), caller)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, sets)
}

// @Summary 申请课时练习
// @Tags 练习
// @Security ApiKeyAuth
// @Produce json
// @Param lessonId path int true "课时ID"
// @Success 202 {object} util.Response
// @Router /api/lessons/{lessonId}/practice-requests [post]
func (c *PracticeController) RequestPractice(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	lessonID, ok := pathID(ctx, "lessonId")
	if !ok {
		return
	}

	resp, err := c.SetService.RequestManual(ctx.Request.Context(), caller, lessonID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusAccepted, util.Response{Code: http.StatusAccepted, Message: "accepted", Data: resp})
}

// @Summary 生成器回传练习集
// @Tags 练习管理
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body service.CreatePracticeSetReq true "练习集"
// @Success 201 {object} util.Response
// @Router /api/admin/practice-sets [post]
func (c *PracticeController) CreateSet(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}

	var req service.CreatePracticeSetReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	set, err := c.SetService.Create(ctx.Request.Context(), caller, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, set)
}

// @Summary 使练习集过期
// @Tags 练习管理
// @Security ApiKeyAuth
// @Produce json
// @Param practiceSetId path int true "练习集ID"
// @Success 200 {object} util.Response
// @Router /api/admin/practice-sets/{practiceSetId}/expire [patch]
func (c *PracticeController) ExpireSet(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	setID, ok := pathID(ctx, "practiceSetId")
	if !ok {
		return
	}

	if err := c.SetService.Expire(ctx.Request.Context(), caller, setID); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"practiceSetId": setID, "status": "expired"})
}
