package controller

import (
	"adaptive_lms_backend/internal/service"
	"adaptive_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.QuizAttemptService
}

func NewAttemptController(attemptService *service.QuizAttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

// @Summary 开始测验作答
// @Tags 测验作答
// @Security ApiKeyAuth
// @Produce json
// @Param quizId path int true "测验ID"
// @Success 201 {object} util.Response
// @Router /api/quizzes/{quizId}/attempts/start [post]
func (c *AttemptController) Start(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	quizID, ok := pathID(ctx, "quizId")
	if !ok {
		return
	}

	resp, err := c.AttemptService.StartAttempt(ctx.Request.Context(), caller, quizID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, resp)
}

// @Summary 提交单题答案
// @Tags 测验作答
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param attemptId path int true "作答ID"
// @Param questionId path int true "题目ID"
// @Param body body service.RecordAnswerReq true "答案"
// @Success 201 {object} util.Response
// @Router /api/quiz-attempts/{attemptId}/questions/{questionId}/answer [post]
func (c *AttemptController) Answer(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	attemptID, ok := pathID(ctx, "attemptId")
	if !ok {
		return
	}
	questionID, ok := pathID(ctx, "questionId")
	if !ok {
		return
	}

	var req service.RecordAnswerReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.AttemptService.RecordAnswer(ctx.Request.Context(), caller, attemptID, questionID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, resp)
}

// @Summary 提交测验
// @Tags 测验作答
// @Security ApiKeyAuth
// @Produce json
// @Param attemptId path int true "作答ID"
// @Success 200 {object} util.Response
// @Router /api/quiz-attempts/{attemptId}/submit [post]
func (c *AttemptController) Submit(ctx *gin.Context) {
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

// @Summary 作答详情
// @Tags 测验作答
// @Security ApiKeyAuth
// @Produce json
// @Param attemptId path int true "作答ID"
// @Success 200 {object} util.Response
// @Router /api/quiz-attempts/{attemptId} [get]
func (c *AttemptController) Get(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	attemptID, ok := pathID(ctx, "attemptId")
	if !ok {
		return
	}

	detail, err := c.AttemptService.GetDetail(ctx.Request.Context(), caller, attemptID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary 测验作答记录
// @Tags 测验作答
// @Security ApiKeyAuth
// @Produce json
// @Param quizId path int true "测验ID"
// @Param userId query int false "用户ID（仅管理员）"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{quizId}/attempts [get]
func (c *AttemptController) ListForQuiz(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	quizID, ok := pathID(ctx, "quizId")
	if !ok {
		return
	}

	var userID uint
	if raw := ctx.Query("userId"); raw != "" {
		id, err := util.ParseID(raw)
		if err != nil {
			util.BadRequest(ctx, "invalid userId")
			return
		}
		userID = id
	}

	attempts, err := c.AttemptService.ListForQuiz(ctx.Request.Context(), caller, quizID, userID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}
