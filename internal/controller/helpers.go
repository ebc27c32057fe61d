package controller

import (
	"adaptive_lms_backend/internal/service"
	"adaptive_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// currentCaller 未登录时已写入 401 响应
func currentCaller(ctx *gin.Context) (service.Caller, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return service.Caller{}, false
	}
	return service.Caller{UserID: claims.UserID, Role: claims.Role}, true
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := util.ParseID(ctx.Param(name))
	if err != nil {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return id, true
}
