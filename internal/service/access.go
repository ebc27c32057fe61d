package service

import (
	"adaptive_lms_backend/internal/model"
	"adaptive_lms_backend/internal/repository"
	"adaptive_lms_backend/internal/util"
	"context"
)

// Caller 当前请求的身份，由鉴权中间件解析
type Caller struct {
	UserID uint
	Role   model.UserRole
}

// IsOperator 只有管理员可以绕过归属与选课校验
func (c Caller) IsOperator() bool {
	return c.Role == model.Admin
}

// CanActAsOwner 资源归属判断的唯一入口
func CanActAsOwner(c Caller, ownerID uint) bool {
	return c.IsOperator() || c.UserID == ownerID
}

// AccessPolicy 课程访问规则：未发布课程对学生不可见，未选课禁止访问
type AccessPolicy struct {
	Enrollments *repository.EnrollmentRepository
}

func NewAccessPolicy(enrollments *repository.EnrollmentRepository) *AccessPolicy {
	return &AccessPolicy{Enrollments: enrollments}
}

// CheckCourse hidden 为课程不可见时返回的错误，保证调用方无法据此探测资源是否存在
func (p *AccessPolicy) CheckCourse(ctx context.Context, caller Caller, course *model.Course, hidden error) error {
	if caller.IsOperator() {
		return nil
	}
	if !course.Published {
		return hidden
	}
	enr, err := p.Enrollments.Find(ctx, caller.UserID, course.ID)
	if err != nil {
		if repository.IsNotFound(err) {
			return util.ErrNotEnrolled
		}
		return err
	}
	if enr.Status != model.EnrollmentEnrolled {
		return util.ErrNotEnrolled
	}
	return nil
}
