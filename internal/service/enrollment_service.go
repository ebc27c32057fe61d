package service

import (
	"adaptive_lms_backend/internal/model"
	"adaptive_lms_backend/internal/repository"
	"adaptive_lms_backend/internal/util"
	"adaptive_lms_backend/pkg/logger"
	"context"
	"time"

	"go.uber.org/zap"
)

type EnrollmentService struct {
	Catalog     *repository.CatalogRepository
	Enrollments *repository.EnrollmentRepository

	now func() time.Time
}

func NewEnrollmentService(catalog *repository.CatalogRepository, enrollments *repository.EnrollmentRepository) *EnrollmentService {
	return &EnrollmentService{Catalog: catalog, Enrollments: enrollments, now: time.Now}
}

// Enroll 不存在则创建，已存在直接返回；并发创建冲突时读回胜出方的记录。
// created 表示本次调用是否新建
func (s *EnrollmentService) Enroll(ctx context.Context, caller Caller, courseID uint) (enr *model.Enrollment, created bool, err error) {
	course, err := s.Catalog.FindCourse(ctx, courseID)
	if err != nil {
		return nil, false, notFoundAs(err, util.ErrCourseNotFound)
	}
	if !caller.IsOperator() && !course.Published {
		return nil, false, util.ErrCourseNotFound
	}

	existing, err := s.Enrollments.Find(ctx, caller.UserID, courseID)
	if err == nil {
		return existing, false, nil
	}
	if !repository.IsNotFound(err) {
		return nil, false, err
	}

	enr = &model.Enrollment{
		UserID:    caller.UserID,
		CourseID:  courseID,
		Status:    model.EnrollmentEnrolled,
		StartedAt: s.now(),
	}
	if err := s.Enrollments.Create(ctx, enr); err != nil {
		if !repository.IsDuplicateKey(err) {
			return nil, false, err
		}
		winner, findErr := s.Enrollments.Find(ctx, caller.UserID, courseID)
		if findErr != nil {
			return nil, false, findErr
		}
		logger.Log.Debug("Enrollment race resolved by read-back",
			zap.Uint("userId", caller.UserID),
			zap.Uint("courseId", courseID))
		return winner, false, nil
	}

	logger.Log.Info("User enrolled",
		zap.Uint("userId", caller.UserID),
		zap.Uint("courseId", courseID))
	return enr, true, nil
}

func (s *EnrollmentService) ListMine(ctx context.Context, caller Caller) ([]model.Enrollment, error) {
	return s.Enrollments.ListByUser(ctx, caller.UserID)
}

// Drop 退课后状态为 dropped，不再满足开始测验的选课要求
func (s *EnrollmentService) Drop(ctx context.Context, caller Caller, courseID uint) error {
	enr, err := s.Enrollments.Find(ctx, caller.UserID, courseID)
	if err != nil {
		return notFoundAs(err, util.ErrEnrollmentNotFound)
	}
	return s.Enrollments.UpdateStatus(ctx, enr.ID, model.EnrollmentDropped)
}
