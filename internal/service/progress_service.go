package service

import (
	"adaptive_lms_backend/internal/model"
	"adaptive_lms_backend/internal/repository"
	"adaptive_lms_backend/pkg/logger"
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressService 测验提交后同步课时完成状态与课程进度，是这两类记录唯一的写入方
type ProgressService struct {
	Catalog     *repository.CatalogRepository
	Progress    *repository.LessonProgressRepository
	Enrollments *repository.EnrollmentRepository
}

func NewProgressService(
	catalog *repository.CatalogRepository,
	progress *repository.LessonProgressRepository,
	enrollments *repository.EnrollmentRepository,
) *ProgressService {
	return &ProgressService{Catalog: catalog, Progress: progress, Enrollments: enrollments}
}

// Propagate 在提交事务内执行：通过则 upsert 课时完成，然后重算课程进度百分比
func (s *ProgressService) Propagate(ctx context.Context, tx *gorm.DB, attempt *model.QuizAttempt, passed bool, now time.Time) (int, error) {
	progress := s.Progress.WithTx(tx)
	catalog := s.Catalog.WithTx(tx)
	enrollments := s.Enrollments.WithTx(tx)

	if passed {
		if err := progress.MarkCompleted(ctx, attempt.UserID, attempt.CourseID, attempt.LessonID, now); err != nil {
			return 0, err
		}
	}

	totalLessons, err := catalog.CountLessons(ctx, attempt.CourseID)
	if err != nil {
		return 0, err
	}
	completed, err := progress.CountCompleted(ctx, attempt.UserID, attempt.CourseID)
	if err != nil {
		return 0, err
	}

	percent := RoundPercent(int(completed), int(totalLessons))
	if err := enrollments.UpdateProgress(ctx, attempt.UserID, attempt.CourseID, percent, attempt.LessonID); err != nil {
		return 0, err
	}

	logger.Log.Debug("Course progress updated",
		zap.Uint("userId", attempt.UserID),
		zap.Uint("courseId", attempt.CourseID),
		zap.Uint("lessonId", attempt.LessonID),
		zap.Bool("passed", passed),
		zap.Int("progressPercent", percent))
	return percent, nil
}
