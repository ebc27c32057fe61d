package repository

import (
	"adaptive_lms_backend/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LessonProgressRepository struct {
	DB *gorm.DB
}

func NewLessonProgressRepository(db *gorm.DB) *LessonProgressRepository {
	return &LessonProgressRepository{DB: db}
}

func (r *LessonProgressRepository) WithTx(tx *gorm.DB) *LessonProgressRepository {
	return &LessonProgressRepository{DB: tx}
}

// MarkCompleted 按 (user_id, lesson_id) upsert 为已完成，重复调用保留首次完成时间
func (r *LessonProgressRepository) MarkCompleted(ctx context.Context, userID, courseID, lessonID uint, at time.Time) error {
	record := model.LessonProgress{
		UserID:      userID,
		CourseID:    courseID,
		LessonID:    lessonID,
		Status:      model.LessonCompleted,
		CompletedAt: &at,
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":       model.LessonCompleted,
			"course_id":    courseID,
			"completed_at": gorm.Expr("COALESCE(completed_at, ?)", at),
			"updated_at":   at,
		}),
	}).Create(&record).Error
}

func (r *LessonProgressRepository) Find(ctx context.Context, userID, lessonID uint) (*model.LessonProgress, error) {
	var p model.LessonProgress
	err := r.DB.WithContext(ctx).Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *LessonProgressRepository) CountCompleted(ctx context.Context, userID, courseID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.LessonProgress{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, model.LessonCompleted).
		Count(&count).Error
	return count, err
}
