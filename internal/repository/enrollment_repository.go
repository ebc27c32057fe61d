package repository

import (
	"adaptive_lms_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) WithTx(tx *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: tx}
}

func (r *EnrollmentRepository) Find(ctx context.Context, userID, courseID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create 依赖 (user_id, course_id) 唯一索引，并发重复时返回 duplicate key 错误
func (r *EnrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	return r.DB.WithContext(ctx).Create(e).Error
}

func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID uint) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.DB.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id uint, status model.EnrollmentStatus) error {
	return r.DB.WithContext(ctx).Model(&model.Enrollment{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// UpdateProgress 写入缓存的课程进度；没有选课记录时不做任何事
func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, userID, courseID uint, percent int, lastLessonID uint) error {
	return r.DB.WithContext(ctx).Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Updates(map[string]interface{}{
			"progress_percent": percent,
			"last_lesson_id":   lastLessonID,
		}).Error
}
