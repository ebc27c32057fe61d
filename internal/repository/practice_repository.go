package repository

import (
	"adaptive_lms_backend/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PracticeSetRepository struct {
	DB *gorm.DB
}

func NewPracticeSetRepository(db *gorm.DB) *PracticeSetRepository {
	return &PracticeSetRepository{DB: db}
}

func (r *PracticeSetRepository) WithTx(tx *gorm.DB) *PracticeSetRepository {
	return &PracticeSetRepository{DB: tx}
}

func (r *PracticeSetRepository) Create(ctx context.Context, set *model.PracticeSet) error {
	return r.DB.WithContext(ctx).Create(set).Error
}

func (r *PracticeSetRepository) FindByID(ctx context.Context, id uint) (*model.PracticeSet, error) {
	var s model.PracticeSet
	if err := r.DB.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// ListActiveByUser 未过期的活动练习集，新生成的在前
func (r *PracticeSetRepository) ListActiveByUser(ctx context.Context, userID uint, now time.Time) ([]model.PracticeSet, error) {
	var list []model.PracticeSet
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.PracticeSetActive).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

func (r *PracticeSetRepository) Expire(ctx context.Context, id uint) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&model.PracticeSet{}).
		Where("id = ?", id).
		Update("status", model.PracticeSetExpired)
	return res.RowsAffected, res.Error
}

type PracticeAttemptRepository struct {
	DB *gorm.DB
}

func NewPracticeAttemptRepository(db *gorm.DB) *PracticeAttemptRepository {
	return &PracticeAttemptRepository{DB: db}
}

func (r *PracticeAttemptRepository) WithTx(tx *gorm.DB) *PracticeAttemptRepository {
	return &PracticeAttemptRepository{DB: tx}
}

func (r *PracticeAttemptRepository) Create(ctx context.Context, attempt *model.PracticeAttempt) error {
	return r.DB.WithContext(ctx).Create(attempt).Error
}

func (r *PracticeAttemptRepository) FindByID(ctx context.Context, id uint) (*model.PracticeAttempt, error) {
	var a model.PracticeAttempt
	if err := r.DB.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PracticeAttemptRepository) BumpOpen(ctx context.Context, id uint) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&model.PracticeAttempt{}).
		Where("id = ? AND submitted_at IS NULL", id).
		UpdateColumn("version", gorm.Expr("version + 1"))
	return res.RowsAffected, res.Error
}

func (r *PracticeAttemptRepository) CompleteSubmission(ctx context.Context, a *model.PracticeAttempt, expectedVersion int) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&model.PracticeAttempt{}).
		Where("id = ? AND submitted_at IS NULL AND version = ?", a.ID, expectedVersion).
		Updates(map[string]interface{}{
			"correct_count":    a.CorrectCount,
			"score_percent":    a.ScorePercent,
			"mastery_after":    a.MasteryAfter,
			"duration_seconds": a.DurationSeconds,
			"feedback_summary": a.FeedbackSummary,
			"submitted_at":     a.SubmittedAt,
			"version":          gorm.Expr("version + 1"),
		})
	return res.RowsAffected, res.Error
}

// UpsertAnswer 同一题目键覆盖旧答案
func (r *PracticeAttemptRepository) UpsertAnswer(ctx context.Context, ans *model.PracticeAnswer) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "practice_attempt_id"}, {Name: "question_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"selected_answer", "is_correct", "time_spent_ms", "updated_at"}),
	}).Create(ans).Error
}

func (r *PracticeAttemptRepository) ListAnswers(ctx context.Context, attemptID uint) ([]model.PracticeAnswer, error) {
	var list []model.PracticeAnswer
	err := r.DB.WithContext(ctx).
		Where("practice_attempt_id = ?", attemptID).
		Order("id ASC").
		Find(&list).Error
	return list, err
}
