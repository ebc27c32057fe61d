package repository

import (
	"adaptive_lms_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

type QuizAttemptRepository struct {
	DB *gorm.DB
}

func NewQuizAttemptRepository(db *gorm.DB) *QuizAttemptRepository {
	return &QuizAttemptRepository{DB: db}
}

func (r *QuizAttemptRepository) WithTx(tx *gorm.DB) *QuizAttemptRepository {
	return &QuizAttemptRepository{DB: tx}
}

func (r *QuizAttemptRepository) Create(ctx context.Context, attempt *model.QuizAttempt) error {
	return r.DB.WithContext(ctx).Create(attempt).Error
}

func (r *QuizAttemptRepository) FindByID(ctx context.Context, id uint) (*model.QuizAttempt, error) {
	var a model.QuizAttempt
	if err := r.DB.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *QuizAttemptRepository) ListByUserAndQuiz(ctx context.Context, userID, quizID uint) ([]model.QuizAttempt, error) {
	var list []model.QuizAttempt
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("started_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

// LatestSubmitted 用户在某测验上最近一次已提交的作答
func (r *QuizAttemptRepository) LatestSubmitted(ctx context.Context, userID, quizID uint) (*model.QuizAttempt, error) {
	var a model.QuizAttempt
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ? AND submitted_at IS NOT NULL", userID, quizID).
		Order("submitted_at DESC, id DESC").
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// BumpOpen 未提交时版本号 +1，返回受影响行数；0 表示已提交或不存在
func (r *QuizAttemptRepository) BumpOpen(ctx context.Context, id uint) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&model.QuizAttempt{}).
		Where("id = ? AND submitted_at IS NULL", id).
		UpdateColumn("version", gorm.Expr("version + 1"))
	return res.RowsAffected, res.Error
}

// CompleteSubmission 结果字段与 submitted_at 在同一条 UPDATE 中写入，
// 仅当作答仍未提交且版本号未变化时生效
func (r *QuizAttemptRepository) CompleteSubmission(ctx context.Context, a *model.QuizAttempt, expectedVersion int) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&model.QuizAttempt{}).
		Where("id = ? AND submitted_at IS NULL AND version = ?", a.ID, expectedVersion).
		Updates(map[string]interface{}{
			"correct_count":  a.CorrectCount,
			"score_percent":  a.ScorePercent,
			"weak_topics":    a.WeakTopics,
			"mastery_level":  a.MasteryLevel,
			"total_time_sec": a.TotalTimeSec,
			"submitted_at":   a.SubmittedAt,
			"version":        gorm.Expr("version + 1"),
		})
	return res.RowsAffected, res.Error
}

type AnswerRecordRepository struct {
	DB *gorm.DB
}

func NewAnswerRecordRepository(db *gorm.DB) *AnswerRecordRepository {
	return &AnswerRecordRepository{DB: db}
}

func (r *AnswerRecordRepository) WithTx(tx *gorm.DB) *AnswerRecordRepository {
	return &AnswerRecordRepository{DB: tx}
}

// Create 只追加；(attempt, question, try) 重复由唯一索引拒绝
func (r *AnswerRecordRepository) Create(ctx context.Context, rec *model.AnswerRecord) error {
	return r.DB.WithContext(ctx).Create(rec).Error
}

func (r *AnswerRecordRepository) ListByAttempt(ctx context.Context, attemptID uint) ([]model.AnswerRecord, error) {
	var list []model.AnswerRecord
	err := r.DB.WithContext(ctx).
		Where("quiz_attempt_id = ?", attemptID).
		Order("question_id ASC, try_number DESC, created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}
