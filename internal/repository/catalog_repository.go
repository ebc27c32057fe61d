package repository

import (
	"adaptive_lms_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

// CatalogRepository 课程/课时/测验/题目的只读查询
type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

func (r *CatalogRepository) WithTx(tx *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: tx}
}

func (r *CatalogRepository) FindCourse(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	if err := r.DB.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CatalogRepository) FindLesson(ctx context.Context, id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	if err := r.DB.WithContext(ctx).First(&lesson, id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *CatalogRepository) FindQuiz(ctx context.Context, id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := r.DB.WithContext(ctx).First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *CatalogRepository) FindQuizByLesson(ctx context.Context, lessonID uint) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := r.DB.WithContext(ctx).Where("lesson_id = ?", lessonID).First(&quiz).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *CatalogRepository) FindQuestion(ctx context.Context, id uint) (*model.Question, error) {
	var q model.Question
	if err := r.DB.WithContext(ctx).First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *CatalogRepository) ListQuestions(ctx context.Context, quizID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("sort_order ASC, id ASC").
		Find(&questions).Error
	return questions, err
}

func (r *CatalogRepository) CountQuestions(ctx context.Context, quizID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Question{}).Where("quiz_id = ?", quizID).Count(&count).Error
	return count, err
}

func (r *CatalogRepository) CountLessons(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Lesson{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}
