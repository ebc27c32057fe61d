package util

import "errors"

// 错误类别，控制器据此映射 HTTP 状态码
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidState     = errors.New("invalid state")
	ErrConflict         = errors.New("conflict")
	ErrValidation       = errors.New("validation failed")
	ErrMismatchedParent = errors.New("mismatched parent")
)

// DomainError 带类别的业务错误，errors.Is(err, ErrNotFound) 等判断依赖 Unwrap
type DomainError struct {
	Kind    error
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Kind
}

func NewError(kind error, message string) error {
	return &DomainError{Kind: kind, Message: message}
}

var (
	ErrCourseNotFound      = NewError(ErrNotFound, "course not found")
	ErrLessonNotFound      = NewError(ErrNotFound, "lesson not found")
	ErrQuizNotFound        = NewError(ErrNotFound, "quiz not found")
	ErrQuestionNotFound    = NewError(ErrNotFound, "question not found")
	ErrAttemptNotFound     = NewError(ErrNotFound, "attempt not found")
	ErrPracticeSetNotFound = NewError(ErrNotFound, "practice set not found")
	ErrEnrollmentNotFound  = NewError(ErrNotFound, "enrollment not found")

	ErrPermissionDenied = NewError(ErrForbidden, "permission denied")
	ErrNotEnrolled      = NewError(ErrForbidden, "not enrolled in this course")

	ErrAttemptSubmitted      = NewError(ErrInvalidState, "attempt already submitted")
	ErrQuizHasNoQuestions    = NewError(ErrInvalidState, "quiz has no questions")
	ErrPracticeSetInactive   = NewError(ErrInvalidState, "practice set is not active")
	ErrPracticeSetNoQuestion = NewError(ErrInvalidState, "practice set has no questions")

	ErrDuplicateTry      = NewError(ErrConflict, "answer already recorded for this try number")
	ErrAttemptChanged    = NewError(ErrConflict, "attempt changed during submission, please retry")
	ErrQuestionNotInQuiz = NewError(ErrMismatchedParent, "question does not belong to this quiz")
)

// Validation 构造参数校验错误
func Validation(message string) error {
	return NewError(ErrValidation, message)
}
