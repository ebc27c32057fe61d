package service

import (
	"adaptive_lms_backend/internal/config"
	"adaptive_lms_backend/internal/model"
	"fmt"
	"sort"
	"sync/atomic"
)

const unknownTopic = "unknown"

// ScoringPolicy 及格线与掌握度阈值
type ScoringPolicy struct {
	DefaultPassPercent int
	MasteryHigh        int
	MasteryMedium      int
}

func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{DefaultPassPercent: 70, MasteryHigh: 80, MasteryMedium: 50}
}

func ScoringPolicyFromConfig(cfg config.ScoringConfig) ScoringPolicy {
	return ScoringPolicy{
		DefaultPassPercent: cfg.DefaultPassPercent,
		MasteryHigh:        cfg.MasteryHigh,
		MasteryMedium:      cfg.MasteryMedium,
	}
}

// Mastery 先判断 high 再判断 medium
func (p ScoringPolicy) Mastery(scorePercent int) model.MasteryLevel {
	if scorePercent >= p.MasteryHigh {
		return model.MasteryHigh
	}
	if scorePercent >= p.MasteryMedium {
		return model.MasteryMedium
	}
	return model.MasteryLow
}

// Passed 使用测验自身的及格线，测验缺失时退回默认值
func (p ScoringPolicy) Passed(scorePercent int, quiz *model.Quiz) bool {
	threshold := p.DefaultPassPercent
	if quiz != nil {
		threshold = quiz.PassPercent
	}
	return scorePercent >= threshold
}

// PolicyStore 配置热更新时整体替换策略
type PolicyStore struct {
	current atomic.Pointer[ScoringPolicy]
}

func NewPolicyStore(p ScoringPolicy) *PolicyStore {
	s := &PolicyStore{}
	s.current.Store(&p)
	return s
}

func (s *PolicyStore) Load() ScoringPolicy {
	return *s.current.Load()
}

func (s *PolicyStore) Update(cfg config.ScoringConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("scoring policy rejected: %w", err)
	}
	p := ScoringPolicyFromConfig(cfg)
	s.current.Store(&p)
	return nil
}

// RoundPercent round(correct/total*100)，按精确有理数四舍五入（.5 进位）
func RoundPercent(correct, total int) int {
	if total <= 0 || correct <= 0 {
		return 0
	}
	// 开始后新增的题目可能让正确数超过快照题数
	if correct > total {
		correct = total
	}
	return (200*correct + total) / (2 * total)
}

// MsToSeconds 毫秒转秒，四舍五入
func MsToSeconds(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int((ms + 500) / 1000)
}

type topicStat struct {
	wrong int
	total int
}

// QuizScore 提交时由答题流水推导出的全部结果
type QuizScore struct {
	TotalQuestions int
	AnsweredCount  int
	CorrectCount   int
	ScorePercent   int
	WeakTopics     []string
	MasteryLevel   model.MasteryLevel
	TotalTimeSec   int
}

// ScoreQuiz 得分分母为开始时的题目快照；薄弱知识点只统计有作答的题目。
// 未作答题目计为错误但不进入任何知识点统计。总耗时累加所有 try
func (p ScoringPolicy) ScoreQuiz(totalQuestions int, records []model.AnswerRecord) QuizScore {
	latest := LatestPerQuestion(records)

	correct := 0
	topics := make(map[string]*topicStat)
	for _, rec := range latest {
		if rec.IsCorrect {
			correct++
		}
		topic := rec.TopicTag
		if topic == "" {
			topic = unknownTopic
		}
		st, ok := topics[topic]
		if !ok {
			st = &topicStat{}
			topics[topic] = st
		}
		st.total++
		if !rec.IsCorrect {
			st.wrong++
		}
	}

	weak := make([]string, 0)
	for topic, st := range topics {
		// wrong/total >= 1/2
		if st.total > 0 && 2*st.wrong >= st.total {
			weak = append(weak, topic)
		}
	}
	sort.Strings(weak)

	var totalMs int64
	for _, rec := range records {
		totalMs += rec.TimeSpentMs
	}

	score := RoundPercent(correct, totalQuestions)
	return QuizScore{
		TotalQuestions: totalQuestions,
		AnsweredCount:  len(latest),
		CorrectCount:   correct,
		ScorePercent:   score,
		WeakTopics:     weak,
		MasteryLevel:   p.Mastery(score),
		TotalTimeSec:   MsToSeconds(totalMs),
	}
}

const perfectPracticeFeedback = "Great job. You answered all practice questions correctly."

func practiceFeedback(missed int) string {
	if missed == 0 {
		return perfectPracticeFeedback
	}
	return fmt.Sprintf("You missed %d practice question(s). Review the explanations and retry.", missed)
}

type PracticeScore struct {
	TotalQuestions  int
	AnsweredCount   int
	CorrectCount    int
	ScorePercent    int
	MasteryAfter    model.MasteryLevel
	DurationSeconds int
	FeedbackSummary string
}

// ScorePractice 每个题目键最多一条答案；耗时只累加已存在的答案
func (p ScoringPolicy) ScorePractice(totalQuestions int, questions []model.PracticeQuestion, answers []model.PracticeAnswer) PracticeScore {
	if totalQuestions <= 0 {
		totalQuestions = len(questions)
	}

	byKey := make(map[string]model.PracticeAnswer, len(answers))
	var totalMs int64
	for _, a := range answers {
		byKey[a.QuestionKey] = a
		totalMs += a.TimeSpentMs
	}

	correct, missed := 0, 0
	for _, q := range questions {
		a, ok := byKey[q.QuestionKey]
		if ok && a.IsCorrect {
			correct++
		} else {
			missed++
		}
	}

	score := RoundPercent(correct, totalQuestions)
	return PracticeScore{
		TotalQuestions:  totalQuestions,
		AnsweredCount:   len(byKey),
		CorrectCount:    correct,
		ScorePercent:    score,
		MasteryAfter:    p.Mastery(score),
		DurationSeconds: MsToSeconds(totalMs),
		FeedbackSummary: practiceFeedback(missed),
	}
}
