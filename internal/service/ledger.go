package service

import "adaptive_lms_backend/internal/model"

// LatestPerQuestion 从答题流水中为每道题选出权威答案：
// try 号最大者优先，其次写入时间最新，最后按 ID
func LatestPerQuestion(records []model.AnswerRecord) map[uint]model.AnswerRecord {
	latest := make(map[uint]model.AnswerRecord, len(records))
	for _, rec := range records {
		cur, ok := latest[rec.QuestionID]
		if !ok || supersedes(rec, cur) {
			latest[rec.QuestionID] = rec
		}
	}
	return latest
}

func supersedes(a, b model.AnswerRecord) bool {
	if a.TryNumber != b.TryNumber {
		return a.TryNumber > b.TryNumber
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
