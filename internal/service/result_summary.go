package service

import (
	"math"

	"github.com/noah-isme/sma-gradebook-api/internal/dto"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

const (
	examWeight       = 0.8
	assignmentWeight = 0.2
	passingAverage   = 10
	unknownSubject   = "Unknown Subject"
)

// SummarizeResults folds result rows into one entry per subject, in first-seen order.
// A later row of the same kind overwrites an earlier one.
func SummarizeResults(rows []models.ResultDetail) []dto.SubjectResult {
	order := make([]string, 0)
	bySubject := make(map[string]*dto.SubjectResult)

	for _, row := range rows {
		name := unknownSubject
		if row.SubjectName != nil && *row.SubjectName != "" {
			name = *row.SubjectName
		}
		entry, ok := bySubject[name]
		if !ok {
			entry = &dto.SubjectResult{Subject: name}
			bySubject[name] = entry
			order = append(order, name)
		}

		kind, err := row.Kind()
		if err != nil {
			continue
		}
		switch kind {
		case models.ResultKindExam:
			entry.ExamScore = row.Score
		case models.ResultKindAssignment:
			entry.AssignmentScore = row.Score
		}
	}

	subjects := make([]dto.SubjectResult, 0, len(order))
	for _, name := range order {
		entry := bySubject[name]
		entry.Average = round2(examWeight*entry.ExamScore + assignmentWeight*entry.AssignmentScore)
		subjects = append(subjects, *entry)
	}
	return subjects
}

// GlobalAverage is the rounded mean of the subject averages, or 0 without subjects.
func GlobalAverage(subjects []dto.SubjectResult) float64 {
	if len(subjects) == 0 {
		return 0
	}
	var sum float64
	for _, s := range subjects {
		sum += s.Average
	}
	return round2(sum / float64(len(subjects)))
}

// Standing maps a global average to the report card verdict.
func Standing(global float64) dto.StandingStatus {
	switch {
	case global >= passingAverage:
		return dto.StandingPassed
	case global > 0:
		return dto.StandingFailed
	default:
		return dto.StandingNotEvaluated
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
