package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-gradebook-api/internal/dto"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

func examRow(subject string, score float64) models.ResultDetail {
	id := int64(1)
	return models.ResultDetail{Score: score, ExamID: &id, SubjectName: &subject}
}

func assignmentRow(subject string, score float64) models.ResultDetail {
	id := int64(2)
	return models.ResultDetail{Score: score, AssignmentID: &id, SubjectName: &subject}
}

func TestSummarizeResultsWeightsAndOrder(t *testing.T) {
	rows := []models.ResultDetail{
		assignmentRow("Physics", 14),
		examRow("Math", 15),
		examRow("Physics", 9),
		assignmentRow("Math", 12),
	}

	subjects := SummarizeResults(rows)
	require.Len(t, subjects, 2)
	assert.Equal(t, dto.SubjectResult{Subject: "Physics", ExamScore: 9, AssignmentScore: 14, Average: 10}, subjects[0])
	assert.Equal(t, dto.SubjectResult{Subject: "Math", ExamScore: 15, AssignmentScore: 12, Average: 14.4}, subjects[1])
	assert.Equal(t, 12.2, GlobalAverage(subjects))
}

func TestSummarizeResultsLastScoreWins(t *testing.T) {
	subjects := SummarizeResults([]models.ResultDetail{examRow("Math", 10), examRow("Math", 16)})
	require.Len(t, subjects, 1)
	assert.Equal(t, 16.0, subjects[0].ExamScore)
	assert.Equal(t, 12.8, subjects[0].Average)
}

func TestSummarizeResultsUnknownSubject(t *testing.T) {
	id := int64(3)
	subjects := SummarizeResults([]models.ResultDetail{{Score: 11, ExamID: &id}})
	require.Len(t, subjects, 1)
	assert.Equal(t, "Unknown Subject", subjects[0].Subject)
}

func TestSummarizeResultsSkipsMalformedRows(t *testing.T) {
	name := "Art"
	subjects := SummarizeResults([]models.ResultDetail{{Score: 20, SubjectName: &name}})
	require.Len(t, subjects, 1)
	assert.Zero(t, subjects[0].ExamScore)
	assert.Zero(t, subjects[0].AssignmentScore)
}

func TestStanding(t *testing.T) {
	assert.Equal(t, dto.StandingPassed, Standing(10))
	assert.Equal(t, dto.StandingPassed, Standing(17.25))
	assert.Equal(t, dto.StandingFailed, Standing(9.99))
	assert.Equal(t, dto.StandingFailed, Standing(0.01))
	assert.Equal(t, dto.StandingNotEvaluated, Standing(0))
	assert.Equal(t, 0.0, GlobalAverage(nil))
}
