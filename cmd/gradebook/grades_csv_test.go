package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-gradebook-api/internal/dto"
)

func TestParseGradesCSVGroupsBySubmission(t *testing.T) {
	input := `Student_ID, class_id, subject, exam, assignment
stu-1,1,Math,15,12
stu-2,1,Math,9,
stu-1,1, Physics ,11.5,14
`
	subs, err := parseGradesCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, subs, 2)

	assert.Equal(t, "stu-1", subs[0].StudentID)
	assert.Equal(t, int64(1), subs[0].ClassID)
	assert.Equal(t, []dto.GradeLine{
		{Subject: "Math", ExamValue: 15, AssignmentValue: 12},
		{Subject: "Physics", ExamValue: 11.5, AssignmentValue: 14},
	}, subs[0].Grades)
	assert.Equal(t, []dto.GradeLine{{Subject: "Math", ExamValue: 9}}, subs[1].Grades)
}

func TestParseGradesCSVErrors(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"missing column": "student_id,class_id,subject,exam\n",
		"bad class":      "student_id,class_id,subject,exam,assignment\nstu-1,one,Math,1,2\n",
		"bad score":      "student_id,class_id,subject,exam,assignment\nstu-1,1,Math,ten,2\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseGradesCSV(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}
