package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/noah-isme/sma-gradebook-api/internal/dto"
)

var gradeColumns = []string{"student_id", "class_id", "subject", "exam", "assignment"}

type submissionKey struct {
	studentID string
	classID   int64
}

// parseGradesCSV groups rows into one submission per (student, class), keeping the
// order rows first appear in.
func parseGradesCSV(r io.Reader) ([]dto.ReconcileResultsRequest, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("grades file is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var order []submissionKey
	grouped := make(map[submissionKey]*dto.ReconcileResultsRequest)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		classID, err := strconv.ParseInt(strings.TrimSpace(record[index["class_id"]]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: class_id: %w", line, err)
		}
		exam, err := parseScore(record[index["exam"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: exam: %w", line, err)
		}
		assignment, err := parseScore(record[index["assignment"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: assignment: %w", line, err)
		}

		key := submissionKey{studentID: strings.TrimSpace(record[index["student_id"]]), classID: classID}
		sub, ok := grouped[key]
		if !ok {
			sub = &dto.ReconcileResultsRequest{ClassID: classID, StudentID: key.studentID}
			grouped[key] = sub
			order = append(order, key)
		}
		sub.Grades = append(sub.Grades, dto.GradeLine{
			Subject:         strings.TrimSpace(record[index["subject"]]),
			ExamValue:       exam,
			AssignmentValue: assignment,
		})
	}

	out := make([]dto.ReconcileResultsRequest, 0, len(order))
	for _, key := range order {
		out = append(out, *grouped[key])
	}
	return out, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range gradeColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}
	return index, nil
}

// parseScore treats a blank cell as 0, matching the submission form.
func parseScore(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}
