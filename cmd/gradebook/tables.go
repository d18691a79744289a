package main

import (
	"context"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/noah-isme/sma-gradebook-api/internal/dto"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/internal/service"
)

func printSummary(ctx context.Context, results *service.ResultService, studentID string) error {
	summary, err := results.StudentSummary(ctx, studentID)
	if err != nil {
		return err
	}

	color.Cyan("\n=== Report card: %s ===", summary.StudentName)
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Subject", "Exam", "Assignment", "Average"})
	for _, s := range summary.Subjects {
		table.Append([]string{s.Subject, score(s.ExamScore), score(s.AssignmentScore), score(s.Average)})
	}
	table.SetFooter([]string{"", "", "Global", score(summary.GlobalAverage)})
	table.Render()

	switch summary.Status {
	case dto.StandingPassed:
		color.Green("Status: %s", summary.Status)
	case dto.StandingFailed:
		color.Red("Status: %s", summary.Status)
	default:
		color.Yellow("Status: %s", summary.Status)
	}
	return nil
}

func printSchedule(ctx context.Context, schedule *service.ScheduleService, filter models.LessonFilter) error {
	week, err := schedule.Week(ctx, filter)
	if err != nil {
		return err
	}

	color.Cyan("\n=== Week of %s ===", week.WeekStart.Format("Mon 02 Jan 2006"))
	if len(week.Entries) == 0 {
		color.Yellow("No lessons scheduled.")
		return nil
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Day", "Start", "End", "Lesson"})
	for _, e := range week.Entries {
		table.Append([]string{e.Start.Format("Mon 02"), e.Start.Format("15:04"), e.End.Format("15:04"), e.Title})
	}
	table.Render()
	return nil
}

func score(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
