package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/app"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/internal/service"
	"github.com/noah-isme/sma-gradebook-api/pkg/config"
	"github.com/noah-isme/sma-gradebook-api/pkg/logger"
)

const usage = `usage: gradebook <command> [flags]

commands:
  migrate up|down                   apply or roll back schema migrations
  reconcile --file grades.csv       submit grades from a CSV file
  summary --student <id>            print a student's report card
  schedule --class <id>             print a class's lessons for this week
  schedule --teacher <id>           print a teacher's lessons for this week
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		color.Red("load config: %v", err)
		os.Exit(1)
	}
	cfg.Log.Format = "console"
	logr, err := logger.New(cfg)
	if err != nil {
		color.Red("init logger: %v", err)
		os.Exit(1)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr, os.Args[1], os.Args[2:]); err != nil {
		color.Red("%s: %v", os.Args[1], err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger, command string, args []string) error {
	switch command {
	case "migrate":
		direction := "up"
		if len(args) > 0 {
			direction = args[0]
		}
		if err := app.Migrate(cfg, logr, direction); err != nil {
			return err
		}
		color.Green("migrations %s complete", direction)
		return nil
	case "reconcile":
		fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
		file := fs.String("file", "", "CSV with student_id,class_id,subject,exam,assignment columns")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *file == "" {
			return errors.New("--file is required")
		}
		return withApp(ctx, cfg, logr, func(a *app.App) error { return reconcileFile(ctx, a.Results, *file) })
	case "summary":
		fs := flag.NewFlagSet("summary", flag.ContinueOnError)
		student := fs.String("student", "", "student id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *student == "" {
			return errors.New("--student is required")
		}
		return withApp(ctx, cfg, logr, func(a *app.App) error { return printSummary(ctx, a.Results, *student) })
	case "schedule":
		fs := flag.NewFlagSet("schedule", flag.ContinueOnError)
		class := fs.String("class", "", "class id")
		teacher := fs.String("teacher", "", "teacher id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		filter := models.LessonFilter{TeacherID: *teacher}
		if *class != "" {
			id, err := strconv.ParseInt(*class, 10, 64)
			if err != nil {
				return fmt.Errorf("--class must be an integer: %w", err)
			}
			filter.ClassID = id
		}
		return withApp(ctx, cfg, logr, func(a *app.App) error { return printSchedule(ctx, a.Schedule, filter) })
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func withApp(ctx context.Context, cfg *config.Config, logr *zap.Logger, fn func(*app.App) error) error {
	a, err := app.New(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck
	return fn(a)
}

func reconcileFile(ctx context.Context, results *service.ResultService, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	submissions, err := parseGradesCSV(f)
	if err != nil {
		return err
	}

	for _, sub := range submissions {
		res, err := results.Reconcile(ctx, sub)
		if err != nil {
			color.Red("student %s (class %d): %v", sub.StudentID, sub.ClassID, err)
			return err
		}
		color.Green("student %s (class %d): %d grade lines saved", sub.StudentID, sub.ClassID, res.Processed)
	}
	color.Cyan("%d submissions reconciled from %s", len(submissions), path)
	return nil
}
