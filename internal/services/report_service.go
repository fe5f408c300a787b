package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"dashboard/internal/models"
	"dashboard/internal/pdf"
)

// ReportService renders the weekly task report and optionally mails it.
type ReportService struct {
	tasks     TaskService
	generator pdf.Generator
	// nil when SMTP is not configured
	mailer    EmailService
	defaultTo string
	// recipients a caller may name besides defaultTo
	allowed []string
	now     func() time.Time
}

func NewReportService(tasks TaskService, generator pdf.Generator, mailer EmailService, defaultTo string, allowed ...string) *ReportService {
	return &ReportService{
		tasks:     tasks,
		generator: generator,
		mailer:    mailer,
		defaultTo: strings.TrimSpace(defaultTo),
		allowed:   allowed,
		now:       time.Now,
	}
}

func (s *ReportService) CanEmail() bool { return s.mailer != nil }

func (s *ReportService) WriteWeekly(ctx context.Context, w io.Writer) error {
	data, err := s.collect(ctx)
	if err != nil {
		return err
	}
	if err := s.generator.WeeklyReport(w, *data); err != nil {
		return fmt.Errorf("render weekly report: %w", err)
	}
	return nil
}

// EmailWeekly sends the report to `to`, or to the configured recipient when `to` is empty.
// Only the configured recipient and the allow-list are accepted. It returns the address
// actually used.
func (s *ReportService) EmailWeekly(ctx context.Context, to string) (string, error) {
	if s.mailer == nil {
		return "", fmt.Errorf("email is not configured")
	}
	to = strings.TrimSpace(to)
	if to == "" {
		to = s.defaultTo
	}
	if to == "" {
		return "", invalid("to", "no recipient given and no default configured")
	}
	if !s.recipientAllowed(to) {
		return "", invalid("to", "recipient is not allowed")
	}

	var buf bytes.Buffer
	if err := s.WriteWeekly(ctx, &buf); err != nil {
		return "", err
	}
	if err := s.mailer.SendWeeklyReport(to, buf.Bytes(), s.now()); err != nil {
		return "", err
	}
	return to, nil
}

func (s *ReportService) recipientAllowed(to string) bool {
	if s.defaultTo != "" && strings.EqualFold(to, s.defaultTo) {
		return true
	}
	for _, a := range s.allowed {
		if strings.EqualFold(to, strings.TrimSpace(a)) {
			return true
		}
	}
	return false
}

func (s *ReportService) collect(ctx context.Context) (*pdf.WeeklyReportData, error) {
	stats, err := s.tasks.Stats(ctx)
	if err != nil {
		return nil, err
	}
	all, err := s.tasks.GetAll(ctx, models.TaskFilter{})
	if err != nil {
		return nil, err
	}
	var open []models.Task
	for _, t := range all {
		if t.Status != models.TaskStatusCompleted {
			open = append(open, t)
		}
	}
	return &pdf.WeeklyReportData{GeneratedAt: s.now(), Stats: *stats, Pending: open}, nil
}
