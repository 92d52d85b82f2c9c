package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/customtruckbeds/site/internal/jobs"
	"github.com/customtruckbeds/site/internal/quote"
)

// LeadNotifyJob emails the workshop inbox about new leads.
type LeadNotifyJob struct {
	Mailer  Mailer
	From    string
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLeadNotifyJob wires dependencies for the notify handler.
func NewLeadNotifyJob(mailer Mailer, from string, logger *slog.Logger, metrics *jobmetrics.Metrics) *LeadNotifyJob {
	return &LeadNotifyJob{Mailer: mailer, From: from, Logger: logger, Metrics: metrics}
}

// Handle processes lead notification tasks.
func (j *LeadNotifyJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Mailer == nil {
		return errors.New("lead notify: handler not configured")
	}
	payload, err := DecodeLeadNotifyPayload(t)
	if err != nil {
		return fmt.Errorf("lead notify: decode payload: %v: %w", err, asynq.SkipRetry)
	}

	tracker := j.metrics().Track(TaskLeadNotify)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("submission_id", payload.SubmissionID))
	err = j.Mailer.Send(ctx, Message{
		From:    j.From,
		To:      []string{payload.To},
		ReplyTo: replyTo(payload.Lead.Email),
		Subject: leadSubject(payload.Lead),
		Body:    leadBody(payload),
	})
	j.metrics().EmailSent(err == nil)
	if err != nil {
		logger.Error("send lead email", slog.Any("error", err))
		return err
	}
	logger.Info("lead email sent")
	return nil
}

func (j *LeadNotifyJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *LeadNotifyJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func replyTo(email string) string {
	if strings.ContainsAny(email, "\r\n") {
		return ""
	}
	return email
}

func leadSubject(lead quote.Payload) string {
	subject := fmt.Sprintf("New quote request: %s %s", lead.FirstName, lead.LastName)
	if lead.Vehicle != "" {
		subject += " (" + lead.Vehicle + ")"
	}
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(subject)
}

func leadBody(p LeadNotifyPayload) string {
	lead := p.Lead
	var b strings.Builder
	line := func(label, value string) {
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(&b, "%-12s %s\n", label+":", value)
	}
	line("Name", strings.TrimSpace(lead.FirstName+" "+lead.LastName))
	line("Email", lead.Email)
	line("Phone", lead.Phone)
	line("Location", lead.Location)
	line("Vehicle", lead.Vehicle)
	line("Timeline", lead.Timeline)
	line("Received", lead.Timestamp)
	line("Reference", p.SubmissionID)
	b.WriteString("\nRequirements:\n")
	b.WriteString(lead.Requirements)
	b.WriteString("\n")
	return b.String()
}
