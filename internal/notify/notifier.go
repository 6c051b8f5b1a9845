// Package notify alerts the operator when an application is paused for a
// human. Email goes through SES and push goes through an SNS topic; either
// channel may be disabled.
package notify

import (
	"context"
	"fmt"
	"strings"

	"job-applier/internal/common/errors"
	"job-applier/internal/common/logger"
	"job-applier/internal/common/metrics"
	"job-applier/internal/models"
)

const (
	ChannelEmail = "email"
	ChannelSNS   = "sns"
)

// EmailSender is satisfied by aws.SESClient.
type EmailSender interface {
	SendText(ctx context.Context, from, to, subject, body string) (string, error)
}

// TopicPublisher is satisfied by aws.SNSClient.
type TopicPublisher interface {
	PublishMessage(ctx context.Context, topicARN, subject, message string) (string, error)
}

type EmailSettings struct {
	From string
	To   string
}

// InterventionNotifier fans an intervention notice out to every configured
// channel.
type InterventionNotifier struct {
	email    EmailSender
	emailCfg EmailSettings
	topic    TopicPublisher
	topicARN string
	logger   logger.Logger
}

func NewInterventionNotifier(log logger.Logger) *InterventionNotifier {
	return &InterventionNotifier{logger: logger.Component(log, "notify")}
}

// WithEmail enables the SES channel.
func (n *InterventionNotifier) WithEmail(sender EmailSender, settings EmailSettings) *InterventionNotifier {
	n.email = sender
	n.emailCfg = settings
	return n
}

// WithTopic enables the SNS channel.
func (n *InterventionNotifier) WithTopic(publisher TopicPublisher, topicARN string) *InterventionNotifier {
	n.topic = publisher
	n.topicARN = topicARN
	return n
}

// Channels lists the enabled channels.
func (n *InterventionNotifier) Channels() []string {
	var out []string
	if n.email != nil {
		out = append(out, ChannelEmail)
	}
	if n.topic != nil {
		out = append(out, ChannelSNS)
	}
	return out
}

// NotifyIntervention tries every channel and returns the first failure.
// job may be nil when it could not be loaded.
func (n *InterventionNotifier) NotifyIntervention(ctx context.Context, app *models.Application, job *models.Job) error {
	subject, body := compose(app, job)
	var firstErr error

	if n.email != nil {
		id, err := n.email.SendText(ctx, n.emailCfg.From, n.emailCfg.To, subject, body)
		if err := n.record(ChannelEmail, app, id, err); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if n.topic != nil {
		id, err := n.topic.PublishMessage(ctx, n.topicARN, subject, body)
		if err := n.record(ChannelSNS, app, id, err); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (n *InterventionNotifier) record(channel string, app *models.Application, messageID string, err error) error {
	if err != nil {
		metrics.InterventionNotifications.WithLabelValues(channel, "failure").Inc()
		n.logger.Warn("intervention notice failed", map[string]interface{}{
			"channel":       channel,
			"applicationId": app.ID,
			"error":         err.Error(),
		})
		return errors.NewNotificationSendFailedError(channel, err)
	}

	metrics.InterventionNotifications.WithLabelValues(channel, "success").Inc()
	n.logger.Info("intervention notice sent", map[string]interface{}{
		"channel":       channel,
		"applicationId": app.ID,
		"messageId":     messageID,
	})
	return nil
}

func compose(app *models.Application, job *models.Job) (string, string) {
	subject := fmt.Sprintf("Application %d needs attention", app.ID)
	if job != nil {
		subject = fmt.Sprintf("Application %d needs attention: %s at %s", app.ID, job.Title, job.Company)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Application %d for job %s was paused", app.ID, app.JobID)
	if app.PausedFrom != nil {
		fmt.Fprintf(&b, " while %s", *app.PausedFrom)
	}
	b.WriteString(".\n")
	if reason := models.Deref(app.InterventionReason); reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", reason)
	}
	if job != nil {
		fmt.Fprintf(&b, "Posting: %s\n", job.URL)
	}
	if url := models.Deref(app.ApplicationURL); url != "" {
		fmt.Fprintf(&b, "Application page: %s\n", url)
	}
	b.WriteString("Clear the intervention flag and resume once handled.\n")
	return subject, b.String()
}
