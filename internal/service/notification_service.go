package service

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	netmail "net/mail"
	"sync"
	"text/template"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/school-roster-api/internal/models"
	"github.com/noah-isme/school-roster-api/pkg/jobs"
	"github.com/noah-isme/school-roster-api/pkg/mail"
)

// Notification job types.
const (
	NotificationTeacherAssigned = "teacher.class.assigned"
	NotificationTeacherRemoved  = "teacher.class.removed"
)

// AssignmentEvent is the payload of an assignment notification job.
type AssignmentEvent struct {
	TeacherID    string
	TeacherName  string
	TeacherEmail string
	SchoolID     string
	ClassID      string
	ClassName    string
	Kind         models.TargetKind
	Subject      string
	IsPrimary    bool
	OccurredAt   time.Time
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type notificationTemplate struct {
	subject *template.Template
	text    *template.Template
	html    *htmltemplate.Template
}

var notificationTemplates = map[string]notificationTemplate{
	NotificationTeacherAssigned: {
		subject: template.Must(template.New("subject").Parse(`You have been assigned to {{.ClassName}}`)),
		text: template.Must(template.New("text").Parse(`Hello {{.TeacherName}},

You have been assigned to {{.ClassName}}{{if .IsPrimary}} as form teacher{{end}}{{if .Subject}} for {{.Subject}}{{end}}.
`)),
		html: htmltemplate.Must(htmltemplate.New("html").Parse(`<p>Hello {{.TeacherName}},</p>
<p>You have been assigned to <strong>{{.ClassName}}</strong>{{if .IsPrimary}} as form teacher{{end}}{{if .Subject}} for {{.Subject}}{{end}}.</p>
`)),
	},
	NotificationTeacherRemoved: {
		subject: template.Must(template.New("subject").Parse(`You have been removed from {{.ClassName}}`)),
		text: template.Must(template.New("text").Parse(`Hello {{.TeacherName}},

You are no longer assigned to {{.ClassName}}{{if .Subject}} for {{.Subject}}{{end}}.
`)),
		html: htmltemplate.Must(htmltemplate.New("html").Parse(`<p>Hello {{.TeacherName}},</p>
<p>You are no longer assigned to <strong>{{.ClassName}}</strong>{{if .Subject}} for {{.Subject}}{{end}}.</p>
`)),
	},
}

// NotificationService turns assignment changes into queued emails.
// Enqueueing never fails the caller and delivery is attempted once.
type NotificationService struct {
	sender  mail.Sender
	metrics *MetricsService
	logger  *zap.Logger

	mu    sync.RWMutex
	queue jobEnqueuer
}

// NewNotificationService builds the service. AttachQueue must be called before events are accepted.
func NewNotificationService(sender mail.Sender, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{sender: sender, metrics: metrics, logger: logger}
}

// AttachQueue sets the queue events are pushed to.
func (s *NotificationService) AttachQueue(queue jobEnqueuer) {
	s.mu.Lock()
	s.queue = queue
	s.mu.Unlock()
}

// NotifyAssigned enqueues an assignment email.
func (s *NotificationService) NotifyAssigned(ctx context.Context, evt AssignmentEvent) {
	s.enqueue(ctx, NotificationTeacherAssigned, evt)
}

// NotifyRemoved enqueues a removal email.
func (s *NotificationService) NotifyRemoved(ctx context.Context, evt AssignmentEvent) {
	s.enqueue(ctx, NotificationTeacherRemoved, evt)
}

func (s *NotificationService) enqueue(_ context.Context, kind string, evt AssignmentEvent) {
	s.mu.RLock()
	queue := s.queue
	s.mu.RUnlock()

	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	if queue == nil {
		s.metrics.RecordNotification(kind, OutcomeDropped)
		s.logger.Debug("notification queue not attached", zap.String("type", kind), zap.String("teacher_id", evt.TeacherID))
		return
	}
	job := jobs.Job{ID: uuid.NewString(), Type: kind, Payload: evt}
	if err := queue.Enqueue(job); err != nil {
		s.metrics.RecordNotification(kind, OutcomeDropped)
		s.logger.Warn("failed to enqueue notification",
			zap.String("type", kind),
			zap.String("teacher_id", evt.TeacherID),
			zap.String("class_id", evt.ClassID),
			zap.Error(err))
		return
	}
	s.metrics.RecordNotification(kind, OutcomeQueued)
}

// Handle is the queue handler: it renders and sends one notification.
func (s *NotificationService) Handle(ctx context.Context, job jobs.Job) error {
	evt, ok := job.Payload.(AssignmentEvent)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", job.Payload, job.Type)
	}
	msg, err := renderNotification(job.Type, evt)
	if err != nil {
		return err
	}
	if s.sender == nil {
		return fmt.Errorf("no mail sender configured")
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s: %w", job.Type, err)
	}
	s.metrics.RecordNotification(job.Type, OutcomeSent)
	s.logger.Debug("notification sent", zap.String("type", job.Type), zap.String("job_id", job.ID))
	return nil
}

// DeadLetter records a notification that will not be delivered.
func (s *NotificationService) DeadLetter(job jobs.Job, err error) {
	s.metrics.RecordNotification(job.Type, OutcomeDeadLetter)
	fields := []zap.Field{
		zap.String("job_id", job.ID),
		zap.String("type", job.Type),
		zap.Int("attempts", job.Attempt),
		zap.Error(err),
	}
	if evt, ok := job.Payload.(AssignmentEvent); ok {
		fields = append(fields,
			zap.String("teacher_id", evt.TeacherID),
			zap.String("teacher_email", evt.TeacherEmail),
			zap.String("school_id", evt.SchoolID),
			zap.String("class_id", evt.ClassID),
			zap.String("subject", evt.Subject),
			zap.Bool("is_primary", evt.IsPrimary),
		)
	}
	s.logger.Error("notification dead-lettered", fields...)
}

func renderNotification(kind string, evt AssignmentEvent) (mail.Message, error) {
	tmpl, ok := notificationTemplates[kind]
	if !ok {
		return mail.Message{}, fmt.Errorf("unknown notification type %q", kind)
	}
	var subject, text, html bytes.Buffer
	if err := tmpl.subject.Execute(&subject, evt); err != nil {
		return mail.Message{}, fmt.Errorf("render subject: %w", err)
	}
	if err := tmpl.text.Execute(&text, evt); err != nil {
		return mail.Message{}, fmt.Errorf("render text: %w", err)
	}
	if err := tmpl.html.Execute(&html, evt); err != nil {
		return mail.Message{}, fmt.Errorf("render html: %w", err)
	}
	return mail.Message{
		To:          []netmail.Address{{Name: evt.TeacherName, Address: evt.TeacherEmail}},
		Subject:     subject.String(),
		TextContent: text.String(),
		HTMLContent: html.String(),
	}, nil
}
