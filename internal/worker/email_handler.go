package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"jobportal/internal/database"
	"jobportal/internal/mailer"
	"jobportal/internal/metrics"
	"jobportal/internal/notify"
	"jobportal/internal/tasks"
)

// ApplicationEmailHandler 消费投递确认邮件任务，发送邮件后通知招聘者。
type ApplicationEmailHandler struct {
	db        *gorm.DB
	sender    mailer.Sender
	publisher notify.Publisher
	logger    *slog.Logger
}

// NewApplicationEmailHandler 创建任务处理器。sender 为 nil 时只发送站内通知。
func NewApplicationEmailHandler(db *gorm.DB, sender mailer.Sender, publisher notify.Publisher, logger *slog.Logger) *ApplicationEmailHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApplicationEmailHandler{db: db, sender: sender, publisher: publisher, logger: logger}
}

// ProcessTask 实现 asynq.Handler。
func (h *ApplicationEmailHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	payload, err := tasks.ParseApplicationSubmitted(t)
	if err != nil {
		h.logger.Error("invalid task payload", slog.Any("error", err))
		return err
	}

	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("application_id", uint64(payload.ApplicationID)),
	)

	var application database.Application
	err = h.db.WithContext(ctx).
		Preload("Applicant").
		Preload("Job.Company").
		First(&application, payload.ApplicationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("application not found, skipping task")
			return nil
		}
		log.Error("query application failed", slog.Any("error", err))
		return err
	}

	if h.sender != nil {
		msg, err := mailer.RenderApplicationSubmitted(application.Applicant.Email, mailer.ApplicationSubmitted{
			UserName:    application.Applicant.Fullname,
			JobTitle:    application.Job.Title,
			CompanyName: application.Job.Company.Name,
		})
		if err != nil {
			return fmt.Errorf("render email: %v: %w", err, asynq.SkipRetry)
		}
		if err := h.sender.Send(ctx, msg); err != nil {
			metrics.ObserveEmail(metrics.ResultFailed)
			log.Error("send confirmation email failed", slog.Any("error", err))
			if errors.Is(err, mailer.ErrInvalidAddress) {
				return fmt.Errorf("send email: %v: %w", err, asynq.SkipRetry)
			}
			return err
		}
		metrics.ObserveEmail(metrics.ResultOK)
		log.Info("confirmation email sent")
	}

	// 通知失败只记录日志，不触发重试。
	if h.publisher != nil {
		received := notify.Message{
			Type:          notify.TypeApplicationReceived,
			ApplicationID: application.ID,
			JobID:         application.JobID,
			JobTitle:      application.Job.Title,
			ApplicantName: application.Applicant.Fullname,
		}
		if err := h.publisher.Publish(ctx, application.Job.CreatedByID, received); err != nil {
			log.Warn("publish application notification failed", slog.Any("error", err))
		}
	}
	return nil
}
