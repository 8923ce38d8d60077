package api

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"jobportal/internal/api/middleware"
	"jobportal/internal/database"
	"jobportal/internal/metrics"
	"jobportal/internal/notify"
	"jobportal/internal/tasks"
)

const (
	msgAlreadyApplied = "You have already applied for this jobs"
	msgStatusMissing  = "status is required"
)

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ApplicationHandler 处理投递、候选人列表与状态流转。
// queue 与 publisher 为 nil 时分别跳过邮件任务与实时通知。
type ApplicationHandler struct {
	db        *gorm.DB
	queue     TaskEnqueuer
	publisher notify.Publisher
	logger    *slog.Logger
}

func NewApplicationHandler(db *gorm.DB, queue TaskEnqueuer, publisher notify.Publisher, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{db: db, queue: queue, publisher: publisher, logger: logger}
}

// Apply 为调用者创建一次投递，同一职位只能投递一次。
func (h *ApplicationHandler) Apply(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		Unauthorized(c)
		return
	}
	jobID, ok := idParam(c, "id")
	if !ok {
		BadRequest(c, msgJobIDMissing)
		return
	}

	ctx := c.Request.Context()
	logger := loggerFor(c, h.logger).With(slog.Uint64("user_id", uint64(userID)), slog.Uint64("job_id", uint64(jobID)))

	var existing int64
	if err := h.db.WithContext(ctx).Model(&database.Application{}).
		Where("job_id = ? AND applicant_id = ?", jobID, userID).Count(&existing).Error; err != nil {
		logger.Error("application lookup failed", slog.Any("error", err))
		Internal(c)
		return
	}
	if existing > 0 {
		BadRequest(c, msgAlreadyApplied)
		return
	}

	var job database.Job
	if err := h.db.WithContext(ctx).First(&job, jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, msgJobNotFound)
			return
		}
		logger.Error("load job failed", slog.Any("error", err))
		Internal(c)
		return
	}

	application := database.Application{JobID: job.ID, ApplicantID: userID, Status: database.StatusPending}
	if err := h.db.WithContext(ctx).Create(&application).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			BadRequest(c, msgAlreadyApplied)
			return
		}
		logger.Error("create application failed", slog.Any("error", err))
		Internal(c)
		return
	}

	metrics.ObserveApplicationSubmitted()
	logger.Info("application submitted", slog.Uint64("application_id", uint64(application.ID)))
	h.enqueueConfirmation(ctx, logger, application.ID, middleware.GetCorrelationID(c))

	Created(c, "Job applied successfully.", nil)
}

// 入队失败只记录日志，不影响投递结果。
func (h *ApplicationHandler) enqueueConfirmation(ctx context.Context, logger *slog.Logger, applicationID uint, correlationID string) {
	if h.queue == nil {
		return
	}
	task, err := tasks.NewApplicationSubmittedTask(applicationID, correlationID)
	if err != nil {
		logger.Error("build confirmation task failed", slog.Any("error", err))
		return
	}
	if _, err := h.queue.EnqueueContext(ctx, task); err != nil {
		logger.Error("enqueue confirmation task failed", slog.Any("error", err))
	}
}

// Applied 返回调用者的全部投递，附带职位与公司。
func (h *ApplicationHandler) Applied(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		Unauthorized(c)
		return
	}

	var applications []database.Application
	err := h.db.WithContext(c.Request.Context()).
		Preload("Job.Company").
		Where("applicant_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&applications).Error
	if err != nil {
		loggerFor(c, h.logger).Error("list applications failed", slog.Any("error", err))
		Internal(c)
		return
	}
	OK(c, "", gin.H{"application": newApplicationList(applications)})
}

// Applicants 返回职位及其候选人，仅职位创建者可查看。
func (h *ApplicationHandler) Applicants(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		Unauthorized(c)
		return
	}
	jobID, ok := idParam(c, "id")
	if !ok {
		NotFound(c, "Job not found.")
		return
	}

	var job database.Job
	err := h.db.WithContext(c.Request.Context()).
		Preload("Applications", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Order("id DESC")
		}).
		Preload("Applications.Applicant").
		First(&job, jobID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "Job not found.")
			return
		}
		loggerFor(c, h.logger).Error("load applicants failed", slog.Any("error", err))
		Internal(c)
		return
	}
	if job.CreatedByID != userID {
		Forbidden(c, "You are not allowed to view applicants for this job.")
		return
	}

	OK(c, "", gin.H{"job": newJobResponse(job)})
}

type statusRequest struct {
	Status string `form:"status" json:"status" binding:"required"`
}

// UpdateStatus 将投递状态设为 accepted 或 rejected，并通知候选人。
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		Unauthorized(c)
		return
	}

	var req statusRequest
	if !bindRequest(c, &req, msgStatusMissing) {
		return
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status == "" {
		BadRequest(c, msgStatusMissing)
		return
	}
	if status != database.StatusAccepted && status != database.StatusRejected {
		BadRequest(c, "Invalid status.")
		return
	}

	applicationID, ok := idParam(c, "id")
	if !ok {
		NotFound(c, "Application not found.")
		return
	}

	ctx := c.Request.Context()
	logger := loggerFor(c, h.logger).With(slog.Uint64("application_id", uint64(applicationID)))

	var application database.Application
	if err := h.db.WithContext(ctx).Preload("Job").First(&application, applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "Application not found.")
			return
		}
		logger.Error("load application failed", slog.Any("error", err))
		Internal(c)
		return
	}
	if application.Job.CreatedByID != userID {
		Forbidden(c, "You are not allowed to update this application.")
		return
	}

	if err := h.db.WithContext(ctx).Model(&database.Application{}).
		Where("id = ?", application.ID).Update("status", status).Error; err != nil {
		logger.Error("update status failed", slog.Any("error", err))
		Internal(c)
		return
	}

	logger.Info("application status updated", slog.String("status", status))
	if h.publisher != nil {
		msg := notify.Message{
			Type:          notify.TypeApplicationStatus,
			ApplicationID: application.ID,
			JobID:         application.JobID,
			JobTitle:      application.Job.Title,
			Status:        status,
		}
		if err := h.publisher.Publish(ctx, application.ApplicantID, msg); err != nil {
			logger.Warn("publish status notification failed", slog.Any("error", err))
		}
	}

	OK(c, "Status updated successfully.", nil)
}
