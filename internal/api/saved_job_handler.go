package api

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"jobportal/internal/database"
)

const (
	msgJobIDMissing = "Job id is required."
	msgJobUnsaved   = "Job unsaved successfully."
)

// SavedJobHandler 处理职位收藏。
type SavedJobHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewSavedJobHandler(db *gorm.DB, logger *slog.Logger) *SavedJobHandler {
	return &SavedJobHandler{db: db, logger: logger}
}

type saveJobRequest struct {
	JobID flexString `form:"jobId" json:"jobId" binding:"required"`
}

// Save 收藏职位。重复收藏返回 200 且 success=false。
func (h *SavedJobHandler) Save(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		Unauthorized(c)
		return
	}

	var req saveJobRequest
	if !bindRequest(c, &req, msgJobIDMissing) {
		return
	}
	jobID, err := req.JobID.Int()
	if err != nil || jobID == 0 {
		BadRequest(c, msgJobIDMissing)
		return
	}

	ctx := c.Request.Context()
	logger := loggerFor(c, h.logger).With(slog.Uint64("user_id", uint64(userID)), slog.Int("job_id", jobID))

	var existing int64
	if err := h.db.WithContext(ctx).Model(&database.SavedJob{}).
		Where("user_id = ? AND job_id = ?", userID, jobID).Count(&existing).Error; err != nil {
		logger.Error("saved job lookup failed", slog.Any("error", err))
		Internal(c)
		return
	}
	if existing > 0 {
		OKFailure(c, "Job already saved.")
		return
	}

	var job database.Job
	if err := h.db.WithContext(ctx).First(&job, jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "Job not found.")
			return
		}
		logger.Error("load job failed", slog.Any("error", err))
		Internal(c)
		return
	}

	saved := database.SavedJob{UserID: userID, JobID: job.ID}
	if err := h.db.WithContext(ctx).Create(&saved).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			OKFailure(c, "Job already saved.")
			return
		}
		logger.Error("save job failed", slog.Any("error", err))
		Internal(c)
		return
	}

	Created(c, "Job saved successfully.", gin.H{"savedJob": newSavedJobResponse(saved)})
}

// Unsave 取消收藏；未收藏也视为成功。
func (h *SavedJobHandler) Unsave(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		Unauthorized(c)
		return
	}
	jobID, ok := idParam(c, "jobId")
	if !ok {
		// 非法 id 不可能对应收藏记录。
		OK(c, msgJobUnsaved, nil)
		return
	}

	err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ? AND job_id = ?", userID, jobID).
		Delete(&database.SavedJob{}).Error
	if err != nil {
		loggerFor(c, h.logger).Error("unsave job failed", slog.Any("error", err))
		Internal(c)
		return
	}
	OK(c, msgJobUnsaved, nil)
}

// List 返回收藏列表（附职位与公司），最新的在前。
func (h *SavedJobHandler) List(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		Unauthorized(c)
		return
	}

	var saved []database.SavedJob
	err := h.db.WithContext(c.Request.Context()).
		Preload("Job.Company").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&saved).Error
	if err != nil {
		loggerFor(c, h.logger).Error("list saved jobs failed", slog.Any("error", err))
		Internal(c)
		return
	}

	out := make([]savedJobResponse, 0, len(saved))
	for _, s := range saved {
		out = append(out, newSavedJobResponse(s))
	}
	OK(c, "", gin.H{"jobs": out})
}
