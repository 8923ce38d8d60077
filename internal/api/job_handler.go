package api

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jobportal/internal/database"
)

const (
	msgJobNotFound     = "Job not found"
	msgJobFieldMissing = "Something is missing."
	msgJobForbidden    = "You are not allowed to modify this job."
	msgSalaryInvalid   = "Salary must be a number."
	msgPositionBadInt  = "Position must be a non-negative integer."
)

// JobHandler 处理职位的发布、检索、更新与删除。
type JobHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewJobHandler(db *gorm.DB, logger *slog.Logger) *JobHandler {
	return &JobHandler{db: db, logger: logger}
}

type postJobRequest struct {
	Title        string     `form:"title" json:"title" binding:"required"`
	Description  string     `form:"description" json:"description" binding:"required"`
	Requirements csvList    `form:"requirements" json:"requirements" binding:"required"`
	Salary       flexString `form:"salary" json:"salary" binding:"required"`
	Location     string     `form:"location" json:"location" binding:"required"`
	JobType      string     `form:"jobType" json:"jobType" binding:"required"`
	Experience   flexString `form:"experience" json:"experience" binding:"required"`
	Position     flexString `form:"position" json:"position" binding:"required"`
	CompanyID    flexString `form:"companyId" json:"companyId" binding:"required"`
}

// Post 发布职位；调用者必须拥有目标公司。
func (h *JobHandler) Post(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		Unauthorized(c)
		return
	}

	var req postJobRequest
	if !bindRequest(c, &req, msgJobFieldMissing) {
		return
	}
	req.Requirements = req.Requirements.normalize()
	if len(req.Requirements) == 0 || blank(req.Title, req.Description, req.Location, req.JobType,
		string(req.Salary), string(req.Experience), string(req.Position), string(req.CompanyID)) {
		BadRequest(c, msgJobFieldMissing)
		return
	}

	salary, err := req.Salary.Float()
	if err != nil {
		BadRequest(c, msgSalaryInvalid)
		return
	}
	position, err := req.Position.Int()
	if err != nil {
		BadRequest(c, msgPositionBadInt)
		return
	}
	companyID, err := strconv.ParseUint(req.CompanyID.String(), 10, 64)
	if err != nil || companyID == 0 {
		NotFound(c, msgCompanyNotFound)
		return
	}

	ctx := c.Request.Context()
	logger := loggerFor(c, h.logger).With(slog.Uint64("user_id", uint64(userID)), slog.Uint64("company_id", companyID))

	var company database.Company
	if err := h.db.WithContext(ctx).First(&company, companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, msgCompanyNotFound)
			return
		}
		logger.Error("load company failed", slog.Any("error", err))
		Internal(c)
		return
	}
	if company.UserID != userID {
		Forbidden(c, "You can only post jobs for your own companies.")
		return
	}

	job := database.Job{
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		Requirements:    []string(req.Requirements),
		Salary:          salary,
		Location:        strings.TrimSpace(req.Location),
		JobType:         strings.TrimSpace(req.JobType),
		ExperienceLevel: req.Experience.String(),
		Position:        position,
		CompanyID:       company.ID,
		CreatedByID:     userID,
	}
	if err := h.db.WithContext(ctx).Omit(clause.Associations).Create(&job).Error; err != nil {
		logger.Error("create job failed", slog.Any("error", err))
		Internal(c)
		return
	}
	job.Company = company

	logger.Info("job posted", slog.Uint64("job_id", uint64(job.ID)))
	Created(c, "Job posted successfully.", gin.H{"job": newJobResponse(job)})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List 按关键字（标题或描述，忽略大小写）检索职位，最新的在前。
func (h *JobHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&database.Job{}).Preload("Company")
	if keyword := strings.TrimSpace(c.Query("keyword")); keyword != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(keyword)) + "%"
		query = query.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	var jobs []database.Job
	if err := query.Order("created_at DESC").Order("id DESC").Find(&jobs).Error; err != nil {
		loggerFor(c, h.logger).Error("list jobs failed", slog.Any("error", err))
		Internal(c)
		return
	}
	OK(c, "", gin.H{"jobs": newJobList(jobs)})
}

// Get 返回职位及其投递记录。
func (h *JobHandler) Get(c *gin.Context) {
	job, ok := h.load(c, "Job not found.", func(db *gorm.DB) *gorm.DB {
		return db.Preload("Company").Preload("Applications", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		})
	})
	if !ok {
		return
	}
	OK(c, "", gin.H{"job": newJobResponse(job)})
}

// AdminJobs 返回调用者发布的职位，最新的在前。
func (h *JobHandler) AdminJobs(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		Unauthorized(c)
		return
	}

	var jobs []database.Job
	err := h.db.WithContext(c.Request.Context()).Preload("Company").
		Where("created_by_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&jobs).Error
	if err != nil {
		loggerFor(c, h.logger).Error("list admin jobs failed", slog.Any("error", err))
		Internal(c)
		return
	}
	OK(c, "", gin.H{"jobs": newJobList(jobs)})
}

// jobPatch enumerates the updatable job fields.
type jobPatch struct {
	Title           *string     `json:"title"`
	Description     *string     `json:"description"`
	Requirements    *csvList    `json:"requirements"`
	Salary          *flexString `json:"salary"`
	Location        *string     `json:"location"`
	JobType         *string     `json:"jobType"`
	ExperienceLevel *flexString `json:"experienceLevel"`
	Experience      *flexString `json:"experience"`
	Position        *flexString `json:"position"`
}

// apply validates numeric fields before touching job.
func (p jobPatch) apply(job *database.Job) string {
	var salary float64
	var position int
	var err error
	if p.Salary != nil {
		if salary, err = p.Salary.Float(); err != nil {
			return msgSalaryInvalid
		}
	}
	if p.Position != nil {
		if position, err = p.Position.Int(); err != nil {
			return msgPositionBadInt
		}
	}

	if p.Title != nil {
		job.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		job.Description = strings.TrimSpace(*p.Description)
	}
	if p.Requirements != nil {
		job.Requirements = []string(*p.Requirements)
	}
	if p.Salary != nil {
		job.Salary = salary
	}
	if p.Location != nil {
		job.Location = strings.TrimSpace(*p.Location)
	}
	if p.JobType != nil {
		job.JobType = strings.TrimSpace(*p.JobType)
	}
	if p.ExperienceLevel != nil {
		job.ExperienceLevel = p.ExperienceLevel.String()
	} else if p.Experience != nil {
		job.ExperienceLevel = p.Experience.String()
	}
	if p.Position != nil {
		job.Position = position
	}
	return ""
}

// Update 部分更新职位，仅创建者可操作。
func (h *JobHandler) Update(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		Unauthorized(c)
		return
	}

	var patch jobPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, "Invalid job data.")
		return
	}

	job, ok := h.load(c, msgJobNotFound, nil)
	if !ok {
		return
	}
	if job.CreatedByID != userID {
		Forbidden(c, msgJobForbidden)
		return
	}
	if msg := patch.apply(&job); msg != "" {
		BadRequest(c, msg)
		return
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Omit(clause.Associations).Save(&job).Error; err != nil {
		loggerFor(c, h.logger).Error("update job failed", slog.Uint64("job_id", uint64(job.ID)), slog.Any("error", err))
		Internal(c)
		return
	}

	OK(c, "Job updated successfully", gin.H{"job": newJobResponse(job)})
}

// Delete 删除职位及其投递与收藏，仅创建者可操作。
func (h *JobHandler) Delete(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		Unauthorized(c)
		return
	}

	job, ok := h.load(c, msgJobNotFound, nil)
	if !ok {
		return
	}
	if job.CreatedByID != userID {
		Forbidden(c, msgJobForbidden)
		return
	}

	logger := loggerFor(c, h.logger).With(slog.Uint64("job_id", uint64(job.ID)))
	if err := database.DeleteJobCascade(c.Request.Context(), h.db, job.ID); err != nil {
		logger.Error("delete job failed", slog.Any("error", err))
		Internal(c)
		return
	}

	logger.Info("job deleted")
	OK(c, "Job deleted successfully", nil)
}

func (h *JobHandler) load(c *gin.Context, notFoundMsg string, scope func(*gorm.DB) *gorm.DB) (database.Job, bool) {
	var job database.Job
	id, ok := idParam(c, "id")
	if !ok {
		NotFound(c, notFoundMsg)
		return job, false
	}

	query := h.db.WithContext(c.Request.Context())
	if scope != nil {
		query = scope(query)
	}
	if err := query.First(&job, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, notFoundMsg)
			return job, false
		}
		loggerFor(c, h.logger).Error("load job failed", slog.Any("error", err))
		Internal(c)
		return job, false
	}
	return job, true
}
