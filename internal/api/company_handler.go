package api

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"jobportal/internal/database"
)

const (
	msgCompanyNotFound    = "Company not found."
	msgCompanyNameMissing = "Company name is required."
	msgCompanyDuplicate   = "You can not register same company again."
	msgCompanyForbidden   = "You are not allowed to modify this company."
)

// CompanyHandler 处理公司的注册、查询、更新与删除。
type CompanyHandler struct {
	db       *gorm.DB
	uploader *Uploader
	logger   *slog.Logger
}

func NewCompanyHandler(db *gorm.DB, uploader *Uploader, logger *slog.Logger) *CompanyHandler {
	return &CompanyHandler{db: db, uploader: uploader, logger: logger}
}

type registerCompanyRequest struct {
	CompanyName string `form:"companyName" json:"companyName" binding:"required"`
}

// Register 创建公司；名称大小写敏感且全局唯一。
func (h *CompanyHandler) Register(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		Unauthorized(c)
		return
	}

	var req registerCompanyRequest
	if !bindRequest(c, &req, msgCompanyNameMissing) {
		return
	}
	name := strings.TrimSpace(req.CompanyName)
	if name == "" {
		BadRequest(c, msgCompanyNameMissing)
		return
	}

	ctx := c.Request.Context()
	logger := loggerFor(c, h.logger).With(slog.Uint64("user_id", uint64(userID)), slog.String("company", name))

	taken, err := h.nameTaken(c, name, 0)
	if err != nil {
		logger.Error("company lookup failed", slog.Any("error", err))
		Internal(c)
		return
	}
	if taken {
		BadRequest(c, msgCompanyDuplicate)
		return
	}

	company := database.Company{Name: name, UserID: userID}
	if err := h.db.WithContext(ctx).Create(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			BadRequest(c, msgCompanyDuplicate)
			return
		}
		logger.Error("create company failed", slog.Any("error", err))
		Internal(c)
		return
	}

	logger.Info("company registered", slog.Uint64("company_id", uint64(company.ID)))
	Created(c, "Company registered successfully.", gin.H{"company": newCompanyResponse(company)})
}

// List 返回调用者拥有的公司。
func (h *CompanyHandler) List(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		Unauthorized(c)
		return
	}

	var companies []database.Company
	if err := h.db.WithContext(c.Request.Context()).Where("user_id = ?", userID).Order("id").Find(&companies).Error; err != nil {
		loggerFor(c, h.logger).Error("list companies failed", slog.Any("error", err))
		Internal(c)
		return
	}
	OK(c, "", gin.H{"companies": newCompanyList(companies)})
}

// Get 返回公司详情及 jobsCount、applicantsCount。
func (h *CompanyHandler) Get(c *gin.Context) {
	company, ok := h.load(c)
	if !ok {
		return
	}

	jobsCount, applicantsCount, err := database.CompanyCounts(c.Request.Context(), h.db, company.ID)
	if err != nil {
		loggerFor(c, h.logger).Error("count company stats failed", slog.Any("error", err))
		Internal(c)
		return
	}

	OK(c, "", gin.H{
		"company":         newCompanyResponse(company),
		"jobsCount":       jobsCount,
		"applicantsCount": applicantsCount,
	})
}

type companyPatch struct {
	Name        *string `form:"name" json:"name"`
	Description *string `form:"description" json:"description"`
	Website     *string `form:"website" json:"website"`
	Location    *string `form:"location" json:"location"`
}

func (p companyPatch) apply(company *database.Company) {
	if v := trimmed(p.Name); v != "" {
		company.Name = v
	}
	if p.Description != nil {
		company.Description = strings.TrimSpace(*p.Description)
	}
	if p.Website != nil {
		company.Website = strings.TrimSpace(*p.Website)
	}
	if p.Location != nil {
		company.Location = strings.TrimSpace(*p.Location)
	}
}

// Update 部分更新公司信息；只有上传了新文件才替换 logo。
func (h *CompanyHandler) Update(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		Unauthorized(c)
		return
	}

	var patch companyPatch
	if err := c.ShouldBind(&patch); err != nil {
		BadRequest(c, "Invalid company data.")
		return
	}

	company, ok := h.load(c)
	if !ok {
		return
	}
	if company.UserID != userID {
		Forbidden(c, msgCompanyForbidden)
		return
	}

	ctx := c.Request.Context()
	logger := loggerFor(c, h.logger).With(slog.Uint64("company_id", uint64(company.ID)))

	previousName := company.Name
	patch.apply(&company)
	if company.Name != previousName {
		taken, err := h.nameTaken(c, company.Name, company.ID)
		if err != nil {
			logger.Error("company lookup failed", slog.Any("error", err))
			Internal(c)
			return
		}
		if taken {
			BadRequest(c, msgCompanyDuplicate)
			return
		}
	}

	logo, err := h.uploader.FromForm(c, "companyLogo", kindCompanyLogo, userID)
	if writeUploadError(c, logger, err) {
		return
	}
	previousLogo := ""
	if logo != nil {
		previousLogo = company.LogoURL
		company.LogoURL = logo.URL
	}

	if err := h.db.WithContext(ctx).Save(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			BadRequest(c, msgCompanyDuplicate)
			return
		}
		logger.Error("update company failed", slog.Any("error", err))
		Internal(c)
		return
	}
	h.uploader.Discard(ctx, logger, previousLogo)

	OK(c, "Company information updated successfully.", gin.H{"company": newCompanyResponse(company)})
}

// Delete 删除公司，并级联删除其职位、投递与收藏。
func (h *CompanyHandler) Delete(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		Unauthorized(c)
		return
	}

	company, ok := h.load(c)
	if !ok {
		return
	}
	if company.UserID != userID {
		Forbidden(c, msgCompanyForbidden)
		return
	}

	ctx := c.Request.Context()
	logger := loggerFor(c, h.logger).With(slog.Uint64("company_id", uint64(company.ID)))
	if err := database.DeleteCompanyCascade(ctx, h.db, company.ID); err != nil {
		logger.Error("delete company failed", slog.Any("error", err))
		Internal(c)
		return
	}
	h.uploader.Discard(ctx, logger, company.LogoURL)

	logger.Info("company deleted")
	OK(c, "Company deleted successfully", nil)
}

// load 解析 :id 并加载公司，失败时已写出响应。
func (h *CompanyHandler) load(c *gin.Context) (database.Company, bool) {
	var company database.Company
	id, ok := idParam(c, "id")
	if !ok {
		NotFound(c, msgCompanyNotFound)
		return company, false
	}
	if err := h.db.WithContext(c.Request.Context()).First(&company, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, msgCompanyNotFound)
			return company, false
		}
		loggerFor(c, h.logger).Error("load company failed", slog.Any("error", err))
		Internal(c)
		return company, false
	}
	return company, true
}

func (h *CompanyHandler) nameTaken(c *gin.Context, name string, exceptID uint) (bool, error) {
	var count int64
	err := h.db.WithContext(c.Request.Context()).Model(&database.Company{}).
		Where("name = ? AND id <> ?", name, exceptID).Count(&count).Error
	return count > 0, err
}
