package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// DeleteJobCascade 在一个事务内删除职位及其收藏与投递记录。
func DeleteJobCascade(ctx context.Context, db *gorm.DB, jobID uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", jobID).Delete(&SavedJob{}).Error; err != nil {
			return fmt.Errorf("delete saved jobs: %w", err)
		}
		if err := tx.Where("job_id = ?", jobID).Delete(&Application{}).Error; err != nil {
			return fmt.Errorf("delete applications: %w", err)
		}
		if err := tx.Delete(&Job{}, jobID).Error; err != nil {
			return fmt.Errorf("delete job: %w", err)
		}
		return nil
	})
}

// DeleteCompanyCascade removes a company together with its jobs and everything referencing them.
func DeleteCompanyCascade(ctx context.Context, db *gorm.DB, companyID uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		jobIDs := tx.Model(&Job{}).Select("id").Where("company_id = ?", companyID)

		if err := tx.Where("job_id IN (?)", jobIDs).Delete(&SavedJob{}).Error; err != nil {
			return fmt.Errorf("delete saved jobs: %w", err)
		}
		if err := tx.Where("job_id IN (?)", jobIDs).Delete(&Application{}).Error; err != nil {
			return fmt.Errorf("delete applications: %w", err)
		}
		if err := tx.Where("company_id = ?", companyID).Delete(&Job{}).Error; err != nil {
			return fmt.Errorf("delete jobs: %w", err)
		}
		if err := tx.Delete(&Company{}, companyID).Error; err != nil {
			return fmt.Errorf("delete company: %w", err)
		}
		return nil
	})
}

// CompanyCounts 返回公司的职位数与投递总数，每次调用都重新统计。
func CompanyCounts(ctx context.Context, db *gorm.DB, companyID uint) (jobs int64, applicants int64, err error) {
	if err = db.WithContext(ctx).Model(&Job{}).Where("company_id = ?", companyID).Count(&jobs).Error; err != nil {
		return 0, 0, fmt.Errorf("count jobs: %w", err)
	}
	err = db.WithContext(ctx).Model(&Application{}).
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("jobs.company_id = ?", companyID).
		Count(&applicants).Error
	if err != nil {
		return 0, 0, fmt.Errorf("count applicants: %w", err)
	}
	return jobs, applicants, nil
}
