package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), GormConfig(logger.Silent))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func seedJob(t *testing.T, db *gorm.DB) (User, Job) {
	t.Helper()
	owner := User{Fullname: "Rita Recruiter", Email: "rita@example.com", Role: RoleRecruiter}
	require.NoError(t, db.Create(&owner).Error)
	company := Company{Name: "Acme", UserID: owner.ID}
	require.NoError(t, db.Create(&company).Error)
	job := Job{Title: "Backend Engineer", CompanyID: company.ID, CreatedByID: owner.ID, Requirements: []string{"Go", "SQL"}}
	require.NoError(t, db.Create(&job).Error)
	return owner, job
}

func TestMigrate_UniqueEmail(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Create(&User{Email: "a@example.com"}).Error)
	err := db.Create(&User{Email: "a@example.com"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestMigrate_UniqueCompanyName(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Create(&Company{Name: "Acme"}).Error)
	err := db.Create(&Company{Name: "Acme"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// names are compared case-sensitively
	assert.NoError(t, db.Create(&Company{Name: "acme"}).Error)
}

func TestMigrate_ApplicationOncePerApplicant(t *testing.T) {
	db := newTestDB(t)
	_, job := seedJob(t, db)
	student := User{Email: "sam@example.com", Role: RoleStudent}
	require.NoError(t, db.Create(&student).Error)

	first := Application{JobID: job.ID, ApplicantID: student.ID}
	require.NoError(t, db.Create(&first).Error)
	assert.Equal(t, StatusPending, first.Status)

	err := db.Create(&Application{JobID: job.ID, ApplicantID: student.ID}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	var count int64
	require.NoError(t, db.Model(&Application{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMigrate_SavedJobOncePerUser(t *testing.T) {
	db := newTestDB(t)
	owner, job := seedJob(t, db)

	require.NoError(t, db.Create(&SavedJob{UserID: owner.ID, JobID: job.ID}).Error)
	err := db.Create(&SavedJob{UserID: owner.ID, JobID: job.ID}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestJobRequirementsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	_, job := seedJob(t, db)

	var loaded Job
	require.NoError(t, db.Preload("Company").First(&loaded, job.ID).Error)
	assert.Equal(t, []string{"Go", "SQL"}, []string(loaded.Requirements))
	assert.Equal(t, "Acme", loaded.Company.Name)
}

func seedApplication(t *testing.T, db *gorm.DB, job Job, email string) (User, Application) {
	t.Helper()
	student := User{Email: email, Role: RoleStudent}
	require.NoError(t, db.Create(&student).Error)
	app := Application{JobID: job.ID, ApplicantID: student.ID}
	require.NoError(t, db.Create(&app).Error)
	require.NoError(t, db.Create(&SavedJob{UserID: student.ID, JobID: job.ID}).Error)
	return student, app
}

func TestCompanyCounts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner, job := seedJob(t, db)
	seedApplication(t, db, job, "s1@example.com")
	seedApplication(t, db, job, "s2@example.com")

	second := Job{Title: "Frontend", CompanyID: job.CompanyID, CreatedByID: owner.ID}
	require.NoError(t, db.Create(&second).Error)
	seedApplication(t, db, second, "s3@example.com")

	other := Company{Name: "Other", UserID: owner.ID}
	require.NoError(t, db.Create(&other).Error)

	jobs, applicants, err := CompanyCounts(ctx, db, job.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), jobs)
	assert.Equal(t, int64(3), applicants)

	jobs, applicants, err = CompanyCounts(ctx, db, other.ID)
	require.NoError(t, err)
	assert.Zero(t, jobs)
	assert.Zero(t, applicants)
}

func TestDeleteJobCascade(t *testing.T) {
	db := newTestDB(t)
	_, job := seedJob(t, db)
	seedApplication(t, db, job, "s1@example.com")

	require.NoError(t, DeleteJobCascade(context.Background(), db, job.ID))

	assertCount(t, db, &Job{}, 0)
	assertCount(t, db, &Application{}, 0)
	assertCount(t, db, &SavedJob{}, 0)
	assertCount(t, db, &Company{}, 1)
}

func TestDeleteCompanyCascade(t *testing.T) {
	db := newTestDB(t)
	owner, job := seedJob(t, db)
	seedApplication(t, db, job, "s1@example.com")

	keep := Company{Name: "Keep", UserID: owner.ID}
	require.NoError(t, db.Create(&keep).Error)
	kept := Job{Title: "Stays", CompanyID: keep.ID, CreatedByID: owner.ID}
	require.NoError(t, db.Create(&kept).Error)
	seedApplication(t, db, kept, "s2@example.com")

	require.NoError(t, DeleteCompanyCascade(context.Background(), db, job.CompanyID))

	assertCount(t, db, &Company{}, 1)
	assertCount(t, db, &Job{}, 1)
	assertCount(t, db, &Application{}, 1)
	assertCount(t, db, &SavedJob{}, 1)
}

func assertCount(t *testing.T, db *gorm.DB, model any, want int64) {
	t.Helper()
	var got int64
	require.NoError(t, db.Model(model).Count(&got).Error)
	assert.Equal(t, want, got)
}
