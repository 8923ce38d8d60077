package database

import (
	"time"

	"gorm.io/datatypes"
)

// Roles a user may register with.
const (
	RoleStudent   = "student"
	RoleRecruiter = "recruiter"
)

// Application statuses. pending is the only initial state.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// User 表示求职者或招聘者账号。
type User struct {
	ID           uint    `gorm:"primaryKey"`
	Fullname     string  `gorm:"size:128"`
	Email        string  `gorm:"uniqueIndex;size:255"`
	PhoneNumber  string  `gorm:"size:32"`
	PasswordHash string  `gorm:"size:255"`
	Role         string  `gorm:"size:16;index"`
	Profile      Profile `gorm:"embedded;embeddedPrefix:profile_"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the editable, optional part of a user.
type Profile struct {
	Bio                string `gorm:"type:text"`
	Skills             datatypes.JSONSlice[string]
	ResumeURL          string `gorm:"size:512"`
	ResumeOriginalName string `gorm:"size:255"`
	ProfilePhotoURL    string `gorm:"size:512"`
}

// Company 由招聘者注册，名称全局唯一。
type Company struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;size:255"`
	Description string `gorm:"type:text"`
	Website     string `gorm:"size:512"`
	Location    string `gorm:"size:255"`
	LogoURL     string `gorm:"size:512"`
	UserID      uint   `gorm:"index"`
	User        User
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Job 表示招聘者发布的职位。
type Job struct {
	ID              uint   `gorm:"primaryKey"`
	Title           string `gorm:"size:255"`
	Description     string `gorm:"type:text"`
	Requirements    datatypes.JSONSlice[string]
	Salary          float64
	Location        string `gorm:"size:255"`
	JobType         string `gorm:"size:64"`
	ExperienceLevel string `gorm:"size:64"`
	Position        int
	CompanyID       uint `gorm:"index"`
	Company         Company
	CreatedByID     uint `gorm:"index"`
	CreatedBy       User
	Applications    []Application
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time
}

// Application 表示一次投递；同一用户对同一职位最多一条。
type Application struct {
	ID          uint `gorm:"primaryKey"`
	JobID       uint `gorm:"uniqueIndex:idx_application_job_applicant"`
	Job         Job
	ApplicantID uint `gorm:"uniqueIndex:idx_application_job_applicant;index"`
	Applicant   User
	Status      string `gorm:"size:16;default:pending"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SavedJob 表示用户收藏的职位；(UserID, JobID) 唯一。
type SavedJob struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"uniqueIndex:idx_saved_job_user_job"`
	User      User
	JobID     uint `gorm:"uniqueIndex:idx_saved_job_user_job;index"`
	Job       Job
	CreatedAt time.Time
}

// AllModels lists every entity in dependency order for migrations.
func AllModels() []any {
	return []any{&User{}, &Company{}, &Job{}, &Application{}, &SavedJob{}}
}
