package api

import (
	"encoding/json"
	"time"

	"jobportal/internal/database"
)

// 响应结构保持前端约定的字段名（_id、phoneNumber 等）。

// ref 是关联字段：已加载时输出对象，否则只输出 id。
type ref[T any] struct {
	ID  uint
	Obj *T
}

func (r ref[T]) MarshalJSON() ([]byte, error) {
	if r.Obj != nil {
		return json.Marshal(r.Obj)
	}
	return json.Marshal(r.ID)
}

type profileResponse struct {
	Bio                string   `json:"bio"`
	Skills             []string `json:"skills"`
	Resume             string   `json:"resume"`
	ResumeOriginalName string   `json:"resumeOriginalName"`
	ProfilePhoto       string   `json:"profilePhoto"`
}

type userResponse struct {
	ID          uint            `json:"_id"`
	Fullname    string          `json:"fullname"`
	Email       string          `json:"email"`
	PhoneNumber string          `json:"phoneNumber"`
	Role        string          `json:"role"`
	Profile     profileResponse `json:"profile"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// newUserResponse never carries the password hash.
func newUserResponse(u database.User) userResponse {
	skills := []string(u.Profile.Skills)
	if skills == nil {
		skills = []string{}
	}
	return userResponse{
		ID:          u.ID,
		Fullname:    u.Fullname,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		Profile: profileResponse{
			Bio:                u.Profile.Bio,
			Skills:             skills,
			Resume:             u.Profile.ResumeURL,
			ResumeOriginalName: u.Profile.ResumeOriginalName,
			ProfilePhoto:       u.Profile.ProfilePhotoURL,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type companyResponse struct {
	ID          uint      `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Website     string    `json:"website"`
	Location    string    `json:"location"`
	Logo        string    `json:"logo"`
	UserID      uint      `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newCompanyResponse(c database.Company) companyResponse {
	return companyResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Website:     c.Website,
		Location:    c.Location,
		Logo:        c.LogoURL,
		UserID:      c.UserID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func newCompanyList(companies []database.Company) []companyResponse {
	out := make([]companyResponse, 0, len(companies))
	for _, c := range companies {
		out = append(out, newCompanyResponse(c))
	}
	return out
}

type jobResponse struct {
	ID              uint                  `json:"_id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Requirements    []string              `json:"requirements"`
	Salary          float64               `json:"salary"`
	Location        string                `json:"location"`
	JobType         string                `json:"jobType"`
	ExperienceLevel string                `json:"experienceLevel"`
	Position        int                   `json:"position"`
	CompanyID       uint                  `json:"companyId"`
	Company         ref[companyResponse]  `json:"company"`
	CreatedBy       uint                  `json:"created_by"`
	Applications    []applicationResponse `json:"applications"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// newJobResponse embeds the company only when it was preloaded.
func newJobResponse(j database.Job) jobResponse {
	requirements := []string(j.Requirements)
	if requirements == nil {
		requirements = []string{}
	}
	resp := jobResponse{
		ID:              j.ID,
		Title:           j.Title,
		Description:     j.Description,
		Requirements:    requirements,
		Salary:          j.Salary,
		Location:        j.Location,
		JobType:         j.JobType,
		ExperienceLevel: j.ExperienceLevel,
		Position:        j.Position,
		CompanyID:       j.CompanyID,
		Company:         ref[companyResponse]{ID: j.CompanyID},
		CreatedBy:       j.CreatedByID,
		Applications:    newApplicationList(j.Applications),
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
	}
	if j.Company.ID != 0 {
		company := newCompanyResponse(j.Company)
		resp.Company.Obj = &company
	}
	return resp
}

func newJobList(jobs []database.Job) []jobResponse {
	out := make([]jobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, newJobResponse(j))
	}
	return out
}

type applicationResponse struct {
	ID          uint              `json:"_id"`
	JobID       uint              `json:"jobId"`
	Job         ref[jobResponse]  `json:"job"`
	ApplicantID uint              `json:"applicantId"`
	Applicant   ref[userResponse] `json:"applicant"`
	Status      string            `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func newApplicationResponse(a database.Application) applicationResponse {
	resp := applicationResponse{
		ID:          a.ID,
		JobID:       a.JobID,
		Job:         ref[jobResponse]{ID: a.JobID},
		ApplicantID: a.ApplicantID,
		Applicant:   ref[userResponse]{ID: a.ApplicantID},
		Status:      a.Status,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if a.Job.ID != 0 {
		job := newJobResponse(a.Job)
		resp.Job.Obj = &job
	}
	if a.Applicant.ID != 0 {
		applicant := newUserResponse(a.Applicant)
		resp.Applicant.Obj = &applicant
	}
	return resp
}

func newApplicationList(apps []database.Application) []applicationResponse {
	out := make([]applicationResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, newApplicationResponse(a))
	}
	return out
}

type savedJobResponse struct {
	ID        uint             `json:"_id"`
	UserID    uint             `json:"userId"`
	JobID     uint             `json:"jobId"`
	Job       ref[jobResponse] `json:"job"`
	CreatedAt time.Time        `json:"createdAt"`
}

func newSavedJobResponse(s database.SavedJob) savedJobResponse {
	resp := savedJobResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		JobID:     s.JobID,
		Job:       ref[jobResponse]{ID: s.JobID},
		CreatedAt: s.CreatedAt,
	}
	if s.Job.ID != 0 {
		job := newJobResponse(s.Job)
		resp.Job.Obj = &job
	}
	return resp
}
