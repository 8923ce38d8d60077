package webclient

import (
	"bytes"
	"encoding/json"
	"time"
)

// 与 API 响应字段一一对应。

type Profile struct {
	Bio                string   `json:"bio"`
	Skills             []string `json:"skills"`
	Resume             string   `json:"resume"`
	ResumeOriginalName string   `json:"resumeOriginalName"`
	ProfilePhoto       string   `json:"profilePhoto"`
}

type User struct {
	ID          uint      `json:"_id"`
	Fullname    string    `json:"fullname"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	Role        string    `json:"role"`
	Profile     Profile   `json:"profile"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Company struct {
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

// CompanyDetail is the single-company view with its aggregate counts.
type CompanyDetail struct {
	Company         Company `json:"company"`
	JobsCount       int64   `json:"jobsCount"`
	ApplicantsCount int64   `json:"applicantsCount"`
}

type Job struct {
	ID              uint          `json:"_id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Requirements    []string      `json:"requirements"`
	Salary          float64       `json:"salary"`
	Location        string        `json:"location"`
	JobType         string        `json:"jobType"`
	ExperienceLevel string        `json:"experienceLevel"`
	Position        int           `json:"position"`
	CompanyID       uint          `json:"companyId"`
	Company         *Company      `json:"company,omitempty"`
	CreatedBy       uint          `json:"created_by"`
	Applications    []Application `json:"applications"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// UnmarshalJSON accepts company as either an embedded object or a bare id.
func (j *Job) UnmarshalJSON(data []byte) error {
	type plain Job
	var aux struct {
		plain
		Company json.RawMessage `json:"company"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*j = Job(aux.plain)
	company, err := decodeRef[Company](aux.Company, &j.CompanyID)
	j.Company = company
	return err
}

type Application struct {
	ID          uint      `json:"_id"`
	JobID       uint      `json:"jobId"`
	Job         *Job      `json:"job,omitempty"`
	ApplicantID uint      `json:"applicantId"`
	Applicant   *User     `json:"applicant,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (a *Application) UnmarshalJSON(data []byte) error {
	type plain Application
	var aux struct {
		plain
		Job       json.RawMessage `json:"job"`
		Applicant json.RawMessage `json:"applicant"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*a = Application(aux.plain)
	var err error
	if a.Job, err = decodeRef[Job](aux.Job, &a.JobID); err != nil {
		return err
	}
	a.Applicant, err = decodeRef[User](aux.Applicant, &a.ApplicantID)
	return err
}

type SavedJob struct {
	ID        uint      `json:"_id"`
	UserID    uint      `json:"userId"`
	JobID     uint      `json:"jobId"`
	Job       *Job      `json:"job,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *SavedJob) UnmarshalJSON(data []byte) error {
	type plain SavedJob
	var aux struct {
		plain
		Job json.RawMessage `json:"job"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = SavedJob(aux.plain)
	job, err := decodeRef[Job](aux.Job, &s.JobID)
	s.Job = job
	return err
}

// decodeRef 解析关联字段：对象返回指针，数字只写入 id。
func decodeRef[T any](raw json.RawMessage, id *uint) (*T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] != '{' {
		return nil, json.Unmarshal(raw, id)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// 请求体。

type RegisterInput struct {
	Fullname    string `json:"fullname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// ProfileUpdate 只发送非空字段；Skills 为逗号分隔字符串。
type ProfileUpdate struct {
	Fullname    string `json:"fullname,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Skills      string `json:"skills,omitempty"`
}

type CompanyUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Website     *string `json:"website,omitempty"`
	Location    *string `json:"location,omitempty"`
}

type JobInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	Salary       float64  `json:"salary"`
	Location     string   `json:"location"`
	JobType      string   `json:"jobType"`
	Experience   string   `json:"experience"`
	Position     int      `json:"position"`
	CompanyID    uint     `json:"companyId"`
}

type JobUpdate struct {
	Title           *string   `json:"title,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Requirements    *[]string `json:"requirements,omitempty"`
	Salary          *float64  `json:"salary,omitempty"`
	Location        *string   `json:"location,omitempty"`
	JobType         *string   `json:"jobType,omitempty"`
	ExperienceLevel *string   `json:"experienceLevel,omitempty"`
	Position        *int      `json:"position,omitempty"`
}
