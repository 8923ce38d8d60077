package webclient

import (
	"context"
	"fmt"
)

// Session 组合 Client 与 Store：请求成功后同步更新本地状态。
type Session struct {
	Client *Client
	Store  *Store
}

func NewSession(client *Client) *Session {
	return &Session{Client: client, Store: NewStore()}
}

// Login signs in and records the user. Loading is true only while the request runs.
func (s *Session) Login(ctx context.Context, in LoginInput) (User, error) {
	s.Store.SetLoading(true)
	defer s.Store.SetLoading(false)

	user, err := s.Client.Login(ctx, in)
	if err != nil {
		return User{}, err
	}
	s.Store.SetUser(&user)
	return user, nil
}

// Logout clears the server cookie and resets every state slice, even when the
// server call fails.
func (s *Session) Logout(ctx context.Context) error {
	err := s.Client.Logout(ctx)
	s.Store.Reset()
	return err
}

// LoadJobs fetches public jobs using the current searched query as keyword.
func (s *Session) LoadJobs(ctx context.Context) ([]Job, error) {
	jobs, err := s.Client.Jobs(ctx, s.Store.Jobs().SearchedQuery)
	if err != nil {
		return nil, err
	}
	s.Store.SetAllJobs(jobs)
	return jobs, nil
}

func (s *Session) LoadJob(ctx context.Context, id uint) (Job, error) {
	job, err := s.Client.Job(ctx, id)
	if err != nil {
		return Job{}, err
	}
	s.Store.SetSingleJob(&job)
	return job, nil
}

func (s *Session) LoadAdminJobs(ctx context.Context) ([]Job, error) {
	jobs, err := s.Client.AdminJobs(ctx)
	if err != nil {
		return nil, err
	}
	s.Store.SetAdminJobs(jobs)
	return jobs, nil
}

func (s *Session) LoadAppliedJobs(ctx context.Context) ([]Application, error) {
	apps, err := s.Client.AppliedJobs(ctx)
	if err != nil {
		return nil, err
	}
	s.Store.SetAppliedJobs(apps)
	return apps, nil
}

func (s *Session) LoadCompanies(ctx context.Context) ([]Company, error) {
	companies, err := s.Client.Companies(ctx)
	if err != nil {
		return nil, err
	}
	s.Store.SetCompanies(companies)
	return companies, nil
}

func (s *Session) LoadCompany(ctx context.Context, id uint) (CompanyDetail, error) {
	detail, err := s.Client.Company(ctx, id)
	if err != nil {
		return CompanyDetail{}, err
	}
	s.Store.SetSingleCompany(&detail)
	return detail, nil
}

func (s *Session) LoadApplicants(ctx context.Context, jobID uint) (Job, error) {
	job, err := s.Client.Applicants(ctx, jobID)
	if err != nil {
		return Job{}, err
	}
	s.Store.SetApplicants(&job)
	return job, nil
}

func (s *Session) LoadSavedJobs(ctx context.Context) ([]SavedJob, error) {
	saved, err := s.Client.SavedJobs(ctx)
	if err != nil {
		return nil, err
	}
	s.Store.SetSaved(saved)
	return saved, nil
}

// ToggleSaved 已收藏则取消，否则收藏；返回操作后的收藏状态。
func (s *Session) ToggleSaved(ctx context.Context, job Job) (bool, error) {
	if s.Store.isSaved(job.ID) {
		if err := s.Client.UnsaveJob(ctx, job.ID); err != nil {
			return true, fmt.Errorf("unsave job %d: %w", job.ID, err)
		}
		s.Store.removeSaved(job.ID)
		return false, nil
	}

	saved, err := s.Client.SaveJob(ctx, job.ID)
	if err != nil {
		return false, fmt.Errorf("save job %d: %w", job.ID, err)
	}
	if saved.Job == nil {
		j := job
		saved.Job = &j
	}
	s.Store.addSaved(saved)
	return true, nil
}
