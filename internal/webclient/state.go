package webclient

import (
	"slices"
	"sync"
)

// AuthState holds the signed-in user; User is nil when signed out.
type AuthState struct {
	User    *User
	Loading bool
}

type JobState struct {
	AllJobs       []Job
	AdminJobs     []Job
	SingleJob     *Job
	SearchedQuery string
	AppliedJobs   []Application
}

type CompanyState struct {
	Companies     []Company
	SingleCompany *CompanyDetail
}

type ApplicationState struct {
	Applicants *Job
}

type SavedJobState struct {
	AllSaved []SavedJob
}

// 各状态的初始值；切片一律为空切片而非 nil。
func initialAuth() AuthState { return AuthState{} }

func initialJobs() JobState {
	return JobState{AllJobs: []Job{}, AdminJobs: []Job{}, AppliedJobs: []Application{}}
}

func initialCompanies() CompanyState { return CompanyState{Companies: []Company{}} }

func initialApplications() ApplicationState { return ApplicationState{} }

func initialSaved() SavedJobState { return SavedJobState{AllSaved: []SavedJob{}} }

// Store 以互斥锁保护全部客户端状态，读取返回副本。
type Store struct {
	mu           sync.RWMutex
	auth         AuthState
	jobs         JobState
	companies    CompanyState
	applications ApplicationState
	saved        SavedJobState
}

func NewStore() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Reset restores every slice to its initial state.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = initialAuth()
	s.jobs = initialJobs()
	s.companies = initialCompanies()
	s.applications = initialApplications()
	s.saved = initialSaved()
}

func (s *Store) Auth() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auth
}

func (s *Store) Jobs() JobState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.jobs
	out.AllJobs = slices.Clone(s.jobs.AllJobs)
	out.AdminJobs = slices.Clone(s.jobs.AdminJobs)
	out.AppliedJobs = slices.Clone(s.jobs.AppliedJobs)
	return out
}

func (s *Store) Companies() CompanyState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.companies
	out.Companies = slices.Clone(s.companies.Companies)
	return out
}

func (s *Store) Applications() ApplicationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applications
}

func (s *Store) Saved() SavedJobState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SavedJobState{AllSaved: slices.Clone(s.saved.AllSaved)}
}

// ---- mutators ----

func (s *Store) SetUser(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth.User = u
}

func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth.Loading = loading
}

func (s *Store) SetAllJobs(jobs []Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs.AllJobs = nonNil(jobs)
}

func (s *Store) SetAdminJobs(jobs []Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs.AdminJobs = nonNil(jobs)
}

func (s *Store) SetSingleJob(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs.SingleJob = job
}

func (s *Store) SetSearchedQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs.SearchedQuery = q
}

func (s *Store) SetAppliedJobs(apps []Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs.AppliedJobs = nonNil(apps)
}

func (s *Store) SetCompanies(companies []Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies.Companies = nonNil(companies)
}

func (s *Store) SetSingleCompany(c *CompanyDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies.SingleCompany = c
}

func (s *Store) SetApplicants(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications.Applicants = job
}

func (s *Store) SetSaved(saved []SavedJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved.AllSaved = nonNil(saved)
}

// isSaved 判断某职位是否已在收藏列表中。
func (s *Store) isSaved(jobID uint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.saved.AllSaved {
		if savedJobID(item) == jobID {
			return true
		}
	}
	return false
}

func (s *Store) addSaved(item SavedJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved.AllSaved = append(s.saved.AllSaved, item)
}

func (s *Store) removeSaved(jobID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]SavedJob, 0, len(s.saved.AllSaved))
	for _, item := range s.saved.AllSaved {
		if savedJobID(item) != jobID {
			kept = append(kept, item)
		}
	}
	s.saved.AllSaved = kept
}

func savedJobID(item SavedJob) uint {
	if item.Job != nil {
		return item.Job.ID
	}
	return item.JobID
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
