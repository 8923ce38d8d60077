package webclient

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// PageSize is the number of rows per page in the recruiter tables.
const PageSize = 5

const (
	SortNewest = "new"
	SortOldest = "old"
	StatusAll  = "All"
)

// FilterJobs 按标题、描述、地点（不区分大小写）或薪资子串匹配；空查询返回全部。
func FilterJobs(jobs []Job, query string) []Job {
	if query == "" {
		return slices.Clone(jobs)
	}
	lower := strings.ToLower(query)
	out := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		if strings.Contains(strings.ToLower(job.Title), lower) ||
			strings.Contains(strings.ToLower(job.Description), lower) ||
			strings.Contains(strings.ToLower(job.Location), lower) ||
			strings.Contains(formatSalary(job.Salary), query) {
			out = append(out, job)
		}
	}
	return out
}

// SearchTitles narrows jobs by a case-insensitive title substring.
func SearchTitles(jobs []Job, text string) []Job {
	if text == "" {
		return slices.Clone(jobs)
	}
	lower := strings.ToLower(text)
	out := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		if strings.Contains(strings.ToLower(job.Title), lower) {
			out = append(out, job)
		}
	}
	return out
}

// ApplicantQuery drives the applicants table. Page is 1-based; values below 1 mean 1.
// Status "" or "All" disables the status filter. Sort defaults to newest first.
type ApplicantQuery struct {
	Search string
	Status string
	Sort   string
	Page   int
}

// ApplicantPage is one page of filtered applications.
type ApplicantPage struct {
	Items      []Application
	Total      int
	TotalPages int
	Page       int
}

// FilterApplicants 依次执行姓名搜索、状态过滤、按申请人注册时间排序，再分页。
func FilterApplicants(apps []Application, q ApplicantQuery) ApplicantPage {
	lower := strings.ToLower(q.Search)
	filtered := make([]Application, 0, len(apps))
	for _, app := range apps {
		if lower != "" && (app.Applicant == nil || !strings.Contains(strings.ToLower(app.Applicant.Fullname), lower)) {
			continue
		}
		if q.Status != "" && q.Status != StatusAll && app.Status != q.Status {
			continue
		}
		filtered = append(filtered, app)
	}

	slices.SortStableFunc(filtered, func(a, b Application) int {
		return compareTime(applicantCreatedAt(a), applicantCreatedAt(b), q.Sort)
	})

	items, page, totalPages := paginate(filtered, q.Page)
	return ApplicantPage{Items: items, Total: len(filtered), TotalPages: totalPages, Page: page}
}

// ListQuery drives the admin jobs and companies tables.
type ListQuery struct {
	Search string
	Sort   string
	Page   int
}

// JobPage is one page of filtered jobs.
type JobPage struct {
	Items      []Job
	Total      int
	TotalPages int
	Page       int
}

// FilterAdminJobs matches title or company name, then sorts by creation time.
func FilterAdminJobs(jobs []Job, q ListQuery) JobPage {
	lower := strings.ToLower(q.Search)
	filtered := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		if lower != "" {
			company := ""
			if job.Company != nil {
				company = job.Company.Name
			}
			if !strings.Contains(strings.ToLower(job.Title), lower) && !strings.Contains(strings.ToLower(company), lower) {
				continue
			}
		}
		filtered = append(filtered, job)
	}

	slices.SortStableFunc(filtered, func(a, b Job) int {
		return compareTime(a.CreatedAt, b.CreatedAt, q.Sort)
	})

	items, page, totalPages := paginate(filtered, q.Page)
	return JobPage{Items: items, Total: len(filtered), TotalPages: totalPages, Page: page}
}

// FilterCompanies matches company names case-insensitively and paginates; order is kept.
func FilterCompanies(companies []Company, q ListQuery) ([]Company, int) {
	lower := strings.ToLower(q.Search)
	filtered := make([]Company, 0, len(companies))
	for _, c := range companies {
		if lower == "" || strings.Contains(strings.ToLower(c.Name), lower) {
			filtered = append(filtered, c)
		}
	}
	items, _, totalPages := paginate(filtered, q.Page)
	return items, totalPages
}

// TotalPages returns ceil(n / PageSize).
func TotalPages(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + PageSize - 1) / PageSize
}

// DaysAgo returns whole days elapsed since createdAt, floored; future times give 0.
func DaysAgo(createdAt, now time.Time) int {
	d := now.Sub(createdAt)
	if d < 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// paginate 返回第 page 页（从 1 开始）；越界页返回空切片。
func paginate[T any](items []T, page int) ([]T, int, int) {
	if page < 1 {
		page = 1
	}
	totalPages := TotalPages(len(items))
	start := (page - 1) * PageSize
	if start >= len(items) {
		return []T{}, page, totalPages
	}
	end := min(start+PageSize, len(items))
	return slices.Clone(items[start:end]), page, totalPages
}

func compareTime(a, b time.Time, order string) int {
	if order == SortOldest {
		return a.Compare(b)
	}
	return b.Compare(a)
}

func applicantCreatedAt(app Application) time.Time {
	if app.Applicant != nil {
		return app.Applicant.CreatedAt
	}
	return app.CreatedAt
}

// formatSalary renders salary the way it appears in listings (no trailing zeros).
func formatSalary(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
