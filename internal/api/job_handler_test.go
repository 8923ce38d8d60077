package api

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal/internal/database"
)

func validJobPayload(companyID uint) map[string]any {
	return map[string]any{
		"title":        "Backend Engineer",
		"description":  "Build APIs",
		"requirements": "Go, PostgreSQL,Redis",
		"salary":       "50",
		"location":     "Remote",
		"jobType":      "Full-time",
		"experience":   2,
		"position":     "3",
		"companyId":    fmt.Sprint(companyID),
	}
}

func TestPostJob(t *testing.T) {
	env := newTestEnv(t, nil)
	owner := env.seedUser(t, "rita@example.com", database.RoleRecruiter)
	company := env.seedCompany(t, owner, "Acme")

	w, body := env.doJSON(t, http.MethodPost, "/api/v1/job/post", validJobPayload(company.ID), env.cookieFor(t, owner))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Job posted successfully.", body.message())

	job := body["job"].(map[string]any)
	assert.Equal(t, float64(50), job["salary"])
	assert.Equal(t, []any{"Go", "PostgreSQL", "Redis"}, job["requirements"])
	assert.Equal(t, float64(3), job["position"])
	assert.Equal(t, "2", job["experienceLevel"])
	assert.Equal(t, float64(owner.ID), job["created_by"])

	var stored database.Job
	require.NoError(t, env.db.First(&stored).Error)
	assert.Equal(t, 50.0, stored.Salary)
	assert.Equal(t, company.ID, stored.CompanyID)
}

func TestPostJob_FormEncoded(t *testing.T) {
	env := newTestEnv(t, nil)
	owner := env.seedUser(t, "rita@example.com", database.RoleRecruiter)
	company := env.seedCompany(t, owner, "Acme")
	cookie := env.cookieFor(t, owner)

	fields := map[string]string{
		"title":        "Backend Engineer",
		"description":  "Build APIs",
		"requirements": "Go, SQL",
		"salary":       "50",
		"location":     "Remote",
		"jobType":      "Full-time",
		"experience":   "2",
		"position":     "3",
		"companyId":    fmt.Sprint(company.ID),
	}
	form := url.Values{}
	for k, v := range fields {
		form.Set(k, v)
	}

	w, body := env.doForm(t, http.MethodPost, "/api/v1/job/post", form, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, []any{"Go", "SQL"}, body["job"].(map[string]any)["requirements"])

	fields["requirements"] = "Docker,Redis, "
	w, body = env.doMultipart(t, http.MethodPost, "/api/v1/job/post", fields, nil, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, []any{"Docker", "Redis"}, body["job"].(map[string]any)["requirements"])

	var stored []database.Job
	require.NoError(t, env.db.Order("id").Find(&stored).Error)
	require.Len(t, stored, 2)
	assert.Equal(t, []string{"Go", "SQL"}, []string(stored[0].Requirements))

	form.Set("requirements", " , ")
	w, body = env.doForm(t, http.MethodPost, "/api/v1/job/post", form, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Something is missing.", body.message())
}

func TestPostJob_Validation(t *testing.T) {
	env := newTestEnv(t, nil)
	owner := env.seedUser(t, "rita@example.com", database.RoleRecruiter)
	intruder := env.seedUser(t, "eve@example.com", database.RoleRecruiter)
	company := env.seedCompany(t, owner, "Acme")

	missing := validJobPayload(company.ID)
	delete(missing, "location")
	w, body := env.doJSON(t, http.MethodPost, "/api/v1/job/post", missing, env.cookieFor(t, owner))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Something is missing.", body.message())

	w, body = env.doRaw(t, http.MethodPost, "/api/v1/job/post", "application/json", `{"title":`, env.cookieFor(t, owner))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body.", body.message())

	badSalary := validJobPayload(company.ID)
	badSalary["salary"] = "lots"
	w, body = env.doJSON(t, http.MethodPost, "/api/v1/job/post", badSalary, env.cookieFor(t, owner))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Salary must be a number.", body.message())

	badPosition := validJobPayload(company.ID)
	badPosition["position"] = "1.5"
	w, _ = env.doJSON(t, http.MethodPost, "/api/v1/job/post", badPosition, env.cookieFor(t, owner))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.doJSON(t, http.MethodPost, "/api/v1/job/post", validJobPayload(company.ID), env.cookieFor(t, intruder))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = env.doJSON(t, http.MethodPost, "/api/v1/job/post", validJobPayload(999), env.cookieFor(t, owner))
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Zero(t, countRows(t, env.db, &database.Job{}))
}

func TestListJobs_KeywordAndOrder(t *testing.T) {
	env := newTestEnv(t, nil)
	owner := env.seedUser(t, "rita@example.com", database.RoleRecruiter)
	company := env.seedCompany(t, owner, "Acme")

	older := env.seedJob(t, company, "Go Developer")
	require.NoError(t, env.db.Model(&older).Update("created_at", time.Now().Add(-time.Hour)).Error)
	env.seedJob(t, company, "Designer")
	newest := env.seedJob(t, company, "Data Analyst")
	require.NoError(t, env.db.Model(&newest).Update("description", "Knows GO and SQL").Error)

	w, body := env.doJSON(t, http.MethodGet, "/api/v1/job/get", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	jobs := body["jobs"].([]any)
	require.Len(t, jobs, 3)
	assert.Equal(t, "Data Analyst", jobs[0].(map[string]any)["title"])
	assert.Equal(t, "Go Developer", jobs[2].(map[string]any)["title"])
	assert.Equal(t, "Acme", jobs[0].(map[string]any)["company"].(map[string]any)["name"])

	w, body = env.doJSON(t, http.MethodGet, "/api/v1/job/get?keyword=go", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	jobs = body["jobs"].([]any)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Data Analyst", jobs[0].(map[string]any)["title"])
	assert.Equal(t, "Go Developer", jobs[1].(map[string]any)["title"])

	w, body = env.doJSON(t, http.MethodGet, "/api/v1/job/get?keyword=100%25", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["jobs"])
}

func TestGetJob_RequiresAuthAndIncludesApplications(t *testing.T) {
	env := newTestEnv(t, nil)
	owner := env.seedUser(t, "rita@example.com", database.RoleRecruiter)
	student := env.seedUser(t, "sam@example.com", database.RoleStudent)
	job := env.seedJob(t, env.seedCompany(t, owner, "Acme"), "Backend")
	require.NoError(t, env.db.Create(&database.Application{JobID: job.ID, ApplicantID: student.ID}).Error)
	path := fmt.Sprintf("/api/v1/job/get/%d", job.ID)

	w, _ := env.doJSON(t, http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := env.doJSON(t, http.MethodGet, path, nil, env.cookieFor(t, student))
	require.Equal(t, http.StatusOK, w.Code)
	apps := body["job"].(map[string]any)["applications"].([]any)
	require.Len(t, apps, 1)
	assert.Equal(t, float64(student.ID), apps[0].(map[string]any)["applicant"])
	assert.Equal(t, "pending", apps[0].(map[string]any)["status"])

	w, body = env.doJSON(t, http.MethodGet, "/api/v1/job/get/404", nil, env.cookieFor(t, student))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Job not found.", body.message())
}

func TestAdminJobs(t *testing.T) {
	env := newTestEnv(t, nil)
	owner := env.seedUser(t, "rita@example.com", database.RoleRecruiter)
	other := env.seedUser(t, "otto@example.com", database.RoleRecruiter)
	env.seedJob(t, env.seedCompany(t, owner, "Acme"), "Mine")
	env.seedJob(t, env.seedCompany(t, other, "Globex"), "Theirs")

	w, body := env.doJSON(t, http.MethodGet, "/api/v1/job/getadminjobs", nil, env.cookieFor(t, owner))
	require.Equal(t, http.StatusOK, w.Code)
	jobs := body["jobs"].([]any)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Mine", jobs[0].(map[string]any)["title"])
}

func TestUpdateJob(t *testing.T) {
	env := newTestEnv(t, nil)
	owner := env.seedUser(t, "rita@example.com", database.RoleRecruiter)
	intruder := env.seedUser(t, "eve@example.com", database.RoleRecruiter)
	job := env.seedJob(t, env.seedCompany(t, owner, "Acme"), "Backend")
	path := fmt.Sprintf("/api/v1/job/update/%d", job.ID)

	w, body := env.doJSON(t, http.MethodPut, path, map[string]any{"salary": 75.5, "requirements": []string{"Go", "Kafka"}}, env.cookieFor(t, owner))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Job updated successfully", body.message())

	var reloaded database.Job
	require.NoError(t, env.db.First(&reloaded, job.ID).Error)
	assert.Equal(t, 75.5, reloaded.Salary)
	assert.Equal(t, []string{"Go", "Kafka"}, []string(reloaded.Requirements))
	assert.Equal(t, "Backend", reloaded.Title)

	w, _ = env.doJSON(t, http.MethodPut, path, map[string]any{"salary": "free"}, env.cookieFor(t, owner))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.doJSON(t, http.MethodPut, path, map[string]any{"title": "Hijacked"}, env.cookieFor(t, intruder))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = env.doJSON(t, http.MethodPut, "/api/v1/job/update/999", map[string]any{"title": "x"}, env.cookieFor(t, owner))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Job not found", body.message())
}

func TestDeleteJob(t *testing.T) {
	env := newTestEnv(t, nil)
	owner := env.seedUser(t, "rita@example.com", database.RoleRecruiter)
	intruder := env.seedUser(t, "eve@example.com", database.RoleRecruiter)
	student := env.seedUser(t, "sam@example.com", database.RoleStudent)
	job := env.seedJob(t, env.seedCompany(t, owner, "Acme"), "Backend")
	require.NoError(t, env.db.Create(&database.Application{JobID: job.ID, ApplicantID: student.ID}).Error)
	require.NoError(t, env.db.Create(&database.SavedJob{JobID: job.ID, UserID: student.ID}).Error)
	path := fmt.Sprintf("/api/v1/job/%d", job.ID)

	w, _ := env.doJSON(t, http.MethodDelete, path, nil, env.cookieFor(t, intruder))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body := env.doJSON(t, http.MethodDelete, path, nil, env.cookieFor(t, owner))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Job deleted successfully", body.message())
	assert.Zero(t, countRows(t, env.db, &database.Job{}))
	assert.Zero(t, countRows(t, env.db, &database.Application{}))
	assert.Zero(t, countRows(t, env.db, &database.SavedJob{}))
	assert.Equal(t, int64(1), countRows(t, env.db, &database.Company{}))

	w, _ = env.doJSON(t, http.MethodDelete, path, nil, env.cookieFor(t, owner))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
