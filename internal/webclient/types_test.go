package webclient

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJob_DecodesReferencesByIDOrObject(t *testing.T) {
	raw := `{
		"_id": 7,
		"title": "Backend",
		"companyId": 3,
		"company": 3,
		"applications": [
			{"_id": 1, "jobId": 7, "job": 7, "applicantId": 9, "applicant": 9, "status": "pending"}
		]
	}`
	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.Equal(t, uint(7), job.ID)
	assert.Equal(t, uint(3), job.CompanyID)
	assert.Nil(t, job.Company)
	require.Len(t, job.Applications, 1)
	assert.Equal(t, uint(9), job.Applications[0].ApplicantID)
	assert.Nil(t, job.Applications[0].Applicant)
	assert.Nil(t, job.Applications[0].Job)

	raw = `{
		"_id": 1,
		"jobId": 7,
		"job": {"_id": 7, "title": "Backend", "company": {"_id": 3, "name": "Acme"}},
		"applicant": {"_id": 9, "fullname": "Sam"},
		"status": "accepted"
	}`
	var app Application
	require.NoError(t, json.Unmarshal([]byte(raw), &app))
	require.NotNil(t, app.Job)
	require.NotNil(t, app.Job.Company)
	assert.Equal(t, "Acme", app.Job.Company.Name)
	require.NotNil(t, app.Applicant)
	assert.Equal(t, "Sam", app.Applicant.Fullname)
	assert.Equal(t, "accepted", app.Status)

	var saved SavedJob
	require.NoError(t, json.Unmarshal([]byte(`{"_id": 2, "userId": 9, "job": 7}`), &saved))
	assert.Equal(t, uint(7), saved.JobID)
	assert.Nil(t, saved.Job)

	assert.Error(t, json.Unmarshal([]byte(`{"applicant": "nine"}`), &app))
}
