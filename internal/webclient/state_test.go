package webclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_InitialState(t *testing.T) {
	s := NewStore()

	assert.Nil(t, s.Auth().User)
	assert.False(t, s.Auth().Loading)
	assert.NotNil(t, s.Jobs().AllJobs)
	assert.Empty(t, s.Jobs().AllJobs)
	assert.Empty(t, s.Jobs().SearchedQuery)
	assert.Nil(t, s.Jobs().SingleJob)
	assert.NotNil(t, s.Companies().Companies)
	assert.Nil(t, s.Applications().Applicants)
	assert.NotNil(t, s.Saved().AllSaved)
}

func TestStore_Reset(t *testing.T) {
	s := NewStore()
	s.SetUser(&User{ID: 1})
	s.SetAllJobs([]Job{{ID: 1}})
	s.SetAdminJobs([]Job{{ID: 2}})
	s.SetSearchedQuery("go")
	s.SetSingleJob(&Job{ID: 1})
	s.SetAppliedJobs([]Application{{ID: 1}})
	s.SetCompanies([]Company{{ID: 1}})
	s.SetSingleCompany(&CompanyDetail{Company: Company{ID: 1}})
	s.SetApplicants(&Job{ID: 1})
	s.SetSaved([]SavedJob{{ID: 1}})

	s.Reset()

	assert.Equal(t, NewStore().Auth(), s.Auth())
	assert.Equal(t, NewStore().Jobs(), s.Jobs())
	assert.Equal(t, NewStore().Companies(), s.Companies())
	assert.Equal(t, NewStore().Applications(), s.Applications())
	assert.Equal(t, NewStore().Saved(), s.Saved())
}

func TestStore_SnapshotsAreCopies(t *testing.T) {
	s := NewStore()
	s.SetAllJobs([]Job{{ID: 1, Title: "Go"}})

	snap := s.Jobs()
	snap.AllJobs[0].Title = "changed"

	assert.Equal(t, "Go", s.Jobs().AllJobs[0].Title)
}

func TestStore_SavedHelpers(t *testing.T) {
	s := NewStore()
	s.SetSaved([]SavedJob{{ID: 1, JobID: 10}, {ID: 2, Job: &Job{ID: 20}}})

	assert.True(t, s.isSaved(10))
	assert.True(t, s.isSaved(20))
	assert.False(t, s.isSaved(30))

	s.removeSaved(10)
	assert.Len(t, s.Saved().AllSaved, 1)
	assert.False(t, s.isSaved(10))

	s.SetSaved(nil)
	assert.NotNil(t, s.Saved().AllSaved)
}
