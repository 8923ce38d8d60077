//go:build integration

package database

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"jobportal/internal/config"
)

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       "jobportal",
				"POSTGRES_USER":     "jobportal",
				"POSTGRES_PASSWORD": "jobportal",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	port, err := strconv.Atoi(mapped.Port())
	require.NoError(t, err)

	db, err := InitDatabase(config.DatabaseConfig{
		Host:     host,
		Port:     port,
		Name:     "jobportal",
		User:     "jobportal",
		Password: "jobportal",
		SSLMode:  "disable",
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestPostgres_ConstraintsAndCascade(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	owner, job := seedJob(t, db)

	err := db.Create(&User{Email: owner.Email}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	err = db.Create(&Company{Name: "Acme", UserID: owner.ID}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	student, _ := seedApplication(t, db, job, "pg-student@example.com")
	err = db.Create(&Application{JobID: job.ID, ApplicantID: student.ID}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	var loaded Job
	require.NoError(t, db.First(&loaded, job.ID).Error)
	assert.Equal(t, []string{"Go", "SQL"}, []string(loaded.Requirements))

	jobs, applicants, err := CompanyCounts(ctx, db, job.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), jobs)
	assert.Equal(t, int64(1), applicants)

	require.NoError(t, DeleteCompanyCascade(ctx, db, job.CompanyID))
	assertCount(t, db, &Company{}, 0)
	assertCount(t, db, &Job{}, 0)
	assertCount(t, db, &Application{}, 0)
	assertCount(t, db, &SavedJob{}, 0)
}
