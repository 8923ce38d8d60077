package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"jobportal/internal/api/middleware"
	"jobportal/internal/auth"
	"jobportal/internal/config"
	"jobportal/internal/database"
	"jobportal/internal/notify"
)

const testPublicBase = "http://cdn.test/jobportal"

type fakeStorage struct {
	mu       sync.Mutex
	uploaded map[string][]byte
	deleted  []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: map[string][]byte{}}
}

func (s *fakeStorage) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (*minio.UploadInfo, error) {
	b, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploaded[objectName] = b
	return &minio.UploadInfo{Key: objectName}, nil
}

func (s *fakeStorage) PublicURL(objectKey string) string {
	return testPublicBase + "/" + objectKey
}

func (s *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, objectKey)
	delete(s.uploaded, objectKey)
	return nil
}

func (s *fakeStorage) ObjectKeyFromURL(publicURL string) (string, bool) {
	key, ok := strings.CutPrefix(publicURL, testPublicBase+"/")
	return key, ok && key != ""
}

func (s *fakeStorage) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.uploaded))
	for k := range s.uploaded {
		out = append(out, k)
	}
	return out
}

type fakeQueue struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	err   error
}

func (q *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

type publishedMessage struct {
	userID uint
	msg    notify.Message
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
}

func (p *fakePublisher) Publish(_ context.Context, userID uint, msg notify.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, publishedMessage{userID: userID, msg: msg})
	return nil
}

type rejectScanner struct{ err error }

func (s rejectScanner) Scan(io.Reader) error { return s.err }

type testEnv struct {
	router    *gin.Engine
	db        *gorm.DB
	auth      *auth.AuthService
	storage   *fakeStorage
	queue     *fakeQueue
	publisher *fakePublisher
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "api.db")
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(logger.Silent))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			SecretKey: "0123456789abcdef0123456789abcdef",
			TokenTTL:  24 * time.Hour,
		},
		Upload: config.UploadConfig{MaxBytes: 1024},
	}
}

func newTestEnv(t *testing.T, scanner FileScanner) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	authService, err := auth.NewAuthService([]byte(cfg.Auth.SecretKey), cfg.Auth.TokenTTL)
	require.NoError(t, err)

	env := &testEnv{
		db:        newTestDB(t),
		auth:      authService,
		storage:   newFakeStorage(),
		queue:     &fakeQueue{},
		publisher: &fakePublisher{},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.router = NewRouter(cfg.API, logger)
	RegisterRoutes(env.router, Dependencies{
		DB:        env.db,
		Auth:      authService,
		Storage:   env.storage,
		Scanner:   scanner,
		Queue:     env.queue,
		Publisher: env.publisher,
		Logger:    logger,
		Config:    cfg,
	})
	return env
}

func (e *testEnv) seedUser(t *testing.T, email, role string) database.User {
	t.Helper()
	hash, err := e.auth.HashPassword("secret-pass")
	require.NoError(t, err)
	user := database.User{
		Fullname:     strings.Split(email, "@")[0],
		Email:        email,
		PhoneNumber:  "555-0100",
		PasswordHash: hash,
		Role:         role,
	}
	require.NoError(t, e.db.Create(&user).Error)
	return user
}

func (e *testEnv) seedCompany(t *testing.T, owner database.User, name string) database.Company {
	t.Helper()
	company := database.Company{Name: name, UserID: owner.ID}
	require.NoError(t, e.db.Create(&company).Error)
	return company
}

func (e *testEnv) seedJob(t *testing.T, company database.Company, title string) database.Job {
	t.Helper()
	job := database.Job{
		Title:        title,
		Description:  title + " role",
		Requirements: []string{"Go"},
		Salary:       10,
		Location:     "Remote",
		JobType:      "Full-time",
		Position:     1,
		CompanyID:    company.ID,
		CreatedByID:  company.UserID,
	}
	require.NoError(t, e.db.Create(&job).Error)
	return job
}

func (e *testEnv) cookieFor(t *testing.T, user database.User) *http.Cookie {
	t.Helper()
	token, err := e.auth.GenerateToken(user.ID)
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.SessionCookieName, Value: token}
}

type envelope map[string]any

func (e envelope) success() bool   { v, _ := e["success"].(bool); return v }
func (e envelope) message() string { v, _ := e["message"].(string); return v }

func (e *testEnv) do(t *testing.T, req *http.Request, cookie *http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var body envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	}
	return w, body
}

func (e *testEnv) doJSON(t *testing.T, method, path string, payload any, cookie *http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.do(t, req, cookie)
}

func (e *testEnv) doForm(t *testing.T, method, path string, form url.Values, cookie *http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(t, req, cookie)
}

// doRaw 发送原始请求体，用于构造格式错误的 JSON。
func (e *testEnv) doRaw(t *testing.T, method, path, contentType, raw string, cookie *http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(raw))
	req.Header.Set("Content-Type", contentType)
	return e.do(t, req, cookie)
}

type formFile struct {
	field    string
	filename string
	content  []byte
}

func (e *testEnv) doMultipart(t *testing.T, method, path string, fields map[string]string, files []formFile, cookie *http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return e.do(t, req, cookie)
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
