package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/camden-git/agencybackend/auth"
	"github.com/camden-git/agencybackend/database"
	"github.com/camden-git/agencybackend/models"
	"github.com/camden-git/agencybackend/repository"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.InitGormDB(database.DriverSQLite, "file:"+name+"?mode=memory&cache=shared", quietLogger())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrateModels(db))
	return db
}

// stubSessions is a SessionProvider whose answer the test controls.
type stubSessions struct {
	session *auth.Session
}

func (s *stubSessions) CurrentSession(r *http.Request) (*auth.Session, error) {
	return s.session, nil
}

func (s *stubSessions) signIn() {
	s.session = &auth.Session{
		User:      auth.User{ID: "admin-1", Email: "admin@agency.test"},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func (s *stubSessions) signOut() { s.session = nil }

type testEnv struct {
	db       *gorm.DB
	models   *repository.ModelRepository
	archives *repository.ArchiveRepository
	sessions *stubSessions
	router   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	log := quietLogger()

	env := &testEnv{
		db:       db,
		models:   repository.NewModelRepository(db),
		archives: repository.NewArchiveRepository(db),
		sessions: &stubSessions{},
	}
	env.router = NewRouter(Routes{
		Models:   NewModelHandler(env.models, Pagination{DefaultLimit: 10, MaxLimit: 100}, log),
		Archives: NewArchiveHandler(env.archives, env.models, log),
		Sessions: env.sessions,
		Log:      log,
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createModel(t *testing.T, slug string, mutate ...func(m *models.Model)) *models.Model {
	t.Helper()
	m := &models.Model{
		Name:         "Test Model",
		Slug:         slug,
		Category:     models.CategoryAll,
		Nationality:  "Korea",
		ProfileImage: "https://example.com/profile.jpg",
		Images:       []string{"https://example.com/image1.jpg"},
	}
	for _, fn := range mutate {
		fn(m)
	}
	require.NoError(t, e.db.Create(m).Error)
	return m
}

func (e *testEnv) createArchive(t *testing.T, modelID, title string, createdAt time.Time) *models.Archive {
	t.Helper()
	a := &models.Archive{Title: title, Images: []string{"https://example.com/a.jpg"}, ModelID: modelID, CreatedAt: createdAt}
	require.NoError(t, e.db.Create(a).Error)
	return a
}

func (e *testEnv) countModels(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Model{}).Count(&n).Error)
	return n
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}
