package repository

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/camden-git/agencybackend/database"
	"github.com/camden-git/agencybackend/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.InitGormDB(database.DriverSQLite, "file:"+name+"?mode=memory&cache=shared", log)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrateModels(db))
	return db
}

func newTestModel(slug string) *models.Model {
	return &models.Model{
		Name:         "Test Model",
		Slug:         slug,
		Category:     models.CategoryAll,
		Nationality:  "Korea",
		ProfileImage: "https://example.com/profile.jpg",
		Images:       []string{"https://example.com/image1.jpg"},
	}
}

type columnPatch struct {
	apply func(m *models.Model) []string
}

func (p columnPatch) Apply(m *models.Model) []string { return p.apply(m) }

func TestModelRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewModelRepository(setupTestDB(t))

	m := newTestModel("test-model")
	require.NoError(t, repo.Create(ctx, m))
	assert.NotEmpty(t, m.ID)
	assert.False(t, m.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "test-model", got.Slug)
	assert.Equal(t, []string{"https://example.com/image1.jpg"}, got.Images)
	assert.NotNil(t, got.Archives)
	assert.Empty(t, got.Archives)
	assert.Nil(t, got.Bio)
}

func TestModelRepository_DuplicateSlugIsConflict(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewModelRepository(db)

	require.NoError(t, repo.Create(ctx, newTestModel("dup")))
	err := repo.Create(ctx, newTestModel("dup"))
	assert.ErrorIs(t, err, ErrConflict)

	var count int64
	require.NoError(t, db.Model(&models.Model{}).Where("slug = ?", "dup").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestModelRepository_GetUnknownIsNotFound(t *testing.T) {
	repo := NewModelRepository(setupTestDB(t))
	_, err := repo.GetByID(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestModelRepository_ListPaginationAndFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewModelRepository(setupTestDB(t))

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		m := newTestModel(fmt.Sprintf("model-%02d", i))
		m.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if i%3 == 0 {
			m.Category = models.CategoryInTown
		}
		require.NoError(t, repo.Create(ctx, m))
	}

	page, total, err := repo.List(ctx, ModelListOptions{Page: 2, Limit: 5})
	require.NoError(t, err)
	assert.EqualValues(t, 15, total)
	require.Len(t, page, 5)
	assert.Equal(t, "model-09", page[0].Slug)
	assert.Equal(t, "model-05", page[4].Slug)

	inTown, total, err := repo.List(ctx, ModelListOptions{Category: models.CategoryInTown, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, inTown, 5)
	for _, m := range inTown {
		assert.Equal(t, models.CategoryInTown, m.Category)
	}

	all, total, err := repo.List(ctx, ModelListOptions{Category: models.CategoryAll, Page: 1, Limit: 100})
	require.NoError(t, err)
	assert.EqualValues(t, 15, total)
	assert.Len(t, all, 15)

	none, total, err := repo.List(ctx, ModelListOptions{Category: "VIP", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	beyond, total, err := repo.List(ctx, ModelListOptions{Page: 9, Limit: 5})
	require.NoError(t, err)
	assert.EqualValues(t, 15, total)
	assert.Empty(t, beyond)
}

func TestModelRepository_SlugTaken(t *testing.T) {
	ctx := context.Background()
	repo := NewModelRepository(setupTestDB(t))

	m := newTestModel("taken")
	require.NoError(t, repo.Create(ctx, m))

	taken, err := repo.SlugTaken(ctx, "taken", "")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.SlugTaken(ctx, "taken", m.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = repo.SlugTaken(ctx, "free", "")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestModelRepository_Exists(t *testing.T) {
	ctx := context.Background()
	repo := NewModelRepository(setupTestDB(t))

	m := newTestModel("present")
	require.NoError(t, repo.Create(ctx, m))

	exists, err := repo.Exists(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPageOffset(t *testing.T) {
	tests := []struct {
		page, limit int
		want        int
		inRange     bool
	}{
		{1, 10, 0, true},
		{2, 5, 5, true},
		{4, 25, 75, true},
		{math.MaxInt, 1, math.MaxInt - 1, true},
		{math.MaxInt, 10, 0, false},
		{4611686018427387905, 4, 0, false},
		{math.MaxInt/10 + 1, 10, (math.MaxInt / 10) * 10, true},
		{math.MaxInt/10 + 2, 10, 0, false},
	}
	for _, tt := range tests {
		got, ok := pageOffset(tt.page, tt.limit)
		assert.Equal(t, tt.inRange, ok, "page=%d limit=%d", tt.page, tt.limit)
		assert.Equal(t, tt.want, got, "page=%d limit=%d", tt.page, tt.limit)
	}
}

func TestModelRepository_ListHugePageIsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := NewModelRepository(setupTestDB(t))
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, newTestModel(fmt.Sprintf("huge-%d", i))))
	}

	for _, opts := range []ModelListOptions{
		{Page: math.MaxInt, Limit: 10},
		{Page: 4611686018427387905, Limit: 4},
	} {
		items, total, err := repo.List(ctx, opts)
		require.NoError(t, err)
		assert.Empty(t, items, "page=%d limit=%d", opts.Page, opts.Limit)
		assert.NotNil(t, items)
		assert.EqualValues(t, 3, total)
	}
}

func TestModelRepository_UpdateWritesOnlyPatchedColumns(t *testing.T) {
	ctx := context.Background()
	repo := NewModelRepository(setupTestDB(t))

	bio := "bio"
	height := 175
	m := newTestModel("patch-me")
	m.Bio = &bio
	m.Height = &height
	require.NoError(t, repo.Create(ctx, m))

	updated, err := repo.Update(ctx, m.ID, columnPatch{apply: func(m *models.Model) []string {
		m.Name = "Renamed"
		return []string{"name"}
	}})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Nil(t, updated.Archives)

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "patch-me", got.Slug)
	assert.Equal(t, "bio", *got.Bio)
	assert.Equal(t, 175, *got.Height)
	assert.Equal(t, m.Images, got.Images)
	assert.False(t, got.UpdatedAt.Before(m.UpdatedAt))
}

func TestModelRepository_UpdateErrors(t *testing.T) {
	ctx := context.Background()
	repo := NewModelRepository(setupTestDB(t))

	_, err := repo.Update(ctx, "missing", columnPatch{apply: func(m *models.Model) []string { return nil }})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Create(ctx, newTestModel("first")))
	second := newTestModel("second")
	require.NoError(t, repo.Create(ctx, second))

	_, err = repo.Update(ctx, second.ID, columnPatch{apply: func(m *models.Model) []string {
		m.Slug = "first"
		return []string{"slug"}
	}})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestModelRepository_DeleteCascadesArchives(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	modelRepo := NewModelRepository(db)
	archiveRepo := NewArchiveRepository(db)

	m := newTestModel("cascade")
	require.NoError(t, modelRepo.Create(ctx, m))
	other := newTestModel("other")
	require.NoError(t, modelRepo.Create(ctx, other))

	var ids []string
	for i := 0; i < 3; i++ {
		a := &models.Archive{Title: fmt.Sprintf("Set %d", i), Images: []string{"a.jpg"}, ModelID: m.ID}
		require.NoError(t, archiveRepo.Create(ctx, a))
		ids = append(ids, a.ID)
	}
	kept := &models.Archive{Title: "Keep", Images: []string{"k.jpg"}, ModelID: other.ID}
	require.NoError(t, archiveRepo.Create(ctx, kept))

	require.NoError(t, modelRepo.Delete(ctx, m.ID))

	_, err := modelRepo.GetByID(ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	for _, id := range ids {
		_, err := archiveRepo.GetByID(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	_, err = archiveRepo.GetByID(ctx, kept.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, modelRepo.Delete(ctx, m.ID), ErrNotFound)
}

func TestArchiveRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	modelRepo := NewModelRepository(db)
	repo := NewArchiveRepository(db)

	err := repo.Create(ctx, &models.Archive{Title: "Orphan", Images: []string{"x.jpg"}, ModelID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	m := newTestModel("owner")
	require.NoError(t, modelRepo.Create(ctx, m))

	older := &models.Archive{Title: "Older", Images: []string{"o.jpg"}, ModelID: m.ID, CreatedAt: time.Now().Add(-time.Hour)}
	newer := &models.Archive{Title: "Newer", Images: []string{"n.jpg"}, ModelID: m.ID, CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	listed, err := repo.ListByModel(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Newer", listed[0].Title)

	withArchives, err := modelRepo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, withArchives.Archives, 2)
	assert.Equal(t, "Newer", withArchives.Archives[0].Title)
	assert.Equal(t, "Older", withArchives.Archives[1].Title)

	updated, err := repo.Update(ctx, older.ID, archivePatchFunc(func(a *models.Archive) []string {
		a.Title = "Renamed"
		return []string{"title"}
	}))
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, []string{"o.jpg"}, updated.Images)

	_, err = repo.Update(ctx, "missing", archivePatchFunc(func(a *models.Archive) []string { return nil }))
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, older.ID))
	assert.ErrorIs(t, repo.Delete(ctx, older.ID), ErrNotFound)
}

type archivePatchFunc func(a *models.Archive) []string

func (f archivePatchFunc) Apply(a *models.Archive) []string { return f(a) }

func TestAdminRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAdminRepository(setupTestDB(t))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	first := &models.Admin{Email: "  Owner@Agency.test "}
	require.NoError(t, first.SetPassword("password123"))
	require.NoError(t, repo.CreateFirst(ctx, first))
	assert.Equal(t, "owner@agency.test", first.Email)

	second := &models.Admin{Email: "second@agency.test"}
	require.NoError(t, second.SetPassword("password123"))
	assert.ErrorIs(t, repo.CreateFirst(ctx, second), ErrSetupComplete)

	require.NoError(t, repo.Create(ctx, second))
	dup := &models.Admin{Email: "SECOND@agency.test", PasswordHash: "x"}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrConflict)

	got, err := repo.GetByEmail(ctx, "OWNER@agency.test")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.True(t, got.CheckPassword("password123"))
	assert.False(t, got.CheckPassword("wrong"))

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}
