package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"jotly/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupRepoTestDB opens a named shared-cache in-memory database limited to a
// single connection, so concurrent goroutines see the same data instead of
// each pooled connection getting its own empty in-memory store.
func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Blog{}); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func seedAuthor(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "hashed"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestIncrementShareConcurrent(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewBlogRepository(db)
	author := seedAuthor(t, db, "concurrent")

	blog := &models.Blog{
		Title:       "Contended Post",
		Description: "d",
		Content:     "c",
		Theme:       models.ThemeLight,
		AuthorID:    author.ID,
	}
	require.NoError(t, repo.Create(context.Background(), blog))

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := repo.IncrementShare(context.Background(), blog.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// No increment may be lost to a read-modify-write race.
	reloaded, err := repo.GetByID(context.Background(), blog.ID)
	require.NoError(t, err)
	assert.Equal(t, n, reloaded.Share)
}

func TestIncrementShareMissing(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewBlogRepository(db)

	_, err := repo.IncrementShare(context.Background(), 12345)
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
}

func TestListByAuthorStableOrdering(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewBlogRepository(db)
	author := seedAuthor(t, db, "stable")

	// All rows share one timestamp so ordering falls back to the ID tie-break.
	now := time.Now()
	for i := 1; i <= 7; i++ {
		blog := &models.Blog{
			Title:       fmt.Sprintf("Post %d", i),
			Description: "d",
			Content:     "c",
			Theme:       models.ThemeLight,
			AuthorID:    author.ID,
			CreatedAt:   now,
		}
		require.NoError(t, db.Create(blog).Error)
	}

	seen := map[uint]bool{}
	var prevID uint
	for offset := 0; offset < 7; offset += 3 {
		page, total, err := repo.ListByAuthor(context.Background(), author.ID, "", 3, offset)
		require.NoError(t, err)
		assert.Equal(t, int64(7), total)

		for _, b := range page {
			// Pages must not overlap or skip rows.
			assert.False(t, seen[b.ID], "blog %d appeared on two pages", b.ID)
			seen[b.ID] = true
			if prevID != 0 {
				assert.Less(t, b.ID, prevID)
			}
			prevID = b.ID
		}
	}
	assert.Len(t, seen, 7)
}

func TestSearchCaseInsensitive(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewBlogRepository(db)
	a := seedAuthor(t, db, "authora")
	b := seedAuthor(t, db, "authorb")

	for _, row := range []struct {
		author *models.User
		title  string
		desc   string
	}{
		{a, "Intro to Espresso", "grinding and tamping"},
		{b, "ESPRESSO Machines Reviewed", "hardware roundup"},
		{b, "Tea Ceremonies", "a quieter espresso alternative"},
		{a, "Unrelated", "nothing to see"},
	} {
		require.NoError(t, db.Create(&models.Blog{
			Title:       row.title,
			Description: row.desc,
			Content:     "c",
			Theme:       models.ThemeDark,
			AuthorID:    row.author.ID,
		}).Error)
	}

	blogs, total, err := repo.Search(context.Background(), "eSpResSo", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, blogs, 3)

	// Authors come preloaded for display.
	for _, blog := range blogs {
		assert.NotEmpty(t, blog.Author.Username)
	}

	_, total, err = repo.Search(context.Background(), "nonexistent", 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestDeleteIsSoft(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewBlogRepository(db)
	author := seedAuthor(t, db, "softdel")

	blog := &models.Blog{
		Title:       "Ephemeral",
		Description: "d",
		Content:     "c",
		Theme:       models.ThemeLight,
		AuthorID:    author.ID,
	}
	require.NoError(t, repo.Create(context.Background(), blog))
	require.NoError(t, repo.Delete(context.Background(), blog.ID))

	_, err := repo.GetByID(context.Background(), blog.ID)
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))

	// The row survives with a deletion marker.
	var unscoped models.Blog
	require.NoError(t, db.Unscoped().First(&unscoped, blog.ID).Error)
	assert.True(t, unscoped.DeletedAt.Valid)
}
