package seed

import (
	"testing"

	"jotly/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Blog{}); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func TestFactoryCreateUser(t *testing.T) {
	db := setupSeedTestDB(t)
	f := NewFactory(db)

	user, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEmpty(t, user.Username)
	assert.Contains(t, user.Email, "@")

	// Seeded accounts must be usable through the normal login flow.
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(user.Password), []byte(DefaultPassword)))
}

func TestFactoryCreateBlog(t *testing.T) {
	db := setupSeedTestDB(t)
	f := NewFactory(db)

	author, err := f.CreateUser()
	require.NoError(t, err)

	blog, err := f.CreateBlog(author)
	require.NoError(t, err)
	assert.NotZero(t, blog.ID)
	assert.Equal(t, author.ID, blog.AuthorID)
	assert.True(t, blog.Theme.Valid())
	assert.NotEmpty(t, blog.Title)
	assert.NotEmpty(t, blog.Content)
}

func TestSeederRunAndClear(t *testing.T) {
	db := setupSeedTestDB(t)
	s := NewSeeder(db)

	require.NoError(t, s.Run(3, 9))

	var userCount, blogCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Blog{}).Count(&blogCount).Error)
	assert.Equal(t, int64(3), userCount)
	assert.Equal(t, int64(9), blogCount)

	require.NoError(t, s.ClearAll())
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Blog{}).Count(&blogCount).Error)
	assert.Zero(t, userCount)
	assert.Zero(t, blogCount)
}
