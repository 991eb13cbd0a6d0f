// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"jotly/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the plaintext password assigned to every seeded user.
const DefaultPassword = "password123"

var themes = []models.Theme{models.ThemeLight, models.ThemeDark, models.ThemeVincent}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db *gorm.DB
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)

	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Password: string(hashedPassword),
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateBlog constructs and persists a sample blog post for the given author,
// with a random theme and a created_at spread over the last 90 days.
func (f *Factory) CreateBlog(author *models.User, overrides ...func(*models.Blog)) (*models.Blog, error) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	blog := &models.Blog{
		Title:       gofakeit.Sentence(5),
		Description: gofakeit.Sentence(12),
		Content:     gofakeit.Paragraph(3, 5, 10, "\n\n"),
		Theme:       themes[r.Intn(len(themes))],
		AuthorID:    author.ID,
		Share:       gofakeit.Number(0, 50),
	}

	daysBack := r.Intn(90)
	hoursBack := r.Intn(24)
	blog.CreatedAt = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(blog)
	}

	if err := f.db.Create(blog).Error; err != nil {
		return nil, err
	}
	return blog, nil
}

// Seeder orchestrates database population.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll removes all seeded data. Hard-deletes so reruns start from a
// clean slate despite soft-delete columns.
func (s *Seeder) ClearAll() error {
	log.Println("Cleaning existing data...")
	if err := s.db.Unscoped().Where("1 = 1").Delete(&models.Blog{}).Error; err != nil {
		return fmt.Errorf("clearing blogs: %w", err)
	}
	if err := s.db.Unscoped().Where("1 = 1").Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("clearing users: %w", err)
	}
	return nil
}

// Run populates the database with numUsers users and numBlogs blog posts
// distributed randomly across them.
func (s *Seeder) Run(numUsers, numBlogs int) error {
	log.Printf("Creating %d users...", numUsers)
	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return fmt.Errorf("creating user %d: %w", i, err)
		}
		users = append(users, user)
	}

	log.Printf("Creating %d blogs...", numBlogs)
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < numBlogs; i++ {
		author := users[r.Intn(len(users))]
		if _, err := s.factory.CreateBlog(author); err != nil {
			return fmt.Errorf("creating blog %d: %w", i, err)
		}
	}

	log.Printf("Seeded %d users and %d blogs", numUsers, numBlogs)
	return nil
}
