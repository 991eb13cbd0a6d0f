package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"jotly/internal/config"
	"jotly/internal/models"
	"jotly/internal/repository"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
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

// setupTestServer wires a Server onto an in-memory database and registers the
// full route table. Redis is absent so rate limiting and caching fall through.
func setupTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	db := setupTestDB(t)
	cfg := &config.Config{
		Port:               "8080",
		AccessTokenSecret:  "test-access-secret-0123456789abcdef",
		RefreshTokenSecret: "test-refresh-secret-0123456789abcdef",
		AccessTokenTTLMin:  60,
		RefreshTokenTTLHrs: 168,
		CookieMaxAgeSec:    86400,
	}

	s := &Server{
		config:   cfg,
		db:       db,
		userRepo: repository.NewUserRepository(db),
		blogRepo: repository.NewBlogRepository(db),
	}

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app
}

// createTestUser persists a user with a bcrypt-hashed password and returns it
// alongside a valid access token.
func createTestUser(t *testing.T, s *Server, username, email string) (*models.User, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user := &models.User{Username: username, Email: email, Password: string(hashed)}
	if err := s.db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}
	return user, token
}

func createTestBlog(t *testing.T, s *Server, author *models.User, title string) *models.Blog {
	t.Helper()

	blog := &models.Blog{
		Title:       title,
		Description: fmt.Sprintf("Description of %s", title),
		Content:     fmt.Sprintf("Content of %s", title),
		Theme:       models.ThemeLight,
		AuthorID:    author.ID,
	}
	if err := s.db.Create(blog).Error; err != nil {
		t.Fatalf("create blog: %v", err)
	}
	return blog
}

// doRequest performs a request against the test app with an optional JSON body
// and Bearer token.
func doRequest(t *testing.T, app *fiber.App, method, path string, body any, token string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

type testEnvelope struct {
	StatusCode int            `json:"statusCode"`
	Success    bool           `json:"success"`
	Message    string         `json:"message"`
	Data       map[string]any `json:"data"`
}

// decodeEnvelope parses the standard response envelope from a response body.
func decodeEnvelope(t *testing.T, resp *http.Response) testEnvelope {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	var envelope testEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return envelope
}
