package server

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"jotly/internal/cache"
	"jotly/internal/models"
	"jotly/internal/observability"

	"github.com/gofiber/fiber/v2"
)

const blogCacheTTL = 5 * time.Minute

func blogCacheKey(id uint) string {
	return fmt.Sprintf("blog:%d", id)
}

// CreateBlog handles POST /api/v1/blogs/post
func (s *Server) CreateBlog(c *fiber.Ctx) error {
	var req struct {
		Title       string       `json:"title"`
		Description string       `json:"description"`
		Content     string       `json:"content"`
		Theme       models.Theme `json:"theme"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Title = strings.TrimSpace(req.Title)

	if req.Title == "" || req.Description == "" || req.Content == "" || req.Theme == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title, description, content, and theme are required"))
	}
	if !req.Theme.Valid() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Theme must be one of: light, dark, vincent"))
	}

	userID := c.Locals("userID").(uint)

	// The middleware already verified the account, but it can disappear
	// between that check and the insert.
	author, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		if models.IsNotFound(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	blog := &models.Blog{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Theme:       req.Theme,
		AuthorID:    author.ID,
	}
	if err := s.blogRepo.Create(c.Context(), blog); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Reload with the author preloaded so the response carries the full record.
	created, err := s.blogRepo.GetByID(c.Context(), blog.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return models.Respond(c, fiber.StatusCreated, "Blog created successfully", created)
}

// GetBlogs handles GET /api/v1/blogs/all. The listing is scoped to the
// authenticated author and never exposes other users' posts; an optional
// theme query param narrows it further.
func (s *Server) GetBlogs(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	page, limit := parsePagination(c)

	theme := models.Theme(c.Query("theme"))
	if theme != "" && !theme.Valid() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Theme must be one of: light, dark, vincent"))
	}

	blogs, total, err := s.blogRepo.ListByAuthor(c.Context(), userID, theme, limit, (page-1)*limit)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return models.Respond(c, fiber.StatusOK, "Blogs fetched successfully", fiber.Map{
		"blogs":       blogs,
		"totalBlogs":  total,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
	})
}

// SearchBlogs handles GET /api/v1/blogs/search. Search spans all authors, not
// just the caller's own posts. A query that matches nothing is reported as a
// 404 inside the normal success envelope rather than an error.
func (s *Server) SearchBlogs(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query is required"))
	}

	page, limit := parsePagination(c)

	blogs, total, err := s.blogRepo.Search(c.Context(), query, limit, (page-1)*limit)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if total == 0 {
		return models.Respond(c, fiber.StatusNotFound,
			"No blogs found matching the search criteria", nil)
	}

	return models.Respond(c, fiber.StatusOK, "Blogs fetched successfully", fiber.Map{
		"blogs":       blogs,
		"totalBlogs":  total,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
	})
}

// GetBlog handles GET /api/v1/blogs/:id. The endpoint is public so shared
// links work without a session; reads go through the cache.
func (s *Server) GetBlog(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		if errors.Is(err, errResponseWritten) {
			return nil
		}
		return err
	}

	var blog models.Blog
	err = cache.CacheAside(c.Context(), blogCacheKey(id), &blog, blogCacheTTL, func() error {
		found, fetchErr := s.blogRepo.GetByID(c.Context(), id)
		if fetchErr != nil {
			return fetchErr
		}
		blog = *found
		return nil
	})
	if err != nil {
		if models.IsNotFound(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return models.Respond(c, fiber.StatusOK, "Blog fetched successfully", blog)
}

// ShareBlog handles PUT /api/v1/blogs/:id/share. The counter moves by exactly
// one per request regardless of concurrency; no auth so anyone with the link
// can share.
func (s *Server) ShareBlog(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		if errors.Is(err, errResponseWritten) {
			return nil
		}
		return err
	}

	share, err := s.blogRepo.IncrementShare(c.Context(), id)
	if err != nil {
		if models.IsNotFound(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	cache.Invalidate(c.Context(), blogCacheKey(id))
	observability.BlogSharesTotal.Inc()

	return models.Respond(c, fiber.StatusOK, "Blog shared successfully", fiber.Map{
		"share": share,
	})
}

// DeleteBlog handles DELETE /api/v1/blogs/:id. Only the author may delete;
// everyone else gets a 403 even if the post exists.
func (s *Server) DeleteBlog(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		if errors.Is(err, errResponseWritten) {
			return nil
		}
		return err
	}

	userID := c.Locals("userID").(uint)

	blog, err := s.blogRepo.GetByID(c.Context(), id)
	if err != nil {
		if models.IsNotFound(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if blog.AuthorID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You are not authorized to delete this blog"))
	}

	if err := s.blogRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	cache.Invalidate(c.Context(), blogCacheKey(id))

	return models.Respond(c, fiber.StatusOK, "Blog deleted successfully", blog)
}

func totalPages(total int64, limit int) int {
	return int(math.Ceil(float64(total) / float64(limit)))
}
