package repository

import (
	"context"
	"errors"
	"strings"

	"jotly/internal/models"

	"gorm.io/gorm"
)

// BlogRepository defines the interface for blog data operations
type BlogRepository interface {
	Create(ctx context.Context, blog *models.Blog) error
	GetByID(ctx context.Context, id uint) (*models.Blog, error)
	ListByAuthor(ctx context.Context, authorID uint, theme models.Theme, limit, offset int) ([]models.Blog, int64, error)
	Search(ctx context.Context, query string, limit, offset int) ([]models.Blog, int64, error)
	IncrementShare(ctx context.Context, id uint) (int, error)
	Delete(ctx context.Context, id uint) error
}

// blogRepository implements BlogRepository
type blogRepository struct {
	db *gorm.DB
}

// NewBlogRepository creates a new blog repository
func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) Create(ctx context.Context, blog *models.Blog) error {
	if err := r.db.WithContext(ctx).Create(blog).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *blogRepository) GetByID(ctx context.Context, id uint) (*models.Blog, error) {
	var blog models.Blog
	err := r.db.WithContext(ctx).Preload("Author").First(&blog, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Blog", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &blog, nil
}

// ListByAuthor returns one page of the author's blogs plus the total matching
// count. Ordering is newest-first; equal timestamps fall back to descending ID
// so the sort stays stable across pages.
func (r *blogRepository) ListByAuthor(ctx context.Context, authorID uint, theme models.Theme, limit, offset int) ([]models.Blog, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Blog{}).Where("author_id = ?", authorID)
	if theme != "" {
		q = q.Where("theme = ?", theme)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var blogs []models.Blog
	err := q.Preload("Author").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&blogs).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return blogs, total, nil
}

// Search matches the query case-insensitively against title or description
// across all authors.
func (r *blogRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.Blog, int64, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	q := r.db.WithContext(ctx).Model(&models.Blog{}).
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var blogs []models.Blog
	err := q.Preload("Author").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&blogs).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return blogs, total, nil
}

// IncrementShare bumps the share counter in a single atomic UPDATE (no
// read-modify-write) and returns the new value.
func (r *blogRepository) IncrementShare(ctx context.Context, id uint) (int, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Blog{}).
		Where("id = ?", id).
		Update("share", gorm.Expr("share + ?", 1))
	if result.Error != nil {
		return 0, models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, models.NewNotFoundError("Blog", id)
	}

	var blog models.Blog
	if err := r.db.WithContext(ctx).Select("share").First(&blog, id).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return blog.Share, nil
}

func (r *blogRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Blog{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
