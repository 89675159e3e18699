// Package services implements the organization-scoped CRUD operations for
// every dashboard entity on top of the store.
package services

import (
	"context"
	"fmt"

	"org-dashboard-backend/pkg/database"
	"org-dashboard-backend/pkg/models"
)

// PostService defines all post-related operations
type PostService interface {
	List(ctx context.Context, orgID string) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID, orgID string) ([]models.Post, error)
	GetByID(ctx context.Context, id, orgID string) (*models.Post, error)
	Create(ctx context.Context, input models.CreatePostInput, authorID, orgID string) (*models.Post, error)
	Update(ctx context.Context, id, orgID string, input models.UpdatePostInput) (*models.Post, error)
	Delete(ctx context.Context, id, orgID string) error
}

type postService struct {
	db database.DatabaseInterface
}

// NewPostService creates a new post service
func NewPostService(db database.DatabaseInterface) PostService {
	return &postService{db: db}
}

func (s *postService) List(ctx context.Context, orgID string) ([]models.Post, error) {
	posts, err := s.db.ListPosts(ctx, orgID, database.PostFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (s *postService) ListByAuthor(ctx context.Context, authorID, orgID string) ([]models.Post, error) {
	posts, err := s.db.ListPosts(ctx, orgID, database.PostFilter{AuthorID: authorID})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by author: %w", err)
	}
	return posts, nil
}

func (s *postService) GetByID(ctx context.Context, id, orgID string) (*models.Post, error) {
	post, err := s.db.GetPost(ctx, id, orgID)
	if err != nil {
		return nil, translate(err, ErrPostNotFound)
	}
	return post, nil
}

func (s *postService) Create(ctx context.Context, input models.CreatePostInput, authorID, orgID string) (*models.Post, error) {
	post := &models.Post{
		Title:          input.Title,
		Content:        input.Content,
		AuthorID:       authorID,
		OrganizationID: orgID,
	}
	if input.Published != nil {
		post.Published = *input.Published
	}
	if err := s.db.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Update(ctx context.Context, id, orgID string, input models.UpdatePostInput) (*models.Post, error) {
	if _, err := s.GetByID(ctx, id, orgID); err != nil {
		return nil, err
	}

	var patch database.Patch
	if nonEmpty(input.Title) {
		patch.Set("title", *input.Title)
	}
	if input.Content.Set {
		patch.Set("content", nullable(input.Content))
	}
	if input.Published != nil {
		patch.Set("published", *input.Published)
	}

	post, err := s.db.UpdatePost(ctx, id, orgID, patch)
	if err != nil {
		return nil, translate(err, ErrPostNotFound)
	}
	return post, nil
}

func (s *postService) Delete(ctx context.Context, id, orgID string) error {
	if _, err := s.GetByID(ctx, id, orgID); err != nil {
		return err
	}
	return translate(s.db.DeletePost(ctx, id, orgID), ErrPostNotFound)
}
