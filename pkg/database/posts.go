package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"org-dashboard-backend/pkg/models"
)

const postColumns = `id, title, content, published, author_id, organization_id, created_at, updated_at`

var postUpdatable = map[string]bool{"title": true, "content": true, "published": true}

func scanPost(row scanner) (models.Post, error) {
	var p models.Post
	var content sql.NullString
	if err := row.Scan(&p.ID, &p.Title, &content, &p.Published, &p.AuthorID, &p.OrganizationID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return p, err
	}
	p.Content = stringPtr(content)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func postWhere(orgID string, filter PostFilter) *whereBuilder {
	w := scopedTo(orgID)
	if filter.AuthorID != "" {
		w.add("author_id=$%d", filter.AuthorID)
	}
	if filter.Published != nil {
		w.add("published=$%d", *filter.Published)
	}
	return w
}

// ListPosts returns the organization's posts, newest first
func (s *SQLDatabase) ListPosts(ctx context.Context, orgID string, filter PostFilter) ([]models.Post, error) {
	w := postWhere(orgID, filter)
	rows, err := s.query(ctx, s.db, "SELECT "+postColumns+" FROM posts"+w.String()+" ORDER BY created_at DESC, id DESC", w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// GetPost 根据ID获取文章
func (s *SQLDatabase) GetPost(ctx context.Context, id, orgID string) (*models.Post, error) {
	p, err := scanPost(s.queryRow(ctx, s.db,
		"SELECT "+postColumns+" FROM posts WHERE id=$1 AND organization_id=$2", id, orgID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &p, nil
}

// CreatePost assigns ID and timestamps, then inserts the post
func (s *SQLDatabase) CreatePost(ctx context.Context, post *models.Post) error {
	now := s.timestamp()
	post.ID = s.newID()
	post.CreatedAt = now
	post.UpdatedAt = now

	_, err := s.exec(ctx, s.db,
		`INSERT INTO posts (`+postColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		post.ID, post.Title, nullString(post.Content), post.Published, post.AuthorID, post.OrganizationID, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// UpdatePost applies patch and returns the stored post
func (s *SQLDatabase) UpdatePost(ctx context.Context, id, orgID string, patch Patch) (*models.Post, error) {
	if err := s.updateRow(ctx, "posts", postUpdatable, id, orgID, patch); err != nil {
		return nil, err
	}
	return s.GetPost(ctx, id, orgID)
}

// DeletePost 删除文章
func (s *SQLDatabase) DeletePost(ctx context.Context, id, orgID string) error {
	return s.deleteRow(ctx, s.db, "posts", id, orgID)
}

// CountPosts counts posts matching filter
func (s *SQLDatabase) CountPosts(ctx context.Context, orgID string, filter PostFilter) (int, error) {
	return s.count(ctx, "posts", postWhere(orgID, filter))
}
