package blog

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// InMemPostRepository implements PostRepository using an in-memory map
type InMemPostRepository struct {
	posts map[uuid.UUID]Post
	mu    sync.Mutex
}

// NewInMemPostRepository creates a new in-memory post repository
func NewInMemPostRepository() *InMemPostRepository {
	return &InMemPostRepository{posts: make(map[uuid.UUID]Post)}
}

// CreatePost stores a new post
func (r *InMemPostRepository) CreatePost(ctx context.Context, post Post) (Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.posts {
		if existing.Slug == post.Slug {
			return Post{}, ErrSlugTaken
		}
	}
	r.posts[post.ID] = post
	return post, nil
}

// GetPost retrieves a post by id
func (r *InMemPostRepository) GetPost(ctx context.Context, id uuid.UUID) (Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, exists := r.posts[id]
	if !exists {
		return Post{}, ErrPostNotFound
	}
	return post, nil
}

// GetPostBySlug retrieves a post by slug
func (r *InMemPostRepository) GetPostBySlug(ctx context.Context, slug string) (Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, post := range r.posts {
		if post.Slug == slug {
			return post, nil
		}
	}
	return Post{}, ErrPostNotFound
}

// FindPosts lists posts matching the query, newest first
func (r *InMemPostRepository) FindPosts(ctx context.Context, query PostQuery) (PostPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []Post
	for _, post := range r.posts {
		if query.Status != "" && post.Status != query.Status {
			continue
		}
		if query.AuthorID != "" && post.AuthorID != query.AuthorID {
			continue
		}
		matched = append(matched, post)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page := PostPage{TotalCount: len(matched), Offset: query.Offset, Limit: query.Limit}
	start := query.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if query.Limit > 0 && start+query.Limit < end {
		end = start + query.Limit
	}
	page.Posts = matched[start:end]
	return page, nil
}

// UpdatePost replaces a stored post
func (r *InMemPostRepository) UpdatePost(ctx context.Context, post Post) (Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[post.ID]; !exists {
		return Post{}, ErrPostNotFound
	}
	for _, existing := range r.posts {
		if existing.Slug == post.Slug && existing.ID != post.ID {
			return Post{}, ErrSlugTaken
		}
	}
	r.posts[post.ID] = post
	return post, nil
}

// DeletePost removes a post
func (r *InMemPostRepository) DeletePost(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[id]; !exists {
		return ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}
