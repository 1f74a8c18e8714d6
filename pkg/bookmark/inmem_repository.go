package bookmark

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type bookmarkKey struct {
	userID     string
	targetType string
	targetID   uuid.UUID
}

// InMemBookmarkRepository is an in-memory implementation of BookmarkRepository
type InMemBookmarkRepository struct {
	mu        sync.Mutex
	bookmarks map[bookmarkKey]Bookmark
}

// NewInMemBookmarkRepository creates a new in-memory bookmark repository
func NewInMemBookmarkRepository() *InMemBookmarkRepository {
	return &InMemBookmarkRepository{
		bookmarks: make(map[bookmarkKey]Bookmark),
	}
}

// CreateBookmark stores a bookmark, keeping the first creation time on repeat
func (r *InMemBookmarkRepository) CreateBookmark(ctx context.Context, bookmark Bookmark) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := bookmarkKey{userID: bookmark.UserID, targetType: bookmark.TargetType, targetID: bookmark.TargetID}
	if _, ok := r.bookmarks[key]; ok {
		return nil
	}
	r.bookmarks[key] = bookmark
	return nil
}

// DeleteBookmark removes a bookmark
func (r *InMemBookmarkRepository) DeleteBookmark(ctx context.Context, userID, targetType string, targetID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := bookmarkKey{userID: userID, targetType: targetType, targetID: targetID}
	if _, ok := r.bookmarks[key]; !ok {
		return ErrBookmarkNotFound
	}
	delete(r.bookmarks, key)
	return nil
}

// FindBookmarksByUser lists a user's bookmarks, newest first
func (r *InMemBookmarkRepository) FindBookmarksByUser(ctx context.Context, userID string) ([]Bookmark, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found []Bookmark
	for key, bookmark := range r.bookmarks {
		if key.userID == userID {
			found = append(found, bookmark)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].CreatedAt.After(found[j].CreatedAt)
	})
	return found, nil
}
