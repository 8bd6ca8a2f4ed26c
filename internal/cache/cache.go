// Package cache keeps an in-memory view of the stored course set so the
// ledger can answer reads and credit totals without querying the store.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/gpa-ledger/internal/domain"
	"github.com/phrazzld/gpa-ledger/internal/platform/logger"
)

// CourseSource provides the full course set, most recently created first.
// store.CourseStore satisfies it.
type CourseSource interface {
	GetAll(ctx context.Context) ([]*domain.Course, error)
}

// CourseCache mirrors the course set of a CourseSource.
//
// The view is kept in insertion order, oldest first, which is the reverse of
// the order the source returns. Incremental updates (Add, Replace, Remove,
// Clear) leave the view identical to what Refresh would load, provided the
// caller applies them only after the matching store call succeeded.
type CourseCache struct {
	mu      sync.RWMutex
	source  CourseSource
	courses []*domain.Course
	logger  *slog.Logger
}

// New creates a CourseCache and loads the full course set from source.
func New(ctx context.Context, source CourseSource, log *slog.Logger) (*CourseCache, error) {
	if source == nil {
		return nil, fmt.Errorf("course source cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	c := &CourseCache{
		source: source,
		logger: log.With(slog.String("component", "course_cache")),
	}
	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Refresh reloads the full course set from the source. On failure the
// current view is kept.
func (c *CourseCache) Refresh(ctx context.Context) error {
	loaded, err := c.source.GetAll(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, c.logger).Error("failed to refresh course cache",
			slog.String("error", err.Error()))
		return err
	}

	view := make([]*domain.Course, len(loaded))
	for i, course := range loaded {
		view[len(loaded)-1-i] = course.Clone()
	}

	c.mu.Lock()
	c.courses = view
	c.mu.Unlock()

	logger.FromContextOrDefault(ctx, c.logger).Debug("course cache refreshed",
		slog.Int("count", len(view)))
	return nil
}

// Courses returns copies of the cached courses, oldest first.
func (c *CourseCache) Courses() []*domain.Course {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*domain.Course, len(c.courses))
	for i, course := range c.courses {
		out[i] = course.Clone()
	}
	return out
}

// Get returns a copy of the cached course with the given ID.
func (c *CourseCache) Get(id int64) (*domain.Course, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexOf(id); i >= 0 {
		return c.courses[i].Clone(), true
	}
	return nil, false
}

// Add appends a newly stored course to the view.
func (c *CourseCache) Add(course *domain.Course) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.courses = append(c.courses, course.Clone())
}

// Replace swaps the cached course that has course.ID for course, keeping its
// position. It reports whether the course was found.
func (c *CourseCache) Replace(course *domain.Course) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(course.ID)
	if i < 0 {
		return false
	}
	c.courses[i] = course.Clone()
	return true
}

// Remove drops the course with the given ID and reports whether it was cached.
func (c *CourseCache) Remove(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.courses = append(c.courses[:i], c.courses[i+1:]...)
	return true
}

// Clear empties the view.
func (c *CourseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.courses = nil
}

// Len returns the number of cached courses.
func (c *CourseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.courses)
}

// TotalCredits returns the sum of credits over the cached courses.
func (c *CourseCache) TotalCredits() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.TotalCredits(c.courses)
}

// indexOf must be called with mu held.
func (c *CourseCache) indexOf(id int64) int {
	for i, course := range c.courses {
		if course.ID == id {
			return i
		}
	}
	return -1
}
