package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/phrazzld/gpa-ledger/internal/cache"
	"github.com/phrazzld/gpa-ledger/internal/domain"
	"github.com/phrazzld/gpa-ledger/internal/platform/logger"
	"github.com/phrazzld/gpa-ledger/internal/store"
)

const (
	// CreditEpsilon is the tolerance used when comparing credit sums with the target.
	CreditEpsilon = 0.01

	// DefaultHistoryLimit is the number of calculations History returns when
	// no positive limit is given.
	DefaultHistoryLimit = 10
)

// State is the position of the ledger in its target-credit state machine.
type State int

// Ledger states.
const (
	// StateUnset means no credit target has been declared.
	StateUnset State = iota
	// StateOpen means the held credits are still below the target.
	StateOpen
	// StateFulfilled means the held credits match the target within CreditEpsilon.
	StateFulfilled
	// StateOverTarget means the held credits exceed the target by more than
	// CreditEpsilon. It is reached only by lowering the target.
	StateOverTarget
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateUnset:
		return "unset"
	case StateOpen:
		return "open"
	case StateFulfilled:
		return "fulfilled"
	case StateOverTarget:
		return "over_target"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// stateFor derives the ledger state from a target and the held credits.
func stateFor(target, current float64) State {
	switch {
	case target <= 0:
		return StateUnset
	case math.Abs(current-target) <= CreditEpsilon:
		return StateFulfilled
	case current > target:
		return StateOverTarget
	default:
		return StateOpen
	}
}

// LedgerState is a point-in-time view of the ledger.
type LedgerState struct {
	Target    float64
	Current   float64
	Remaining float64
	State     State
	// Courses in insertion order, oldest first.
	Courses []*domain.Course
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithHistoryLimit sets the number of calculations History returns by default.
// Non-positive values are ignored.
func WithHistoryLimit(limit int) Option {
	return func(l *Ledger) {
		if limit > 0 {
			l.historyLimit = limit
		}
	}
}

// Ledger holds the course set and enforces the credit target.
// All methods are safe for concurrent use; they are serialised internally.
type Ledger struct {
	mu           sync.Mutex
	courses      store.CourseStore
	calcs        store.CalculationStore
	view         *cache.CourseCache
	target       float64
	historyLimit int
	logger       *slog.Logger
}

// NewLedger creates a Ledger over the given stores and loads the current
// course set. The ledger starts without a target.
func NewLedger(
	ctx context.Context,
	courses store.CourseStore,
	calcs store.CalculationStore,
	log *slog.Logger,
	opts ...Option,
) (*Ledger, error) {
	if courses == nil || calcs == nil {
		return nil, errors.New("course and calculation stores are required")
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "ledger"))

	view, err := cache.New(ctx, courses, log)
	if err != nil {
		return nil, &domain.PersistenceError{Operation: "load courses", Err: err}
	}

	l := &Ledger{
		courses:      courses,
		calcs:        calcs,
		view:         view,
		historyLimit: DefaultHistoryLimit,
		logger:       log,
	}
	for _, opt := range opts {
		opt(l)
	}

	log.Debug("ledger loaded", slog.Int("courses", view.Len()))
	return l, nil
}

// SetTarget declares the credit target and returns the resulting state.
// It may be called again to replace the target.
func (l *Ledger) SetTarget(ctx context.Context, target float64) (State, error) {
	if target <= 0 || math.IsNaN(target) || math.IsInf(target, 0) {
		return l.State(), domain.NewValidationError("target", "credit target must be a positive number")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.target = target
	state := stateFor(target, l.view.TotalCredits())

	logger.FromContextOrDefault(ctx, l.logger).Info("credit target set",
		slog.Float64("target", target),
		slog.String("state", state.String()))
	return state, nil
}

// Target returns the declared credit target, or 0 if none is set.
func (l *Ledger) Target() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.target
}

// State returns the current state of the ledger.
func (l *Ledger) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return stateFor(l.target, l.view.TotalCredits())
}

// CurrentCredits returns the sum of credits of the held courses.
func (l *Ledger) CurrentCredits() float64 {
	return l.view.TotalCredits()
}

// Courses returns the held courses in insertion order, oldest first.
func (l *Ledger) Courses() []*domain.Course {
	return l.view.Courses()
}

// Snapshot returns the target, credit totals, state and courses at once.
func (l *Ledger) Snapshot() LedgerState {
	l.mu.Lock()
	defer l.mu.Unlock()

	courses := l.view.Courses()
	current := domain.TotalCredits(courses)
	remaining := 0.0
	if l.target > 0 {
		remaining = l.target - current
	}
	return LedgerState{
		Target:    l.target,
		Current:   current,
		Remaining: remaining,
		State:     stateFor(l.target, current),
		Courses:   courses,
	}
}

// AddCourse validates input, checks it against the remaining capacity and
// stores the new course. It requires a declared target.
func (l *Ledger) AddCourse(ctx context.Context, input CourseInput) (*domain.Course, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	log := logger.FromContextOrDefault(ctx, l.logger)

	if l.target <= 0 {
		return nil, &domain.StateError{
			Operation: "add course",
			Reason:    "no credit target has been set",
		}
	}

	course, err := input.Course()
	if err != nil {
		log.Debug("rejected course input", slog.String("error", err.Error()))
		return nil, err
	}

	current := l.view.TotalCredits()
	if exceeds(current, course.Credit, l.target) {
		log.Debug("course exceeds credit target",
			slog.Float64("current", current),
			slog.Float64("credit", course.Credit),
			slog.Float64("target", l.target))
		return nil, &domain.CapacityError{Current: current, Adding: course.Credit, Target: l.target}
	}

	if err := l.courses.Create(ctx, course); err != nil {
		return nil, persistenceError("add course", err)
	}
	l.view.Add(course)

	log.Info("course added",
		slog.Int64("course_id", course.ID),
		slog.String("course_code", course.Code),
		slog.Float64("current", current+course.Credit),
		slog.String("state", stateFor(l.target, current+course.Credit).String()))
	return course.Clone(), nil
}

// EditCourse replaces every field of a held course. When a target is set the
// edited set must still fit under it.
func (l *Ledger) EditCourse(ctx context.Context, id int64, input CourseInput) (*domain.Course, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	old, ok := l.view.Get(id)
	if !ok {
		return nil, unknownCourse(id, nil)
	}

	course, err := input.Course()
	if err != nil {
		return nil, err
	}

	current := decimal.NewFromFloat(l.view.TotalCredits()).
		Sub(decimal.NewFromFloat(old.Credit)).
		InexactFloat64()
	if l.target > 0 && exceeds(current, course.Credit, l.target) {
		return nil, &domain.CapacityError{Current: current, Adding: course.Credit, Target: l.target}
	}

	if err := l.courses.Update(ctx, id, course); err != nil {
		return nil, l.missingOrPersistence(ctx, "edit course", id, err)
	}
	course.ID = id
	course.CreatedAt = old.CreatedAt
	l.view.Replace(course)

	logger.FromContextOrDefault(ctx, l.logger).Info("course edited",
		slog.Int64("course_id", id),
		slog.String("course_code", course.Code))
	return course.Clone(), nil
}

// Regrade changes the grade of a held course.
func (l *Ledger) Regrade(ctx context.Context, id int64, grade string) (*domain.Course, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	g, ok := domain.ParseGrade(grade)
	if !ok {
		return nil, domain.NewValidationError("grade",
			fmt.Sprintf("grade must be one of %s, got %q", gradeList(), grade))
	}

	course, ok := l.view.Get(id)
	if !ok {
		return nil, unknownCourse(id, nil)
	}

	if err := l.courses.UpdateGrade(ctx, id, g); err != nil {
		return nil, l.missingOrPersistence(ctx, "regrade course", id, err)
	}
	course.SetGrade(g)
	l.view.Replace(course)

	logger.FromContextOrDefault(ctx, l.logger).Info("course regraded",
		slog.Int64("course_id", id),
		slog.String("grade", g.String()))
	return course.Clone(), nil
}

// RemoveCourse deletes a held course and returns it.
func (l *Ledger) RemoveCourse(ctx context.Context, id int64) (*domain.Course, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	course, ok := l.view.Get(id)
	if !ok {
		return nil, unknownCourse(id, nil)
	}

	if err := l.courses.Delete(ctx, id); err != nil {
		return nil, l.missingOrPersistence(ctx, "remove course", id, err)
	}
	l.view.Remove(id)

	logger.FromContextOrDefault(ctx, l.logger).Info("course removed",
		slog.Int64("course_id", id),
		slog.String("course_code", course.Code))
	return course, nil
}

// ClearAll deletes every course. The target is kept.
func (l *Ledger) ClearAll(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.courses.DeleteAll(ctx); err != nil {
		return persistenceError("clear courses", err)
	}
	l.view.Clear()

	logger.FromContextOrDefault(ctx, l.logger).Info("all courses cleared")
	return nil
}

// Calculate aggregates the held courses into a GPA and records the result.
// With a target the ledger must be fulfilled; without one at least one
// course must be held.
func (l *Ledger) Calculate(ctx context.Context) (*domain.CalculationRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	courses := l.view.Courses()
	current := domain.TotalCredits(courses)

	if l.target > 0 {
		if state := stateFor(l.target, current); state != StateFulfilled {
			reason := "credit target not yet reached"
			if state == StateOverTarget {
				reason = "held credits exceed the target"
			}
			return nil, &domain.StateError{
				Operation: "calculate",
				Reason:    reason,
				Target:    l.target,
				Current:   current,
				Remaining: l.target - current,
			}
		}
	} else if len(courses) == 0 {
		return nil, &domain.StateError{
			Operation: "calculate",
			Reason:    "no courses have been added",
		}
	}

	record := domain.NewCalculationRecord(courses)
	if err := l.calcs.Create(ctx, record); err != nil {
		return nil, persistenceError("calculate", err)
	}

	logger.FromContextOrDefault(ctx, l.logger).Info("gpa calculated",
		slog.Int64("calculation_id", record.ID),
		slog.String("gpa", domain.FormatGPA(record.GPA)),
		slog.Float64("total_credits", record.TotalCredits),
		slog.Int("total_courses", record.TotalCourses))
	return record, nil
}

// Search returns stored courses whose name or code contains query.
func (l *Ledger) Search(ctx context.Context, query string) ([]*domain.Course, error) {
	courses, err := l.courses.Search(ctx, query)
	if err != nil {
		return nil, persistenceError("search courses", err)
	}
	return courses, nil
}

// ExportJSON serializes the stored courses as a JSON array.
func (l *Ledger) ExportJSON(ctx context.Context) (string, error) {
	data, err := l.courses.ExportJSON(ctx)
	if err != nil {
		return "", persistenceError("export courses", err)
	}
	return data, nil
}

// ImportJSON adds every course in a JSON array and returns how many were
// added. The import is all-or-nothing: a malformed document, an invalid
// course or a batch that does not fit under the target adds nothing.
func (l *Ledger) ImportJSON(ctx context.Context, data string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	log := logger.FromContextOrDefault(ctx, l.logger)

	decoded, err := domain.UnmarshalCourses([]byte(data))
	if err != nil {
		log.Debug("rejected course import", slog.String("error", err.Error()))
		return 0, err
	}

	adding := domain.TotalCredits(decoded)
	current := l.view.TotalCredits()
	if l.target > 0 && exceeds(current, adding, l.target) {
		return 0, &domain.CapacityError{Current: current, Adding: adding, Target: l.target}
	}

	imported, err := l.courses.ImportJSON(ctx, data)
	if err != nil {
		return 0, persistenceError("import courses", err)
	}

	// The store lists the first document entry as the newest course, so the
	// view, oldest first, receives them from the end.
	for i := len(imported) - 1; i >= 0; i-- {
		l.view.Add(imported[i])
	}

	log.Info("courses imported",
		slog.Int("count", len(imported)),
		slog.Float64("credits", adding))
	return len(imported), nil
}

// History returns up to limit past calculations, most recent first. A
// non-positive limit uses the configured default.
func (l *Ledger) History(ctx context.Context, limit int) ([]*domain.CalculationRecord, error) {
	if limit <= 0 {
		limit = l.historyLimit
	}
	records, err := l.calcs.History(ctx, limit)
	if err != nil {
		return nil, persistenceError("load history", err)
	}
	return records, nil
}

// Calculation returns a single past calculation.
func (l *Ledger) Calculation(ctx context.Context, id int64) (*domain.CalculationRecord, error) {
	record, err := l.calcs.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, &domain.ValidationError{
				Field:   "id",
				Message: fmt.Sprintf("no calculation with id %d", id),
				Err:     err,
			}
		}
		return nil, persistenceError("load calculation", err)
	}
	return record, nil
}

// DeleteCalculation removes a past calculation.
func (l *Ledger) DeleteCalculation(ctx context.Context, id int64) error {
	if err := l.calcs.Delete(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return &domain.ValidationError{
				Field:   "id",
				Message: fmt.Sprintf("no calculation with id %d", id),
				Err:     err,
			}
		}
		return persistenceError("delete calculation", err)
	}

	logger.FromContextOrDefault(ctx, l.logger).Info("calculation deleted",
		slog.Int64("calculation_id", id))
	return nil
}

// missingOrPersistence handles a store error for a course the view believed
// existed. A missing row means the view is stale, so it is reloaded.
// Must be called with mu held.
func (l *Ledger) missingOrPersistence(ctx context.Context, op string, id int64, err error) error {
	if !store.IsNotFoundError(err) {
		return persistenceError(op, err)
	}

	logger.FromContextOrDefault(ctx, l.logger).Warn("course missing from store, reloading view",
		slog.Int64("course_id", id))
	if refreshErr := l.view.Refresh(ctx); refreshErr != nil {
		return persistenceError(op, refreshErr)
	}
	return unknownCourse(id, err)
}

// exceeds reports whether current plus adding is strictly above target.
// The sum is taken in decimal so credits such as 0.1 and 0.2 fill a target
// of 0.3 exactly.
func exceeds(current, adding, target float64) bool {
	sum := decimal.NewFromFloat(current).Add(decimal.NewFromFloat(adding))
	return sum.GreaterThan(decimal.NewFromFloat(target))
}

func unknownCourse(id int64, err error) error {
	return &domain.ValidationError{
		Field:   "id",
		Message: fmt.Sprintf("no course with id %d", id),
		Err:     err,
	}
}

// persistenceError wraps a store failure. Validation errors from the store
// pass through unchanged.
func persistenceError(op string, err error) error {
	if errors.Is(err, domain.ErrValidation) {
		return err
	}
	return &domain.PersistenceError{Operation: op, Err: err}
}
