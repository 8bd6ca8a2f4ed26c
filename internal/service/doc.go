// Package service contains the course ledger: the target-credit state machine
// that decides whether a course may be added and whether a GPA may be
// calculated.
//
// The ledger orchestrates the store (internal/store), the in-memory course
// view (internal/cache) and the GPA aggregation (internal/domain). Every
// mutation runs validate, persist, update the view, in that order; if
// persisting fails the view and the derived state are left untouched.
//
// Errors returned by the ledger always match one of domain.ErrValidation,
// domain.ErrCapacity, domain.ErrState or domain.ErrPersistence.
package service
