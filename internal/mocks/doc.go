// Package mocks provides testify mock implementations of the store interfaces.
//
// Usage:
//
//	courses := mocks.NewMockCourseStore()
//	courses.On("GetAll", mock.Anything).Return([]*domain.Course{}, nil)
//	courses.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))
//
// Create and CreateBatch assign increasing IDs to their arguments when they
// succeed, so the mocks can stand in for a real store in ledger tests.
package mocks
