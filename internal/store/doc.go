// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the ledger's core logic, allowing the credit-target rules to remain
// independent of specific database technologies or persistence details.
package store
