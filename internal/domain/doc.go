// Package domain contains the core entities of the GPA ledger: courses, letter
// grades, calculation records, and the error kinds shared by the store and
// service layers. It also holds the pure GPA aggregation, which has no state
// and no dependency on any storage or delivery mechanism.
package domain
