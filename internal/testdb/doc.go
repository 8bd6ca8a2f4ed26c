// Package testdb provides database fixtures for tests.
//
// OpenSQLite gives every test its own SQLite file with the baseline schema
// applied. OpenPostgres connects to the server named by GPA_TEST_DATABASE_URL
// and skips the test when the variable is unset, so PostgreSQL suites can sit
// behind the integration build tag and still be safe to run anywhere.
//
// WithTx runs a test body inside a transaction that is always rolled back:
//
//	testdb.WithTx(t, h, func(t *testing.T, tx *sql.Tx) {
//		s := sqlstore.NewSQLCourseStore(h, nil).WithTx(tx)
//		// ...
//	})
package testdb
