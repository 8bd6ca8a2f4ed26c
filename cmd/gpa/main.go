// Package main implements gpa, a command-line course ledger that records
// graded courses against a credit target and computes the grade-point
// average once the target is met.
package main

import (
	"context"
	"os"

	"github.com/tebeka/atexit"
)

func main() {
	app := newApplication(os.Stdin, os.Stdout, os.Stderr)

	// Release the database on every exit path, including atexit.Exit below.
	atexit.Register(app.cleanup)

	code := execute(context.Background(), app, os.Args[1:])
	atexit.Exit(code)
}
