// apps/game-session/assets/embed.go
//
// Embedded defaults: word lists for the bundled oracle and SQL migrations for the
// accounts database.

package assets

import (
	"embed"
	"io/fs"
)

//go:embed allowed.txt answers.txt migrations/*.sql
var FS embed.FS

// Answers opens the embedded answer list (one word per line, '#' comments).
func Answers() (fs.File, error) { return FS.Open("answers.txt") }

// Allowed opens the embedded list of extra allowed guesses.
func Allowed() (fs.File, error) { return FS.Open("allowed.txt") }

// Migrations returns the embedded migrations directory.
func Migrations() fs.FS {
	sub, _ := fs.Sub(FS, "migrations")
	return sub
}
