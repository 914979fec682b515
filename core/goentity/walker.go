package goentity

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/stokaro/ormeta/core/decl"
)

// ParseDir parses all Go files in the given root directory and its
// subdirectories and returns the persistent classes they declare.
//
// Test files are skipped, as are vendor directories and directories the Go
// tool ignores (names starting with "." or "_"). Files are visited in lexical
// order, so the result is deterministic. Accessor methods may live in a
// different file than their receiver struct. A class name declared twice
// fails.
//
// Parameters:
//   - rootDir: the root directory to start parsing from (e.g., "./entities")
//
// Returns:
//   - []*decl.Class: the declared classes, ready for registry.Register
//   - error: a file system error, a Go syntax error, or a malformed directive
//
// Example:
//
//	classes, err := goentity.ParseDir("./internal/entities")
//	if err != nil {
//		return fmt.Errorf("failed to parse entities: %w", err)
//	}
//	if err := reg.Register(classes...); err != nil {
//		return err
//	}
func ParseDir(rootDir string) ([]*decl.Class, error) {
	var results []*fileResult

	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			name := info.Name()
			if path != rootDir && (name == "vendor" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip non-Go and test files
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		result, err := parseFile(path)
		if err != nil {
			return err
		}
		results = append(results, result)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return merge(results...)
}
