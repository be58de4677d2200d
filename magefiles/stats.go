//go:build mage

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// sourceRoots are the trees Stats counts; magefiles are build tooling.
var sourceRoots = []string{"cmd", "internal", "pkg"}

// goLines holds line counts for one source tree.
type goLines struct {
	Prod int `json:"prod"`
	Test int `json:"test"`
}

// Stats prints Go lines of code per source tree as one JSON record.
func Stats() error {
	record := make(map[string]goLines, len(sourceRoots)+1)
	var total goLines
	for _, root := range sourceRoots {
		counts, err := countTree(root)
		if err != nil {
			return fmt.Errorf("count %s: %w", root, err)
		}
		record[root] = counts
		total.Prod += counts.Prod
		total.Test += counts.Test
	}
	record["total"] = total

	line, err := json.Marshal(record)
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}

func countTree(root string) (goLines, error) {
	var counts goLines
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		n, err := countLines(path)
		if err != nil {
			return err
		}
		if strings.HasSuffix(path, "_test.go") {
			counts.Test += n
		} else {
			counts.Prod += n
		}
		return nil
	})
	return counts, err
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		n++
	}
	return n, scanner.Err()
}
