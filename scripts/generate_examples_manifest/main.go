package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
)

// ExampleEntry describes one runnable program under examples/, keyed by
// its directory so `rcpspsmt examples run <dir>` and this manifest agree
// on names.
type ExampleEntry struct {
	Dir            string `json:"dir"`
	ExpectedOutput string `json:"expected_output"`
}

func main() {
	pkgPath := flag.String("pkg", "examples", "examples directory to scan (relative path)")
	outPath := flag.String("out", "examples_index.json", "output JSON file")
	flag.Parse()

	var entries []ExampleEntry
	fset := token.NewFileSet()

	err := filepath.WalkDir(*pkgPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Base(path) != "main.go" {
			return nil
		}

		src, err := ioutil.ReadFile(path)
		if err != nil {
			return err
		}

		file, err := parser.ParseFile(fset, path, src, parser.ParseComments)
		if err != nil {
			return err
		}
		if file.Doc == nil {
			return nil
		}

		docEnd := fset.Position(file.Doc.End()).Offset
		expected := extractOutputComment(src, docEnd)
		if expected == "" {
			return nil
		}

		dir, _ := filepath.Rel(*pkgPath, filepath.Dir(path))
		entries = append(entries, ExampleEntry{Dir: dir, ExpectedOutput: expected})
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error scanning examples: %v\n", err)
		os.Exit(2)
	}

	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error encoding json: %v\n", err)
		os.Exit(2)
	}

	if err := ioutil.WriteFile(*outPath, out, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing output: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("wrote %d example entries to %s\n", len(entries), *outPath)
}

// extractOutputComment looks backward from the package doc comment for a
// line containing "Expected output:" and returns the joined lines that
// follow it within the same comment block (without "//" prefixes).
func extractOutputComment(src []byte, docEndOffset int) string {
	start := docEndOffset - 2000
	if start < 0 {
		start = 0
	}
	if docEndOffset > len(src) {
		docEndOffset = len(src)
	}

	scanner := bufio.NewScanner(strings.NewReader(string(src[start:docEndOffset])))
	var found bool
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if !found {
			if strings.HasPrefix(trimmed, "//") && strings.Contains(strings.ToLower(trimmed), "expected output:") {
				found = true
				idx := strings.Index(strings.ToLower(trimmed), "expected output:")
				after := strings.TrimSpace(trimmed[idx+len("expected output:"):])
				if after != "" {
					lines = append(lines, after)
				}
			}
			continue
		}
		if strings.HasPrefix(trimmed, "//") {
			lines = append(lines, strings.TrimSpace(strings.TrimPrefix(trimmed, "//")))
			continue
		}
	}
	if err := scanner.Err(); err != nil {
		return ""
	}
	return strings.Join(lines, "\n")
}
