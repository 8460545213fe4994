package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Artifact file names inside a category directory
const (
	URLListFile       = "url_list.txt"
	RepostURLListFile = "url_list_reposts.txt"
	MetadataFile      = "metadata.txt"
	RawMetadataFile   = "raw_metadata.json"
	SegmentsFile      = "segments.json"
)

// Segments pairs an item permalink with its raw segments document
type Segments struct {
	Permalink string          `json:"permalink"`
	Data      json.RawMessage `json:"segments"`
}

// Entry is one item as the store sees it
type Entry struct {
	URL       string
	IsRepost  bool
	Formatted string
	Raw       json.RawMessage
	Segments  *Segments
}

// Summary describes what a Write produced
type Summary struct {
	Dir            string
	URLs           int
	Reposts        int
	Records        int
	SegmentBundles int
	// RepostListWritten is false when there were no reposts and any older
	// repost list was left in place
	RepostListWritten bool
	SegmentsWritten   bool
}

// Store manages per-category artifacts under a root info directory
type Store struct {
	root string
}

// NewStore creates a store rooted at dir. The directory is created lazily.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the info directory
func (s *Store) Root() string {
	return s.root
}

// CategoryDir returns the directory holding a category's artifacts
func (s *Store) CategoryDir(category string) string {
	return filepath.Join(s.root, category)
}

// Path returns the path of an artifact for a category
func (s *Store) Path(category, file string) string {
	return filepath.Join(s.CategoryDir(category), file)
}

// HasURLList reports whether a category has been crawled before
func (s *Store) HasURLList(category string) bool {
	info, err := os.Stat(s.Path(category, URLListFile))
	return err == nil && !info.IsDir()
}

// CountURLs returns the number of non-empty lines in the category's URL list
func (s *Store) CountURLs(category string) (int, error) {
	return countLines(s.Path(category, URLListFile))
}

// CountRepostURLs returns the number of lines in the repost list, 0 if absent
func (s *Store) CountRepostURLs(category string) (int, error) {
	n, err := countLines(s.Path(category, RepostURLListFile))
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	return n, err
}

// HasRepostList reports whether a category has a repost list
func (s *Store) HasRepostList(category string) bool {
	info, err := os.Stat(s.Path(category, RepostURLListFile))
	return err == nil && !info.IsDir()
}

// Categories lists the category directories under the root in name order.
// A missing root yields no categories.
func (s *Store) Categories() ([]string, error) {
	dirEntries, err := os.ReadDir(s.root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	var categories []string
	for _, e := range dirEntries {
		if e.IsDir() {
			categories = append(categories, e.Name())
		}
	}
	return categories, nil
}

// RemoveURLList deletes only the URL list, leaving every other artifact
func (s *Store) RemoveURLList(category string) error {
	err := os.Remove(s.Path(category, URLListFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove URL list: %w", err)
	}
	return nil
}

// Write persists entries for a category. Originals go to the URL list,
// reposts to the repost list (only when there are any), every entry to
// both metadata files, and segment bundles to segments.json when
// withSegments is set and at least one entry carries segments. The URL
// list is written last.
func (s *Store) Write(category string, entries []Entry, withSegments bool) (*Summary, error) {
	dir := s.CategoryDir(category)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create category directory: %w", err)
	}

	summary := &Summary{Dir: dir, Records: len(entries)}

	var originals, reposts, formatted []string
	var raw [][]byte
	var bundles []Segments
	for _, e := range entries {
		if e.IsRepost {
			reposts = append(reposts, e.URL)
		} else {
			originals = append(originals, e.URL)
		}
		formatted = append(formatted, e.Formatted)
		raw = append(raw, e.Raw)
		if e.Segments != nil {
			bundles = append(bundles, *e.Segments)
		}
	}
	summary.URLs = len(originals)
	summary.Reposts = len(reposts)
	summary.SegmentBundles = len(bundles)

	if len(reposts) > 0 {
		if err := writeFileAtomic(s.Path(category, RepostURLListFile), []byte(strings.Join(reposts, "\n"))); err != nil {
			return nil, err
		}
		summary.RepostListWritten = true
	}

	if err := writeFileAtomic(s.Path(category, MetadataFile), []byte(strings.Join(formatted, "\n"))); err != nil {
		return nil, err
	}
	if err := writeFileAtomic(s.Path(category, RawMetadataFile), bytes.Join(raw, []byte(",\n"))); err != nil {
		return nil, err
	}

	if withSegments && len(bundles) > 0 {
		data, err := json.MarshalIndent(bundles, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode segments: %w", err)
		}
		if err := writeFileAtomic(s.Path(category, SegmentsFile), data); err != nil {
			return nil, err
		}
		summary.SegmentsWritten = true
	}

	if err := writeFileAtomic(s.Path(category, URLListFile), []byte(strings.Join(originals, "\n"))); err != nil {
		return nil, err
	}

	return summary, nil
}

// writeFileAtomic writes to a temporary file and renames it into place
func writeFileAtomic(filename string, data []byte) error {
	tempFile := filename + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(filename), err)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return count, nil
}
