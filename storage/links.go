// Package storage persists collected link sets and extracted article records
// under a data directory. Link sets are written once at the end of a
// collection run and never mutated afterwards; later pipeline stages load and
// merge them.
package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// LinkSet is the persisted form of one collection run's references.
type LinkSet struct {
	Tag        string   `json:"tag"`
	TotalLinks int      `json:"total_links"`
	Links      []string `json:"links"`
}

// Store reads and writes pipeline artifacts in a single directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) linksPath(tag string) string {
	return filepath.Join(s.dir, fmt.Sprintf("raw_links_%s.json", tag))
}

// SaveLinks persists a tag's collected references.
func (s *Store) SaveLinks(tag string, links []string) (string, error) {
	set := LinkSet{
		Tag:        tag,
		TotalLinks: len(links),
		Links:      links,
	}

	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal link set: %w", err)
	}

	path := s.linksPath(tag)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write link set: %w", err)
	}

	return path, nil
}

// LoadLinks loads a tag's saved references. A missing file yields an empty
// slice, not an error: the tag simply has not been collected yet.
func (s *Store) LoadLinks(tag string) ([]string, error) {
	data, err := os.ReadFile(s.linksPath(tag))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read link set: %w", err)
	}

	var set LinkSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse link set: %w", err)
	}

	return set.Links, nil
}

// MergeLinks unions the saved link sets of several tags, removing duplicates
// while preserving first-seen order across tags.
func (s *Store) MergeLinks(tags []string) ([]string, error) {
	seen := make(map[string]struct{})
	var merged []string

	for _, tag := range tags {
		links, err := s.LoadLinks(tag)
		if err != nil {
			return nil, err
		}
		log.Printf("INFO: Tag %q: %d saved links", tag, len(links))

		for _, link := range links {
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			merged = append(merged, link)
		}
	}

	return merged, nil
}
