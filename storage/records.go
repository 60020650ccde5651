package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pevans/medharvest"
)

// csvHeader lists the exported columns in order. Categories are flattened to
// a comma-joined string in the tabular form.
var csvHeader = []string{
	"title", "author", "publishedDate", "categories",
	"readingTime", "summary", "source", "reference",
}

// SaveArticles exports a record collection to both JSON and CSV under the
// given base name (no extension). Returns both paths.
func (s *Store) SaveArticles(name string, articles []medharvest.Article) (string, string, error) {
	jsonPath := filepath.Join(s.dir, name+".json")
	csvPath := filepath.Join(s.dir, name+".csv")

	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal articles: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return "", "", fmt.Errorf("failed to write articles JSON: %w", err)
	}

	if err := s.writeCSV(csvPath, articles); err != nil {
		return "", "", err
	}

	return jsonPath, csvPath, nil
}

func (s *Store) writeCSV(path string, articles []medharvest.Article) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create articles CSV: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, a := range articles {
		row := []string{
			a.Title,
			a.Author,
			a.PublishedDate,
			strings.Join(a.Categories, ", "),
			a.ReadingTime,
			a.Summary,
			a.Source,
			a.Reference,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	return nil
}

// LoadArticles loads a previously exported record collection from its JSON
// form. A missing file yields an empty slice so each pipeline stage can be
// run independently.
func (s *Store) LoadArticles(name string) ([]medharvest.Article, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name+".json"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read articles: %w", err)
	}

	var articles []medharvest.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("failed to parse articles: %w", err)
	}

	return articles, nil
}
