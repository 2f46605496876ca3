package index

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/lexandro/filetally-mcp/classify"
)

// NameIndex provides full-text search over classified file names using an in-memory Bleve index.
// It is rebuilt from scratch from each Report, mirroring how reports themselves are recomputed.
type NameIndex struct {
	mu      sync.RWMutex
	index   bleve.Index
	entries []classify.Entry // report listing; document IDs are positions in it
}

// nameDocument is the document structure stored in Bleve.
type nameDocument struct {
	Name      string `json:"name"`
	Words     string `json:"words"`
	Path      string `json:"path"`
	Extension string `json:"extension"`
	Category  string `json:"category"`
}

// NewNameIndex creates an empty name index.
func NewNameIndex() (*NameIndex, error) {
	bleveIndex, err := bleve.NewMemOnly(buildNameMapping())
	if err != nil {
		return nil, fmt.Errorf("creating bleve index: %w", err)
	}
	return &NameIndex{index: bleveIndex}, nil
}

// buildNameMapping indexes names and paths as text and extension/category as keywords.
func buildNameMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	for _, field := range []string{"name", "words", "path"} {
		textField := bleve.NewTextFieldMapping()
		textField.Store = false
		textField.IncludeInAll = true
		docMapping.AddFieldMappingsAt(field, textField)
	}

	for _, field := range []string{"extension", "category"} {
		keywordField := bleve.NewKeywordFieldMapping()
		keywordField.Store = false
		keywordField.IncludeInAll = false
		docMapping.AddFieldMappingsAt(field, keywordField)
	}

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// splitWords breaks a file name on anything that is not a letter or digit,
// so "holiday-photo.JPG" is searchable as "holiday", "photo" and "jpg".
func splitWords(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, " ")
}

// Rebuild replaces the index contents with the entries of a report.
func (ni *NameIndex) Rebuild(report classify.Report) error {
	newIndex, err := bleve.NewMemOnly(buildNameMapping())
	if err != nil {
		return fmt.Errorf("creating bleve index: %w", err)
	}

	batch := newIndex.NewBatch()
	for i, entry := range report.ByName {
		doc := nameDocument{
			Name:      entry.Name,
			Words:     splitWords(entry.Name),
			Path:      entry.Path,
			Extension: entry.Extension,
			Category:  string(entry.Category),
		}
		if err := batch.Index(strconv.Itoa(i), doc); err != nil {
			newIndex.Close()
			return fmt.Errorf("indexing %s: %w", entry.Name, err)
		}
	}
	if err := newIndex.Batch(batch); err != nil {
		newIndex.Close()
		return fmt.Errorf("applying index batch: %w", err)
	}

	entries := append([]classify.Entry(nil), report.ByName...)

	ni.mu.Lock()
	old := ni.index
	ni.index = newIndex
	ni.entries = entries
	ni.mu.Unlock()

	// The new index is already live; a failure releasing the old one must not undo it.
	_ = old.Close()
	return nil
}

// SearchOptions configures a name search.
type SearchOptions struct {
	Query      string
	Category   classify.Category // Optional; restricts hits to one category
	MaxResults int
}

// Search returns matching entries in report (collated name) order.
// Query format:
//   - Plain text: match query (word-level matching)
//   - "quoted text": phrase query (exact phrase match)
//   - /regex/: regexp query over indexed terms
//   - empty: every entry (useful together with Category)
func (ni *NameIndex) Search(options SearchOptions) ([]classify.Entry, error) {
	ni.mu.RLock()
	defer ni.mu.RUnlock()

	if options.MaxResults <= 0 {
		options.MaxResults = 50
	}
	if len(ni.entries) == 0 {
		return nil, nil
	}

	searchRequest := bleve.NewSearchRequest(buildNameQuery(options))
	searchRequest.Size = len(ni.entries)

	searchResults, err := ni.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	positions := make([]int, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		pos, err := strconv.Atoi(hit.ID)
		if err != nil || pos < 0 || pos >= len(ni.entries) {
			continue
		}
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	if len(positions) > options.MaxResults {
		positions = positions[:options.MaxResults]
	}
	results := make([]classify.Entry, 0, len(positions))
	for _, pos := range positions {
		results = append(results, ni.entries[pos])
	}
	return results, nil
}

// buildNameQuery parses the query string and optional category into a Bleve query.
func buildNameQuery(options SearchOptions) query.Query {
	queryString := strings.TrimSpace(options.Query)

	var textQuery query.Query
	switch {
	case queryString == "":
		textQuery = bleve.NewMatchAllQuery()
	case strings.HasPrefix(queryString, "/") && strings.HasSuffix(queryString, "/") && len(queryString) > 2:
		textQuery = bleve.NewRegexpQuery(strings.ToLower(queryString[1 : len(queryString)-1]))
	case strings.HasPrefix(queryString, "\"") && strings.HasSuffix(queryString, "\"") && len(queryString) > 2:
		phraseQuery := bleve.NewMatchPhraseQuery(splitWords(queryString[1 : len(queryString)-1]))
		phraseQuery.SetField("words")
		textQuery = phraseQuery
	default:
		textQuery = bleve.NewMatchQuery(queryString)
	}

	if options.Category == "" {
		return textQuery
	}
	categoryQuery := bleve.NewTermQuery(string(options.Category))
	categoryQuery.SetField("category")
	return bleve.NewConjunctionQuery(textQuery, categoryQuery)
}

// DocumentCount returns the number of documents in the Bleve index.
func (ni *NameIndex) DocumentCount() uint64 {
	ni.mu.RLock()
	defer ni.mu.RUnlock()
	count, _ := ni.index.DocCount()
	return count
}

// Close closes the Bleve index.
func (ni *NameIndex) Close() error {
	ni.mu.Lock()
	defer ni.mu.Unlock()
	return ni.index.Close()
}
