package classify

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NoExtension is the extension reported for names without one.
const NoExtension = "no-extension"

// ErrInvalidInput is returned when a descriptor cannot be classified.
var ErrInvalidInput = errors.New("invalid input")

// FileDescriptor describes one file to classify.
type FileDescriptor struct {
	Name      string `json:"name"`                // Base name, used for extension and ordering
	Path      string `json:"path,omitempty"`      // Optional relative path (forward slashes)
	SizeBytes uint64 `json:"sizeBytes,omitempty"` // Optional size, 0 when unknown
}

// Entry is one classified file in a Report listing.
type Entry struct {
	Name      string   `json:"name"`
	Path      string   `json:"path,omitempty"`
	Extension string   `json:"extension"`
	Category  Category `json:"category"`
	Icon      string   `json:"icon"`
	SizeBytes uint64   `json:"sizeBytes,omitempty"`
}

// CategoryBucket aggregates the files of one category.
// Icon is the icon of the first file of that category in input order.
type CategoryBucket struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
	Icon     string   `json:"icon"`
}

// Report is the result of a classification run.
type Report struct {
	TotalCount     int                         `json:"totalCount"`
	TotalSizeBytes uint64                      `json:"totalSizeBytes"`
	ByCategory     map[Category]CategoryBucket `json:"byCategory"`
	ByName         []Entry                     `json:"byName"`
}

// Buckets returns the category buckets ordered by count (descending), then category name.
func (r Report) Buckets() []CategoryBucket {
	buckets := make([]CategoryBucket, 0, len(r.ByCategory))
	for _, bucket := range r.ByCategory {
		buckets = append(buckets, bucket)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Category < buckets[j].Category
	})
	return buckets
}

// Extension returns the lowercased text after the last dot in name,
// or NoExtension when there is no dot or nothing follows it.
func Extension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return NoExtension
	}
	return strings.ToLower(name[idx+1:])
}

// Classifier orders report listings using the collation rules of a locale.
type Classifier struct {
	tag language.Tag
}

// NewClassifier creates a classifier that collates names for the given locale.
func NewClassifier(tag language.Tag) *Classifier {
	return &Classifier{tag: tag}
}

var defaultClassifier = NewClassifier(language.English)

// Classify classifies files with the default (English) collation.
func Classify(files []FileDescriptor) (Report, error) {
	return defaultClassifier.Classify(files)
}

// Classify builds a Report for files. The input is not modified and the
// result depends only on the input, so repeated calls yield equal reports.
// A descriptor with an empty name rejects the whole call with ErrInvalidInput.
func (c *Classifier) Classify(files []FileDescriptor) (Report, error) {
	report := Report{
		ByCategory: make(map[Category]CategoryBucket),
		ByName:     make([]Entry, 0, len(files)),
	}

	for i, file := range files {
		if file.Name == "" {
			return Report{}, fmt.Errorf("%w: file %d has an empty name", ErrInvalidInput, i)
		}

		extension := Extension(file.Name)
		category := CategoryOf(extension)
		icon := IconOf(extension)

		bucket, seen := report.ByCategory[category]
		if !seen {
			bucket = CategoryBucket{Category: category, Icon: icon}
		}
		bucket.Count++
		report.ByCategory[category] = bucket

		report.ByName = append(report.ByName, Entry{
			Name:      file.Name,
			Path:      file.Path,
			Extension: extension,
			Category:  category,
			Icon:      icon,
			SizeBytes: file.SizeBytes,
		})
		report.TotalCount++
		report.TotalSizeBytes += file.SizeBytes
	}

	// A collator keeps scratch buffers, so each call gets its own.
	collator := collate.New(c.tag)
	sort.SliceStable(report.ByName, func(i, j int) bool {
		return collator.CompareString(report.ByName[i].Name, report.ByName[j].Name) < 0
	})

	return report, nil
}
