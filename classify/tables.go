package classify

import "strings"

// Category is a semantic grouping of files derived from their extension.
type Category string

const (
	CategoryImages        Category = "images"
	CategoryDocuments     Category = "documents"
	CategorySpreadsheets  Category = "spreadsheets"
	CategoryPresentations Category = "presentations"
	CategoryArchives      Category = "archives"
	CategoryAudio         Category = "audio"
	CategoryVideo         Category = "video"
	CategoryCode          Category = "code"
	CategoryData          Category = "data"
	CategoryExecutables   Category = "executables"
	CategoryOther         Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryImages,
	CategoryDocuments,
	CategorySpreadsheets,
	CategoryPresentations,
	CategoryArchives,
	CategoryAudio,
	CategoryVideo,
	CategoryCode,
	CategoryData,
	CategoryExecutables,
	CategoryOther,
}

// ParseCategory returns the category named s, or false if s names none.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// DefaultIcon is the glyph for extensions missing from ExtensionToIcon.
const DefaultIcon = "📄"

// ExtensionToCategory maps lowercase extensions (without dot) to categories.
// Each extension appears exactly once; json is data, not code.
var ExtensionToCategory = map[string]Category{
	// Images
	"jpg": CategoryImages, "jpeg": CategoryImages, "png": CategoryImages,
	"gif": CategoryImages, "svg": CategoryImages, "webp": CategoryImages,
	"bmp": CategoryImages, "ico": CategoryImages,
	// Documents
	"pdf": CategoryDocuments, "doc": CategoryDocuments, "docx": CategoryDocuments,
	"txt": CategoryDocuments, "rtf": CategoryDocuments, "odt": CategoryDocuments,
	// Spreadsheets
	"xls": CategorySpreadsheets, "xlsx": CategorySpreadsheets,
	"csv": CategorySpreadsheets, "ods": CategorySpreadsheets,
	// Presentations
	"ppt": CategoryPresentations, "pptx": CategoryPresentations, "odp": CategoryPresentations,
	// Archives
	"zip": CategoryArchives, "rar": CategoryArchives, "7z": CategoryArchives,
	"tar": CategoryArchives, "gz": CategoryArchives,
	// Audio
	"mp3": CategoryAudio, "wav": CategoryAudio, "flac": CategoryAudio,
	"aac": CategoryAudio, "ogg": CategoryAudio, "m4a": CategoryAudio,
	// Video
	"mp4": CategoryVideo, "avi": CategoryVideo, "mov": CategoryVideo,
	"mkv": CategoryVideo, "flv": CategoryVideo, "wmv": CategoryVideo,
	"webm": CategoryVideo,
	// Code
	"js": CategoryCode, "ts": CategoryCode, "py": CategoryCode,
	"java": CategoryCode, "cpp": CategoryCode, "c": CategoryCode,
	"php": CategoryCode, "html": CategoryCode, "css": CategoryCode,
	"xml": CategoryCode, "yml": CategoryCode, "yaml": CategoryCode,
	// Data
	"json": CategoryData, "sql": CategoryData, "db": CategoryData,
	// Executables
	"exe": CategoryExecutables, "msi": CategoryExecutables, "bat": CategoryExecutables,
	"sh": CategoryExecutables, "app": CategoryExecutables,
}

// ExtensionToIcon maps lowercase extensions (without dot) to display glyphs.
// It is independent of ExtensionToCategory: gif is an image with a film icon.
var ExtensionToIcon = map[string]string{
	// Images
	"jpg": "🖼️", "jpeg": "🖼️", "png": "🖼️", "webp": "🖼️", "bmp": "🖼️",
	"gif": "🎬", "svg": "✨", "ico": "📌",
	// Documents
	"pdf": "📄", "txt": "📋",
	"doc": "📝", "docx": "📝", "rtf": "📝", "odt": "📝",
	// Spreadsheets
	"xls": "📊", "xlsx": "📊", "csv": "📊", "ods": "📊",
	// Presentations
	"ppt": "🎯", "pptx": "🎯", "odp": "🎯",
	// Archives
	"zip": "📦", "rar": "📦", "7z": "📦", "tar": "📦", "gz": "📦",
	// Audio
	"mp3": "🎵", "wav": "🎵", "flac": "🎵", "aac": "🎵", "ogg": "🎵", "m4a": "🎵",
	// Video
	"mp4": "🎥", "avi": "🎥", "mov": "🎥", "mkv": "🎥", "flv": "🎥", "wmv": "🎥", "webm": "🎥",
	// Code
	"js": "💻", "ts": "💻", "py": "🐍", "java": "☕",
	"cpp": "⚙️", "c": "⚙️", "php": "🔗", "html": "🌐", "css": "🎨",
	"json": "📋", "xml": "📋", "yml": "📋", "yaml": "📋",
	// Executables
	"exe": "⚡", "msi": "⚡", "bat": "⚡", "sh": "⚡", "app": "⚡",
}

// CategoryOf returns the category for an already-extracted extension.
// The lookup is case-insensitive and total: unknown extensions are CategoryOther.
func CategoryOf(extension string) Category {
	if category, ok := ExtensionToCategory[strings.ToLower(extension)]; ok {
		return category
	}
	return CategoryOther
}

// IconOf returns the glyph for an already-extracted extension.
func IconOf(extension string) string {
	if icon, ok := ExtensionToIcon[strings.ToLower(extension)]; ok {
		return icon
	}
	return DefaultIcon
}
