package classify

import "bytes"

// SniffSize is how many leading bytes IsBinaryContent inspects.
const SniffSize = 512

// IsBinaryContent reports whether the leading bytes of a file contain a NUL,
// which text files never do. Scanning uses it to annotate files; Classify
// itself never looks at content.
func IsBinaryContent(data []byte) bool {
	if len(data) > SniffSize {
		data = data[:SniffSize]
	}
	return bytes.IndexByte(data, 0) >= 0
}
