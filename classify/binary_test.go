package classify

import "testing"

func Test_IsBinaryContent(t *testing.T) {
	lateNul := make([]byte, SniffSize+10)
	for i := range lateNul {
		lateNul[i] = 'a'
	}
	lateNul[SniffSize+5] = 0x00

	midNul := []byte("plain text")
	midNul[4] = 0x00

	tests := []struct {
		name     string
		content  []byte
		expected bool
	}{
		{"Text", []byte("notes for the trip\nsecond line\n"), false},
		{"Empty", []byte{}, false},
		{"PNGHeader", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, true},
		{"NulInMiddle", midNul, true},
		{"NulPastSniffWindow", lateNul, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBinaryContent(tt.content); got != tt.expected {
				t.Errorf("IsBinaryContent() = %v, want %v", got, tt.expected)
			}
		})
	}
}
