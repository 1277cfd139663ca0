package storage

import "testing"

func TestSessionKey(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"report.docx", "sessions/abc/report.docx"},
		{"../../other/report.docx", "sessions/abc/report.docx"},
		{`C:\Users\me\report.docx`, "sessions/abc/report.docx"},
		{"..", "sessions/abc/document"},
		{"", "sessions/abc/document"},
	}
	for _, tt := range tests {
		if got := SessionKey("abc", tt.filename); got != tt.want {
			t.Errorf("SessionKey(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}
