package constants

import "strings"

// FileTypes holds the format labels stored on extraction job rows.
var FileTypes = []string{"DOCX", "PDF", "TXT"}

// AllowedExtensions holds the file extensions the /process endpoint accepts.
var AllowedExtensions = map[string]struct{}{
	"docx": {},
	"doc":  {},
	"pdf":  {},
	"txt":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// FormatForExt maps a normalized extension to its job format label.
func FormatForExt(ext string) string {
	switch NormalizeExt(ext) {
	case "docx", "doc":
		return "DOCX"
	case "pdf":
		return "PDF"
	case "txt":
		return "TXT"
	default:
		return "UNKNOWN"
	}
}
