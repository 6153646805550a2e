package httpd

import (
	"fmt"
	"os"
	"strings"
)

var stringToMethod = map[string]Method{
	"GET":         MethodGET,
	"HEAD":        MethodHEAD,
	"UNSUPPORTED": MethodUnsupported,
}

var stringToVersion = map[string]Version{
	"HTTP/1.1":    VersionHTTP11,
	"UNSUPPORTED": VersionUnsupported,
}

var stringToExtension = map[string]Extension{
	"HTML":  ExtensionHTML,
	"CSS":   ExtensionCSS,
	"PNG":   ExtensionPNG,
	"JPG":   ExtensionJPG,
	"JPEG":  ExtensionJPEG,
	"GIF":   ExtensionGIF,
	"OCTET": ExtensionOCTET,
}

var extensionToMimeType = map[Extension]string{
	ExtensionHTML:  mimeTypeHTML,
	ExtensionCSS:   mimeTypeCSS,
	ExtensionPNG:   mimeTypePNG,
	ExtensionJPG:   mimeTypeJPG,
	ExtensionJPEG:  mimeTypeJPEG,
	ExtensionGIF:   mimeTypeGIF,
	ExtensionOCTET: mimeTypeOCTET,
}

// toMethod is space and case insensitive, defaulting to MethodUnsupported.
func toMethod(methodStr string) Method {
	if m, ok := stringToMethod[format(methodStr)]; ok {
		return m
	}
	return MethodUnsupported
}

// toVersion is space and case insensitive, defaulting to VersionUnsupported.
func toVersion(versionStr string) Version {
	if v, ok := stringToVersion[format(versionStr)]; ok {
		return v
	}
	return VersionUnsupported
}

// toExtension is space and case insensitive, defaulting to ExtensionOCTET.
func toExtension(extensionStr string) Extension {
	if e, ok := stringToExtension[format(extensionStr)]; ok {
		return e
	}
	return ExtensionOCTET
}

// extensionToMime maps a recognized Extension to its MIME type string.
func extensionToMime(extension Extension) string {
	if mime, ok := extensionToMimeType[extension]; ok {
		return mime
	}
	return mimeTypeOCTET
}

// split tokenizes str on every occurrence of delim, keeping empty leading
// and interior tokens; a trailing delim adds no empty token after it (so
// "a\r\n\r\n" yields ["a", ""], whose empty final token marks the "\r\n\r\n"
// request terminator).
func split(str, delim string) []string {
	if str == "" {
		return nil
	}
	var tokens []string
	curr := 0
	for {
		next := strings.Index(str[curr:], delim)
		if next == -1 {
			break
		}
		next += curr
		tokens = append(tokens, str[curr:next])
		curr = next + len(delim)
	}
	if curr != len(str) {
		tokens = append(tokens, str[curr:])
	}
	return tokens
}

// join concatenates tokens with delim between each pair.
func join(tokens []string, delim string) string {
	return strings.Join(tokens, delim)
}

// trim removes leading/trailing runs of delim's bytes from str.
func trim(str, delim string) string {
	return strings.Trim(str, delim)
}

func toUpper(str string) string {
	return strings.ToUpper(str)
}

// format applies trim(" ") then toUpper, used throughout to normalize
// method/version/header-key comparisons.
func format(str string) string {
	return toUpper(trim(str, space))
}

func isDirectoryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// isCgiRequest reports whether resourceURL names a path under a cgi-bin
// folder.
func isCgiRequest(resourceURL string) bool {
	return strings.Contains(resourceURL, cgiFolderName)
}

func isFileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func deleteFile(path string) bool {
	return os.Remove(path) == nil
}

func checkFileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// loadFile reads path in full and appends it to buffer.
func loadFile(path string, buffer *[]byte) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("httpd: loadFile(%s): %w", path, err)
	}
	*buffer = append(*buffer, data...)
	return nil
}
