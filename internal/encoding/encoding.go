// Package encoding implements C1, the Encoding Detector (§4.1).
package encoding

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gogs/chardet"
)

const (
	UTF8          = "utf8"
	Windows1252   = "windows-1252"
)

// canonicalLabels folds every label the detector (or a file's own charset
// metadata) might report onto one of the two canonical names the rest of
// the pipeline understands. Unknown labels default to UTF8 (§4.1).
var canonicalLabels = map[string]string{
	"ascii":          UTF8,
	"utf-8":          UTF8,
	"utf8":           UTF8,
	"iso-8859-1":     Windows1252,
	"iso-8859-15":    Windows1252,
	"latin-1":        Windows1252,
	"latin1":         Windows1252,
	"cp1250":         Windows1252,
	"cp1252":         Windows1252,
	"windows-1250":   Windows1252,
	"windows-1252":   Windows1252,
}

// sniffSize bounds how much of the file feeds the statistical detector —
// enough for a confident verdict on typical government CSV exports without
// reading the whole file.
const sniffSize = 64 * 1024

// Detect implements detect(path) → canonical_encoding. It fails only if the
// file is unreadable; it never fails on encoding ambiguity — an
// unrecognized or low-confidence result simply falls back to UTF8.
func Detect(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("encoding: open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, sniffSize)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("encoding: read %s: %w", path, err)
	}

	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(buf[:n])
	if err != nil || result == nil {
		return UTF8, nil
	}

	label := strings.ToLower(result.Charset)
	if canonical, ok := canonicalLabels[label]; ok {
		return canonical, nil
	}
	return UTF8, nil
}
