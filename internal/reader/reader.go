// Package reader implements C2, the Tabular Reader (§4.2).
package reader

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/farxc/projetus/internal/pipelineerr"
	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// delimiterCandidates are tried in order — semicolon first, since it is the
// Brazilian government norm (§4.2) — accepting the first that yields at
// least two columns on the file's first line.
var delimiterCandidates = []rune{';', ',', '\t'}

const sniffSampleLines = 10

// Read produces a Table (a gota DataFrame) from a delimited or .xlsx file,
// honoring the encoding C1 detected. Empty files fail with EmptyFile.
func Read(path, canonicalEncoding string) (dataframe.DataFrame, error) {
	info, err := os.Stat(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("reader: stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		return dataframe.DataFrame{}, pipelineerr.EmptyFile("reader.Read", path)
	}

	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return readExcel(path)
	}
	return readDelimited(path, canonicalEncoding)
}

func readExcel(path string) (dataframe.DataFrame, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("reader: open xlsx %s: %w", path, err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return dataframe.DataFrame{}, pipelineerr.EmptyFile("reader.readExcel", path)
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("reader: read rows %s: %w", path, err)
	}
	if len(rows) == 0 {
		return dataframe.DataFrame{}, pipelineerr.EmptyFile("reader.readExcel", path)
	}

	rows[0][0] = stripBOM(rows[0][0])

	records := make([][]string, len(rows))
	copy(records, rows)

	df := dataframe.LoadRecords(records)
	if df.Nrow() == 0 {
		return dataframe.DataFrame{}, pipelineerr.EmptyFile("reader.readExcel", path)
	}
	return df, df.Error()
}

func readDelimited(path, canonicalEncoding string) (dataframe.DataFrame, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("reader: read %s: %w", path, err)
	}

	decoded, err := decode(raw, canonicalEncoding)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("reader: decode %s: %w", path, err)
	}

	delim, err := sniffDelimiter(decoded)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	decoded = stripLeadingBOMBytes(decoded)

	df := dataframe.ReadCSV(bytes.NewReader(decoded),
		dataframe.WithDelimiter(delim),
		dataframe.WithLazyQuotes(true),
	)
	if df.Nrow() == 0 {
		return dataframe.DataFrame{}, pipelineerr.EmptyFile("reader.readDelimited", path)
	}
	return df, df.Error()
}

// decode transcodes raw bytes to UTF-8 per the canonical label C1 produced.
// UTF-8 input passes through unchanged; windows-1252 goes through
// x/text/encoding/charmap, the teacher's own decode path (previously
// hardcoded; now selected per-file).
func decode(raw []byte, canonicalEncoding string) ([]byte, error) {
	if canonicalEncoding != "windows-1252" {
		return raw, nil
	}
	reader := transform.NewReader(bytes.NewReader(raw), charmap.Windows1252.NewDecoder())
	return io.ReadAll(reader)
}

// sniffDelimiter tries each candidate against the first line (the header),
// accepting the first that yields >= 2 columns (§4.2). It reads up to
// sniffSampleLines lines, but only the first one decides; the remaining
// sample lines are not checked.
func sniffDelimiter(decoded []byte) (rune, error) {
	scanner := bufio.NewScanner(bytes.NewReader(decoded))
	var sample []string
	for scanner.Scan() && len(sample) < sniffSampleLines {
		sample = append(sample, scanner.Text())
	}
	if len(sample) == 0 {
		return 0, fmt.Errorf("reader: no lines to sniff delimiter from")
	}

	for _, cand := range delimiterCandidates {
		cols := strings.Count(sample[0], string(cand)) + 1
		if cols >= 2 {
			return cand, nil
		}
	}
	// Fall back to the Brazilian norm rather than failing outright — the
	// validator downstream will reject the file on missing columns if this
	// guess is wrong.
	return ';', nil
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}

func stripLeadingBOMBytes(b []byte) []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	if bytes.HasPrefix(b, bom) {
		return b[len(bom):]
	}
	return b
}
