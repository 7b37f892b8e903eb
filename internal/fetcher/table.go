package fetcher

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
)

// TableOptions configures the delimited-text reader.
type TableOptions struct {
	Delimiter string // default "\t"
	// Charset is an IANA charset name ("gbk", "windows-1252", ...) for
	// sources that predate UTF-8. Empty means UTF-8.
	Charset string
}

// ReadTable reads a delimited text file the way curated spreadsheet exports
// need to be read: no quote handling at all, and every row normalized to the
// header's column count. Exports from desktop tools routinely carry stray
// delimiters and unbalanced quotes that a strict CSV parser chokes on.
func ReadTable(path string, opts TableOptions) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "table: open %s", path)
	}
	defer f.Close()

	var r io.Reader = f
	if opts.Charset != "" {
		enc, err := htmlindex.Get(opts.Charset)
		if err != nil {
			return nil, eris.Wrapf(err, "table: unsupported charset %q", opts.Charset)
		}
		r = enc.NewDecoder().Reader(f)
	}

	delim := opts.Delimiter
	if delim == "" {
		delim = "\t"
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var rows [][]string
	width := 0
	ragged := 0
	for scanner.Scan() {
		fields := strings.Split(strings.TrimRight(scanner.Text(), "\r\n"), delim)
		if width == 0 {
			width = len(fields)
			rows = append(rows, fields)
			continue
		}
		switch {
		case len(fields) > width:
			ragged++
			fields = fields[:width]
		case len(fields) < width:
			ragged++
			for len(fields) < width {
				fields = append(fields, "")
			}
		}
		rows = append(rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "table: read %s", path)
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("table: %s is empty", path)
	}

	if ragged > 0 {
		zap.L().Warn("table: normalized ragged rows",
			zap.String("file", path),
			zap.Int("rows", ragged),
		)
	}
	return rows, nil
}
