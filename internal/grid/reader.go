package grid

// reader.go turns an uploaded CSV byte stream into a Grid.
//
// The pipeline is:
//  1. BOMSkippingReader drops a leading UTF-8 BOM written by Windows tools
//  2. The stream is capped at ReadOptions.MaxSize
//  3. Bytes are decoded to UTF-8 according to ReadOptions.Charset
//  4. encoding/csv parses records, tolerating ragged rows and stray quotes
//
// Mis-decoded text that is already valid UTF-8 (mojibake such as "Ã©") is
// left untouched here; detecting and repairing it is the job of package
// textfix, which works over mapped cells.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	// ErrFileTooLarge is returned when input exceeds ReadOptions.MaxSize.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyFile is returned when the input contains no records.
	ErrEmptyFile = errors.New("empty file")
)

// Charset names accepted by ReadOptions.
const (
	CharsetAuto        = "auto"
	CharsetUTF8        = "utf-8"
	CharsetWindows1252 = "windows-1252"
	CharsetLatin1      = "iso-8859-1"
)

// DefaultMaxSize is the default input limit (10MB).
const DefaultMaxSize int64 = 10 * 1024 * 1024

// ReadOptions controls CSV ingestion.
type ReadOptions struct {
	// MaxSize is the maximum number of bytes accepted (0 = DefaultMaxSize).
	MaxSize int64

	// Charset is one of the Charset* constants ("" = CharsetAuto).
	Charset string

	// Comma is the field delimiter (0 = ',').
	Comma rune
}

// Read parses CSV from r into a normalized Grid.
func Read(r io.Reader, opts ReadOptions) (Grid, error) {
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	data, err := io.ReadAll(io.LimitReader(NewBOMSkippingReader(r), maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, maxSize)
	}

	data, err = decode(data, opts.Charset)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	return New(records), nil
}

// decode converts data to UTF-8 according to charset.
func decode(data []byte, charset string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", CharsetAuto:
		if utf8.Valid(data) {
			return data, nil
		}
		return decodeWith(charmap.Windows1252, data)
	case CharsetUTF8, "utf8":
		return data, nil
	case CharsetWindows1252, "cp1252":
		return decodeWith(charmap.Windows1252, data)
	case CharsetLatin1, "latin1", "latin-1":
		return decodeWith(charmap.ISO8859_1, data)
	default:
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}
}

func decodeWith(cm *charmap.Charmap, data []byte) ([]byte, error) {
	out, err := cm.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("encoding error: %w", err)
	}
	return out, nil
}

// Write encodes g as CSV.
func Write(w io.Writer, g Grid) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(g); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// BOMSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
// The UTF-8 BOM is 0xEF 0xBB 0xBF and is commonly added by Windows programs.
type BOMSkippingReader struct {
	reader  io.Reader
	checked bool
	pending []byte
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: r}
}

// Read implements io.Reader. On the first read, it checks for and skips the BOM.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true

		var buf [3]byte
		n, err := io.ReadFull(r.reader, buf[:])
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if err != nil && err != io.EOF {
			return 0, err
		}

		if n == 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
			r.pending = nil
		} else {
			r.pending = append([]byte(nil), buf[:n]...)
		}

		if err == io.EOF && len(r.pending) == 0 {
			return 0, io.EOF
		}
	}

	if len(r.pending) > 0 {
		n := copy(p, r.pending)
		r.pending = r.pending[n:]
		return n, nil
	}

	return r.reader.Read(p)
}
