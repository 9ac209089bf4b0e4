package fasta

// Package fasta contains minimal helpers to read and write FASTA formatted
// data as streamed by UniProt. Parsing is positional and performs no
// alphabet validation.

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// DefaultWrapWidth is the column width used when displaying or writing sequences.
const DefaultWrapWidth = 80

// Record represents a single FASTA record (header and sequence).
type Record struct {
	Header   string
	Sequence string
}

// Parse reads FASTA records from r. Lines beginning with '>' open a new
// record; every other line is trimmed and appended to the open record's
// sequence. Lines before the first header are ignored. One record is
// returned per header line, even when the header or sequence is empty.
func Parse(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []Record
	var header string
	var seq strings.Builder
	open := false
	flush := func() {
		if open {
			records = append(records, Record{Header: header, Sequence: seq.String()})
		}
	}
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			flush()
			header = strings.TrimRight(line[1:], "\r")
			seq.Reset()
			open = true
			continue
		}
		if open {
			seq.WriteString(strings.TrimSpace(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read fasta: %w", err)
	}
	flush()
	return records, nil
}

// Wrap splits seq into lines of at most width characters joined by '\n'.
// A width below 1 returns seq unchanged.
func Wrap(seq string, width int) string {
	if width < 1 || len(seq) <= width {
		return seq
	}
	var b strings.Builder
	b.Grow(len(seq) + len(seq)/width)
	for i := 0; i < len(seq); i += width {
		end := i + width
		if end > len(seq) {
			end = len(seq)
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(seq[i:end])
	}
	return b.String()
}

// Unwrap removes line breaks inserted by Wrap.
func Unwrap(wrapped string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(wrapped)
}

// Write emits records as FASTA with sequences wrapped at width columns.
func Write(w io.Writer, records []Record, width int) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := fmt.Fprintf(bw, ">%s\n", rec.Header); err != nil {
			return err
		}
		if rec.Sequence == "" {
			continue
		}
		if _, err := fmt.Fprintf(bw, "%s\n", Wrap(rec.Sequence, width)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
