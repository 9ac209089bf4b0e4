package fasta

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseSimple(t *testing.T) {
	input := ">seq1\nMKTA\n>seq2 desc\nGGTT\n"
	recs, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Header != "seq1" || recs[0].Sequence != "MKTA" {
		t.Fatalf("unexpected first record: %+v", recs[0])
	}
	if recs[1].Header != "seq2 desc" || recs[1].Sequence != "GGTT" {
		t.Fatalf("unexpected second record: %+v", recs[1])
	}
}

func TestParseJoinsAndTrimsLines(t *testing.T) {
	input := "junk before header\n>sp|P1|A_HUMAN x\r\n  MKT \r\nAAL\n\nQQ\n"
	recs, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].Header != "sp|P1|A_HUMAN x" {
		t.Fatalf("unexpected header %q", recs[0].Header)
	}
	if recs[0].Sequence != "MKTAALQQ" {
		t.Fatalf("unexpected sequence %q", recs[0].Sequence)
	}
}

func TestParseCountsEveryHeader(t *testing.T) {
	input := ">a\nMK\n>\n>b\n>c\nQQ"
	recs, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := len(recs), strings.Count(input, ">"); got != want {
		t.Fatalf("expected %d records, got %d", want, got)
	}
	if recs[1].Header != "" || recs[1].Sequence != "" {
		t.Fatalf("expected empty second record, got %+v", recs[1])
	}
	if recs[3].Sequence != "QQ" {
		t.Fatalf("final record not flushed: %+v", recs[3])
	}
}

func TestParseEmpty(t *testing.T) {
	for _, input := range []string{"", "MKTAAL\nQQ\n"} {
		recs, err := Parse(strings.NewReader(input))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(recs) != 0 {
			t.Fatalf("expected no records for %q, got %d", input, len(recs))
		}
	}
}

func TestWrapRoundTrip(t *testing.T) {
	seq := strings.Repeat("ACDEFGHIKLMNPQRSTVWY", 13) + "MK"
	wrapped := Wrap(seq, DefaultWrapWidth)
	for i, line := range strings.Split(wrapped, "\n") {
		if len(line) > DefaultWrapWidth {
			t.Fatalf("line %d longer than %d: %d", i, DefaultWrapWidth, len(line))
		}
	}
	if got := Unwrap(wrapped); got != seq {
		t.Fatalf("round trip mismatch: got %q", got)
	}
	if Wrap("MK", 80) != "MK" {
		t.Fatalf("short sequence should not be wrapped")
	}
	if Wrap(seq, 0) != seq {
		t.Fatalf("zero width should return input unchanged")
	}
}

func TestWriteParse(t *testing.T) {
	recs := []Record{{Header: "sp|P1|A", Sequence: strings.Repeat("M", 170)}, {Header: "empty"}}
	var buf bytes.Buffer
	if err := Write(&buf, recs, 60); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	got, err := Parse(&buf)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(got) != 2 || got[0].Sequence != recs[0].Sequence || got[1].Header != "empty" {
		t.Fatalf("unexpected records after write/parse: %+v", got)
	}
}
