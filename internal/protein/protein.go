// Package protein turns raw UniProt FASTA records into protein records and
// derives per-record metrics such as amino-acid composition.
package protein

import (
	"math"
	"strconv"
	"strings"

	"proteinstruct/internal/fasta"
)

// Unknown is stored in header-derived fields that could not be extracted.
const Unknown = "unknown"

// DefaultMinLength is the shortest sequence kept when building records.
const DefaultMinLength = 20

// Record is a reviewed protein with the fields extracted from its UniProt header.
type Record struct {
	Header      string `json:"header"`
	Accession   string `json:"uniprot_id"`
	DisplayName string `json:"protein_name"`
	Organism    string `json:"organism"`
	GeneName    string `json:"gene_name"`
	Sequence    string `json:"sequence"`
	Length      int    `json:"length"`
}

// Header holds the fields extracted from one FASTA header line.
type Header struct {
	Accession   string
	DisplayName string
	Organism    string
	GeneName    string
}

// ParseHeader splits a UniProt header on its literal markers. The first
// occurrence of each marker wins and a missing marker yields Unknown.
//
//	sp|P12345|NAME_HUMAN Name OS=Homo sapiens OX=9606 GN=NAME PE=1 SV=1
func ParseHeader(header string) Header {
	h := Header{
		Accession:   Unknown,
		DisplayName: header,
		Organism:    Unknown,
		GeneName:    Unknown,
	}

	if parts := strings.Split(header, "|"); len(parts) >= 3 {
		h.Accession = parts[1]
	}
	if i := strings.Index(header, " OS="); i >= 0 {
		h.DisplayName = header[:i]
	}
	if _, rest, ok := strings.Cut(header, "OS="); ok {
		org, _, _ := strings.Cut(rest, "OX=")
		h.Organism = strings.TrimSpace(org)
	}
	if _, rest, ok := strings.Cut(header, "GN="); ok {
		if fields := strings.Fields(rest); len(fields) > 0 {
			h.GeneName = fields[0]
		}
	}
	return h
}

// NewRecord builds a Record from a raw FASTA record.
func NewRecord(raw fasta.Record) Record {
	h := ParseHeader(raw.Header)
	return Record{
		Header:      raw.Header,
		Accession:   h.Accession,
		DisplayName: h.DisplayName,
		Organism:    h.Organism,
		GeneName:    h.GeneName,
		Sequence:    raw.Sequence,
		Length:      len(raw.Sequence),
	}
}

// FromFasta converts raw records, dropping sequences shorter than minLength
// and keeping at most maxCount of the survivors. maxCount <= 0 keeps all.
func FromFasta(raws []fasta.Record, minLength, maxCount int) []Record {
	out := make([]Record, 0, len(raws))
	for _, raw := range raws {
		if maxCount > 0 && len(out) >= maxCount {
			break
		}
		if len(raw.Sequence) < minLength {
			continue
		}
		out = append(out, NewRecord(raw))
	}
	return out
}

// Label is the one-line description used by pickers.
func (r Record) Label() string {
	return r.Accession + " | " + r.DisplayName + " | " + strconv.Itoa(r.Length) + " aa"
}

// Summary aggregates a fetched collection for the overview.
type Summary struct {
	Total         int     `json:"total"`
	AverageLength float64 `json:"average_length"`
	MaxLength     int     `json:"max_length"`
}

// Summarize computes totals over records. The average is rounded to one decimal.
func Summarize(records []Record) Summary {
	var s Summary
	if len(records) == 0 {
		return s
	}
	sum := 0
	for _, r := range records {
		sum += r.Length
		if r.Length > s.MaxLength {
			s.MaxLength = r.Length
		}
	}
	s.Total = len(records)
	s.AverageLength = math.Round(float64(sum)/float64(len(records))*10) / 10
	return s
}

// Find returns the first record with the given accession.
func Find(records []Record, accession string) (Record, bool) {
	for _, r := range records {
		if r.Accession == accession {
			return r, true
		}
	}
	return Record{}, false
}

