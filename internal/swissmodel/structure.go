package swissmodel

import (
	"bufio"
	"sort"
	"strings"
)

// aminoThreeToOne maps residue names in ATOM records to one-letter codes.
var aminoThreeToOne = map[string]byte{
	"ALA": 'A', "ARG": 'R', "ASN": 'N', "ASP": 'D', "CYS": 'C',
	"GLU": 'E', "GLN": 'Q', "GLY": 'G', "HIS": 'H', "ILE": 'I',
	"LEU": 'L', "LYS": 'K', "MET": 'M', "PHE": 'F', "PRO": 'P',
	"SER": 'S', "THR": 'T', "TRP": 'W', "TYR": 'Y', "VAL": 'V',
	"SEC": 'U', "PYL": 'O',
}

// Structure is a downloaded model together with a summary of its ATOM records.
type Structure struct {
	Accession string `json:"accession"`
	PDB       string `json:"-"`
	Atoms     int    `json:"atoms"`
	Residues  int    `json:"residues"`
	// Chains lists chain identifiers in order of first appearance.
	Chains []string `json:"chains"`
	// Sequences holds the one-letter residue sequence per chain; unknown
	// residue names are written as 'X'.
	Sequences map[string]string `json:"sequences"`
}

// ParseStructure summarises the ATOM records of a PDB text. Columns follow
// the fixed PDB layout: residue name 18-20, chain 22, residue number 23-26
// with insertion code 27.
func ParseStructure(accession, text string) *Structure {
	s := &Structure{Accession: accession, PDB: text, Sequences: map[string]string{}}
	seqs := map[string]*strings.Builder{}
	last := map[string]string{}

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "ATOM") || len(line) < 27 {
			continue
		}
		s.Atoms++
		chain := strings.TrimSpace(line[21:22])
		if chain == "" {
			chain = "_"
		}
		b, ok := seqs[chain]
		if !ok {
			b = &strings.Builder{}
			seqs[chain] = b
			s.Chains = append(s.Chains, chain)
		}
		resID := line[22:27]
		if last[chain] == resID {
			continue
		}
		last[chain] = resID
		s.Residues++
		if aa, ok := aminoThreeToOne[strings.TrimSpace(line[17:20])]; ok {
			b.WriteByte(aa)
		} else {
			b.WriteByte('X')
		}
	}
	for chain, b := range seqs {
		s.Sequences[chain] = b.String()
	}
	return s
}

// ChainIDs returns the chain identifiers sorted alphabetically.
func (s *Structure) ChainIDs() []string {
	ids := append([]string(nil), s.Chains...)
	sort.Strings(ids)
	return ids
}
