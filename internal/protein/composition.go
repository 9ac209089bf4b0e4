package protein

import "math"

// AminoOrder is the canonical order of the 20 standard amino acids.
const AminoOrder = "ACDEFGHIKLMNPQRSTVWY"

// Composition holds the percentage of each residue in AminoOrder.
type Composition [len(AminoOrder)]float64

var aminoIndex = func() [256]int8 {
	var idx [256]int8
	for i := range idx {
		idx[i] = -1
	}
	for i := 0; i < len(AminoOrder); i++ {
		idx[AminoOrder[i]] = int8(i)
	}
	return idx
}()

// Compose counts canonical residues in seq as a percentage of len(seq).
// Non-canonical letters only count towards the denominator. An empty
// sequence yields a zero vector.
func Compose(seq string) Composition {
	var c Composition
	if len(seq) == 0 {
		return c
	}
	var counts [len(AminoOrder)]int
	for i := 0; i < len(seq); i++ {
		if j := aminoIndex[seq[i]]; j >= 0 {
			counts[j]++
		}
	}
	n := float64(len(seq))
	for i, k := range counts {
		c[i] = 100 * float64(k) / n
	}
	return c
}

// Composition returns the composition of the record's sequence.
func (r Record) Composition() Composition {
	return Compose(r.Sequence)
}

// Labels returns the one-letter code of every slot, in order.
func (c Composition) Labels() []string {
	labels := make([]string, len(AminoOrder))
	for i := range labels {
		labels[i] = AminoOrder[i : i+1]
	}
	return labels
}

// Percent returns the value for a single residue letter, or 0 when the
// letter is not one of the canonical 20.
func (c Composition) Percent(residue byte) float64 {
	if j := aminoIndex[residue]; j >= 0 {
		return c[j]
	}
	return 0
}

// Total is the sum of all percentages; below 100 when the sequence holds
// ambiguity codes. Rounding in the individual slots can push the float sum
// past 100, so it is capped there.
func (c Composition) Total() float64 {
	var sum float64
	for _, v := range c {
		sum += v
	}
	return math.Min(sum, 100)
}
