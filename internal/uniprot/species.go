package uniprot

import (
	"errors"
	"strings"
)

// ErrUnknownSpecies is returned for names outside the proteome table.
var ErrUnknownSpecies = errors.New("unknown species")

// Species is a supported organism mapped to its UniProt reference proteome.
type Species struct {
	Name       string `json:"name"`
	ProteomeID string `json:"proteome_id"`
}

var species = []Species{
	{Name: "Human", ProteomeID: "UP000005640"},
	{Name: "Mouse", ProteomeID: "UP000000589"},
	{Name: "Fruit Fly", ProteomeID: "UP000000803"},
	{Name: "E. coli", ProteomeID: "UP000000625"},
	{Name: "Yeast", ProteomeID: "UP000002311"},
}

// AllSpecies lists the supported species in display order.
func AllSpecies() []Species {
	out := make([]Species, len(species))
	copy(out, species)
	return out
}

// ParseSpecies looks a species up by display name, ignoring case.
func ParseSpecies(name string) (Species, error) {
	name = strings.TrimSpace(name)
	for _, s := range species {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return Species{}, ErrUnknownSpecies
}

// SpeciesNames returns the display names in order.
func SpeciesNames() []string {
	names := make([]string, len(species))
	for i, s := range species {
		names[i] = s.Name
	}
	return names
}
