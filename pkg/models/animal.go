package models

// AnimalRecord is the display-ready form of one taxon returned by an
// exploration query. Every provider response is mapped into this shape
// before deduplication and enrichment.
type AnimalRecord struct {
	ID             string       `json:"id"`                        // provider taxon id / species key
	DisplayName    string       `json:"display_name"`              // title-cased preferred name
	ScientificName string       `json:"scientific_name,omitempty"` // may be empty
	PhotoURL       string       `json:"photo_url"`                 // resolved image or placeholder
	TaxonomicClass string       `json:"taxonomic_class"`           // e.g. "Mammalia", or "unknown"
	Reproduction   Reproduction `json:"reproduction_mode"`
	Diet           Diet         `json:"diet_category"`
	Source         string       `json:"source"` // provider that produced the record
}

// UnknownClass is used when a provider does not report a taxonomic class.
const UnknownClass = "unknown"

type Reproduction string

const (
	Viviparous Reproduction = "viviparous"
	Oviparous  Reproduction = "oviparous"
	Variable   Reproduction = "variable"
)

type Diet string

const (
	Carnivore   Diet = "carnivore"
	Herbivore   Diet = "herbivore"
	Omnivore    Diet = "omnivore"
	Insectivore Diet = "insectivore"
	Piscivore   Diet = "piscivore"
	DietUnknown Diet = "unknown"
)

// Valid reports whether d is one of the known diet categories.
func (d Diet) Valid() bool {
	switch d {
	case Carnivore, Herbivore, Omnivore, Insectivore, Piscivore, DietUnknown:
		return true
	}
	return false
}

type RegionHotspot struct {
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
