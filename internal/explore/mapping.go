package explore

// FieldMapping says where a provider keeps the fields of a record. Paths
// are dotted and relative to the taxon object; an empty Taxon means the
// item itself is the taxon.
type FieldMapping struct {
	Taxon        string
	Names        []string // preferred first
	Scientific   []string
	Class        []string
	Photos       []string
	ID           string
	RequirePhoto bool
}

var (
	// iNaturalist /v1/observations
	INaturalistObservations = FieldMapping{
		Taxon:        "taxon",
		Names:        []string{"preferred_common_name", "english_common_name", "name"},
		Scientific:   []string{"name"},
		Class:        []string{"iconic_taxon_name"},
		Photos:       []string{"default_photo.medium_url", "default_photo.url"},
		ID:           "id",
		RequirePhoto: true,
	}

	// iNaturalist /v1/taxa
	INaturalistTaxa = FieldMapping{
		Names:        []string{"preferred_common_name", "english_common_name", "name"},
		Scientific:   []string{"name"},
		Class:        []string{"iconic_taxon_name"},
		Photos:       []string{"default_photo.medium_url", "default_photo.url"},
		ID:           "id",
		RequirePhoto: true,
	}

	// GBIF /v1/species/search carries no photos; the image resolver fills them.
	GBIFSpecies = FieldMapping{
		Names:      []string{"vernacularName", "canonicalName", "scientificName"},
		Scientific: []string{"canonicalName", "scientificName"},
		Class:      []string{"class"},
		ID:         "key",
	}
)

// MappingFor returns the mapping for a provider name.
func MappingFor(provider string) (FieldMapping, bool) {
	switch provider {
	case "inaturalist":
		return INaturalistObservations, true
	case "inaturalist_taxa":
		return INaturalistTaxa, true
	case "gbif":
		return GBIFSpecies, true
	}
	return FieldMapping{}, false
}
