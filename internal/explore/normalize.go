package explore

import (
	"errors"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"biodex/internal/provider"
	"biodex/pkg/models"
)

// Rejection reasons. A rejected item is dropped, never fatal.
var (
	ErrNoTaxon = errors.New("missing taxon")
	ErrNoName  = errors.New("missing name")
	ErrNoPhoto = errors.New("missing photo")
)

// RejectReason labels a normalizer error for diagnostics.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, ErrNoTaxon):
		return "no_taxon"
	case errors.Is(err, ErrNoName):
		return "no_name"
	case errors.Is(err, ErrNoPhoto):
		return "no_photo"
	}
	return "other"
}

// Normalizer maps raw provider items into records. It is not safe for
// concurrent use.
type Normalizer struct {
	Mapping FieldMapping
	Source  string
	title   cases.Caser
}

func NewNormalizer(m FieldMapping, source string) *Normalizer {
	return &Normalizer{Mapping: m, Source: source, title: cases.Title(language.Und)}
}

func (n *Normalizer) Normalize(item provider.RawItem) (models.AnimalRecord, error) {
	m := n.Mapping

	taxon := item
	if m.Taxon != "" {
		t, ok := item.Object(m.Taxon)
		if !ok {
			return models.AnimalRecord{}, ErrNoTaxon
		}
		taxon = t
	}

	name := taxon.First(m.Names...)
	if name == "" {
		return models.AnimalRecord{}, ErrNoName
	}

	photo := taxon.First(m.Photos...)
	if photo == "" && m.RequirePhoto {
		return models.AnimalRecord{}, ErrNoPhoto
	}

	class := taxon.First(m.Class...)
	if class == "" {
		class = models.UnknownClass
	}

	return models.AnimalRecord{
		ID:             taxon.ID(m.ID),
		DisplayName:    n.title.String(name),
		ScientificName: taxon.First(m.Scientific...),
		PhotoURL:       photo,
		TaxonomicClass: class,
		Source:         n.Source,
	}, nil
}
