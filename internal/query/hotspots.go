package query

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"biodex/pkg/models"
)

var hotspots = []models.RegionHotspot{
	{Name: "Oceano Atlântico", Latitude: 0.0, Longitude: -25.0},
	{Name: "Oceano Pacífico", Latitude: -15.0, Longitude: -140.0},
	{Name: "Oceano Índico", Latitude: -20.0, Longitude: 70.0},
	{Name: "Oceano Ártico", Latitude: 85.0, Longitude: 0.0},
	{Name: "Amazónia", Latitude: -3.4653, Longitude: -62.2159},
	{Name: "Serengeti", Latitude: -2.3333, Longitude: 34.8333},
	{Name: "Austrália", Latitude: -25.2744, Longitude: 133.7751},
	{Name: "Portugal", Latitude: 39.5, Longitude: -8.0},
	{Name: "Antártida", Latitude: -75.250973, Longitude: -0.071389},
	{Name: "Arquipélago Galápagos", Latitude: -0.9538, Longitude: -90.9656},
}

func init() {
	for i := range hotspots {
		hotspots[i].Slug = Slugify(hotspots[i].Name)
	}
}

// Hotspots returns a copy of the static hotspot table.
func Hotspots() []models.RegionHotspot {
	out := make([]models.RegionHotspot, len(hotspots))
	copy(out, hotspots)
	return out
}

// LookupHotspot matches by exact name first, then by slug.
func LookupHotspot(name string) (models.RegionHotspot, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.RegionHotspot{}, false
	}
	for _, h := range hotspots {
		if h.Name == name {
			return h, true
		}
	}
	slug := Slugify(name)
	for _, h := range hotspots {
		if h.Slug == slug {
			return h, true
		}
	}
	return models.RegionHotspot{}, false
}

// Slugify lowercases s, strips diacritics and joins words with '-'.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}

	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(plain) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevDash = false
			continue
		}
		if !prevDash && b.Len() > 0 {
			b.WriteByte('-')
			prevDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
