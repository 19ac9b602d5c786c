package explore

import "biodex/pkg/models"

// Dedupe keeps the first record for each display name, in input order.
// Names are compared exactly: case and diacritics matter.
func Dedupe(records []models.AnimalRecord) []models.AnimalRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]models.AnimalRecord, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.DisplayName]; ok {
			continue
		}
		seen[r.DisplayName] = struct{}{}
		out = append(out, r)
	}
	return out
}
