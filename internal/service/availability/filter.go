package availability

import "github.com/mamadbah2/fishtrace/internal/domain/models"

// VisibleCatalog drops every fish whose name appears in disabled. Matching is
// case-sensitive.
func VisibleCatalog(catalog []models.CatalogFish, disabled []string) []models.CatalogFish {
	set := disabledSet(disabled)

	out := make([]models.CatalogFish, 0, len(catalog))
	for _, fish := range catalog {
		if _, off := set[fish.Name]; off {
			continue
		}
		out = append(out, fish)
	}
	return out
}

// AnnotateCatalog keeps every fish and marks the disabled ones.
func AnnotateCatalog(catalog []models.CatalogFish, disabled []string) []models.AnnotatedFish {
	set := disabledSet(disabled)

	out := make([]models.AnnotatedFish, 0, len(catalog))
	for _, fish := range catalog {
		_, off := set[fish.Name]
		out = append(out, models.AnnotatedFish{CatalogFish: fish, Disabled: off})
	}
	return out
}

// VisibleStock drops disabled fish from a per-vendor view.
func VisibleStock(entries []models.NormalizedStockEntry, disabled []string) []models.NormalizedStockEntry {
	set := disabledSet(disabled)

	out := make([]models.NormalizedStockEntry, 0, len(entries))
	for _, entry := range entries {
		if _, off := set[entry.Name]; off {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// MarkOrphans flags entries whose fish is missing from the catalog.
func MarkOrphans(entries []models.NormalizedStockEntry, catalog []models.CatalogFish) []models.NormalizedStockEntry {
	known := make(map[string]struct{}, len(catalog))
	for _, fish := range catalog {
		known[fish.Name] = struct{}{}
	}

	out := make([]models.NormalizedStockEntry, len(entries))
	for i, entry := range entries {
		_, ok := known[entry.Name]
		entry.Orphaned = !ok
		out[i] = entry
	}
	return out
}

// IsDisabled reports whether name is in the disabled list.
func IsDisabled(name string, disabled []string) bool {
	for _, d := range disabled {
		if d == name {
			return true
		}
	}
	return false
}

func disabledSet(disabled []string) map[string]struct{} {
	set := make(map[string]struct{}, len(disabled))
	for _, name := range disabled {
		set[name] = struct{}{}
	}
	return set
}
