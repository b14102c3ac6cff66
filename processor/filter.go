package processor

import "slack-file-cleaner/models"

// Matches reports whether f meets any of the configured criteria. The age
// window is applied by the listing request, so every fetched file matches it.
func Matches(f models.FileRecord, spec models.FilterSpec) bool {
	if spec.HasMaxAge {
		return true
	}
	if spec.HasType(f.Filetype) {
		return true
	}
	return spec.HasMinSize && f.Size >= spec.MinSize
}

// Select returns the files to delete, each at most once
func Select(files []models.FileRecord, spec models.FilterSpec) []models.FileRecord {
	seen := make(map[string]struct{}, len(files))
	var matches []models.FileRecord
	for _, f := range files {
		if !Matches(f, spec) {
			continue
		}
		if _, dup := seen[f.ID]; dup {
			continue
		}
		seen[f.ID] = struct{}{}
		matches = append(matches, f)
	}
	return matches
}
