package registryd

import (
	"strings"

	"github.com/gosimple/slug"
	"github.com/registradesk/registra/internal/record"
	"github.com/registradesk/registra/internal/registry"
)

// normalize folds case, accents, and spacing so "Dela Cruz" and
// "dela-cruz" compare equal.
func normalize(s string) string {
	return slug.Make(strings.TrimSpace(s))
}

// identityKey builds the normalized identity key for a record's identity
// fields, used both for matching and the uniqueness check on create.
func identityKey(t record.Type, identity map[string]string) string {
	parts := make([]string, 0, len(identity)+1)
	parts = append(parts, string(t))
	for _, name := range record.IdentityFields(t) {
		parts = append(parts, normalize(identity[name]))
	}
	return strings.Join(parts, "|")
}

// identityOf extracts a record's identity fields as strings.
func identityOf(t record.Type, f record.Fields) map[string]string {
	out := make(map[string]string)
	for _, name := range record.IdentityFields(t) {
		out[name] = f.String(name)
	}
	return out
}

// classify compares a target identity against candidate records.
// All identity fields equal (normalized) means an exact duplicate; an
// overlap of two or more fields is a similar record. The record named by
// excludeID is never matched against itself.
func classify(t record.Type, target map[string]string, candidates []record.Record, excludeID string) (bool, []registry.SimilarRecord) {
	names := record.IdentityFields(t)
	exact := false
	var similar []registry.SimilarRecord

	for _, cand := range candidates {
		if cand.ID == excludeID {
			continue
		}

		matches := 0
		for _, name := range names {
			if normalize(target[name]) != "" && normalize(target[name]) == normalize(cand.Fields.String(name)) {
				matches++
			}
		}

		switch {
		case matches == len(names):
			exact = true
		case matches < 2:
			continue
		}

		similar = append(similar, registry.SimilarRecord{
			ID:         cand.ID,
			RegistryNo: cand.RegistryNo,
			Identity:   identityOf(t, cand.Fields),
		})
	}

	return exact, similar
}
