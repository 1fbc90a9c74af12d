// Package dedupe collapses candidates into a unique set by fuzzy identity:
// normalized phone first, case-folded business name second.
package dedupe

import (
	"context"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/sells-group/leadgen-cli/internal/model"
)

var foldCaser = cases.Fold()

// NormalizePhone strips everything but digits. An absent or symbol-only
// phone normalizes to the empty string, which never matches anything.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeName case-folds a business name and collapses interior
// whitespace so "Cafe  A" and "cafe a" share one identity key.
func NormalizeName(name string) string {
	folded := foldCaser.String(strings.TrimSpace(name))
	return strings.Join(strings.FieldsFunc(folded, unicode.IsSpace), " ")
}

// Batch removes duplicates within a single batch in one linear pass.
// A candidate is a duplicate when its non-empty normalized phone was already
// seen, or its normalized name was. First occurrence wins and insertion
// order is preserved, so running Batch on its own output is a no-op.
func Batch(candidates []model.Candidate) []model.Candidate {
	seenPhones := make(map[string]struct{}, len(candidates))
	seenNames := make(map[string]struct{}, len(candidates))

	unique := make([]model.Candidate, 0, len(candidates))
	for _, c := range candidates {
		phone := NormalizePhone(c.Phone)
		name := NormalizeName(c.BusinessName)

		if phone != "" {
			if _, ok := seenPhones[phone]; ok {
				zap.L().Debug("dedupe: duplicate by phone",
					zap.String("business", c.BusinessName),
					zap.String("source", string(c.Source)),
				)
				continue
			}
		}
		if _, ok := seenNames[name]; ok {
			zap.L().Debug("dedupe: duplicate by name",
				zap.String("business", c.BusinessName),
				zap.String("source", string(c.Source)),
			)
			continue
		}

		if phone != "" {
			seenPhones[phone] = struct{}{}
		}
		seenNames[name] = struct{}{}
		unique = append(unique, c)
	}

	if removed := len(candidates) - len(unique); removed > 0 {
		zap.L().Info("dedupe: batch pass complete",
			zap.Int("scraped", len(candidates)),
			zap.Int("unique", len(unique)),
			zap.Int("duplicates", removed),
		)
	}
	return unique
}

// ExistenceChecker is the slice of the lead store dedupe needs: whether any
// persisted record matches the given normalized phone or business name.
type ExistenceChecker interface {
	ExistsMatching(ctx context.Context, phone, name string) (bool, error)
}

// ExistsInStore checks one surviving candidate against the persistent store
// using the same two-key policy as Batch. This is a per-candidate round trip
// and the dominant latency cost of a run when the store is available.
func ExistsInStore(ctx context.Context, checker ExistenceChecker, c model.Candidate) (bool, error) {
	return checker.ExistsMatching(ctx, NormalizePhone(c.Phone), NormalizeName(c.BusinessName))
}
