package reconciliation

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shortalex12333/Image-processing-sub000/model"
	"github.com/shortalex12333/Image-processing-sub000/repository"
)

// fuzzyPartThreshold and fuzzyDescriptionThreshold are the minimum
// ratio/token-sort-ratio scores (0-100) a candidate must clear to be
// considered a match at all.
const (
	fuzzyPartThreshold        = 70.0
	fuzzyDescriptionThreshold = 70.0
	maxCandidates             = 5
)

// MatchParts runs the three part-matching strategies — exact part
// number, fuzzy part number, fuzzy description — against the tenant's
// catalog, merges and deduplicates the results by part ID, and returns
// up to 5 ranked candidates.
func MatchParts(ctx context.Context, catalog repository.Catalog, tenantID string, line model.ExtractedLine) ([]model.SuggestedMatch, error) {
	parts, err := catalog.ListParts(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	byPart := make(map[string]model.SuggestedMatch)

	for _, p := range parts {
		if line.PartNumber != "" && strings.EqualFold(strings.TrimSpace(p.PartNumber), strings.TrimSpace(line.PartNumber)) {
			addIfBetter(byPart, p, 1.0, model.MatchExactPartNumber)
			continue
		}
		if line.PartNumber != "" {
			score := ratio(p.PartNumber, line.PartNumber)
			if score >= fuzzyPartThreshold {
				addIfBetter(byPart, p, score/100.0, model.MatchFuzzyPartNumber)
			}
		}
		if line.Description != "" {
			score := tokenSortRatio(p.DisplayName, line.Description)
			if score >= fuzzyDescriptionThreshold {
				addIfBetter(byPart, p, score/100.0, model.MatchFuzzyDescription)
			}
		}
	}

	candidates := make([]model.SuggestedMatch, 0, len(byPart))
	for _, m := range byPart {
		candidates = append(candidates, m)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].PartNumber < candidates[j].PartNumber
	})

	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return candidates, nil
}

func addIfBetter(byPart map[string]model.SuggestedMatch, p model.Part, confidence float64, reason model.MatchReason) {
	existing, ok := byPart[p.ID]
	if ok && existing.Confidence >= confidence {
		return
	}
	byPart[p.ID] = model.SuggestedMatch{
		PartID:          p.ID,
		PartNumber:      p.PartNumber,
		DisplayName:     p.DisplayName,
		Manufacturer:    p.Manufacturer,
		Confidence:      confidence,
		MatchReason:     reason,
		StockOnHand:     p.StockOnHand,
		StorageLocation: p.StorageLocation,
	}
}

// ToDecimal is a small helper exposed for the ranker, which works with
// decimal quantities from shopping-list/order records.
func ToDecimal(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
