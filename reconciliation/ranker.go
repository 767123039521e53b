package reconciliation

import (
	"time"

	"github.com/shortalex12333/Image-processing-sub000/model"
)

const alternativeConfidenceFloor = 0.6
const maxAlternatives = 3

// Rank applies the Suggestion Ranker boost rules to the top fuzzy-match
// candidate and attaches up to 3 alternatives (confidence >= 0.6,
// excluding the primary) per spec §4.4.
func Rank(candidates []model.SuggestedMatch, now time.Time) *model.SuggestedMatch {
	if len(candidates) == 0 {
		return nil
	}

	primary := candidates[0]

	if primary.Confidence < 1.0 {
		boost := 0.0

		if primary.ShoppingList != nil {
			switch {
			case primary.ShoppingList.FulfillmentPct >= 100:
				boost += 0.15
			case primary.ShoppingList.FulfillmentPct >= 50:
				boost += 0.10
			default:
				boost += 0.05
			}
			primary.MatchReason = model.MatchOnShoppingList
		}

		if primary.RecentOrder != nil {
			age := now.Sub(primary.RecentOrder.OrderedAt)
			switch {
			case age <= 7*24*time.Hour:
				boost += 0.10
			case age <= 30*24*time.Hour:
				boost += 0.05
			default:
				boost += 0.02
			}
		}

		primary.Confidence += boost
		if primary.Confidence > 1.0 {
			primary.Confidence = 1.0
		}
	}

	var alternatives []model.SuggestedMatch
	for _, c := range candidates[1:] {
		if c.Confidence >= alternativeConfidenceFloor {
			alternatives = append(alternatives, c)
		}
		if len(alternatives) == maxAlternatives {
			break
		}
	}
	primary.Alternatives = alternatives

	return &primary
}
