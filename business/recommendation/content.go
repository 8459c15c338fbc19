package recommendation

import (
	"veloraMarket/domain"
)

// categoryWeight discounts category overlap relative to tag overlap: a
// shared category is a coarser signal than an exact tag match, but still
// strong enough to beat weak multi-tag overlap.
const categoryWeight = 0.75

// ComputeContentSignals scores candidates by tag and category overlap with
// the seed set. Each shared tag contributes tagFreq/maxTagFreq (how common
// the tag is among seeds, normalized against the most frequent seed tag);
// a shared category adds 0.75 * catFreq/maxCatFreq. The result is sparse:
// candidates with zero overlap are omitted, not reported as zero, and an
// empty seed or candidate set yields an empty map.
func ComputeContentSignals(
	seedProductIDs []string,
	candidates []string,
	metadataByID map[string]domain.ProductMetadata,
) map[string]float64 {
	if len(seedProductIDs) == 0 || len(candidates) == 0 {
		return map[string]float64{}
	}

	tagFrequency := make(map[string]int)
	categoryFrequency := make(map[string]int)
	seedSet := make(map[string]struct{}, len(seedProductIDs))

	for _, productID := range seedProductIDs {
		seedSet[productID] = struct{}{}

		meta, ok := metadataByID[productID]
		if !ok {
			continue
		}

		for _, tag := range meta.TagVector {
			tagFrequency[tag]++
		}

		if meta.CategoryID != nil {
			categoryFrequency[*meta.CategoryID]++
		}
	}

	maxTagFreq := maxFrequency(tagFrequency)
	maxCategoryFreq := maxFrequency(categoryFrequency)

	signals := make(map[string]float64)
	for _, candidateID := range candidates {
		if _, isSeed := seedSet[candidateID]; isSeed {
			continue
		}

		meta, ok := metadataByID[candidateID]
		if !ok {
			continue
		}

		score := 0.0
		for _, tag := range meta.TagVector {
			if freq := tagFrequency[tag]; freq > 0 {
				score += float64(freq) / float64(maxTagFreq)
			}
		}

		if meta.CategoryID != nil {
			if freq := categoryFrequency[*meta.CategoryID]; freq > 0 {
				score += categoryWeight * (float64(freq) / float64(maxCategoryFreq))
			}
		}

		if score > 0 {
			signals[candidateID] = round4(score)
		}
	}

	return signals
}

func maxFrequency(freq map[string]int) int {
	max := 1
	for _, count := range freq {
		if count > max {
			max = count
		}
	}
	return max
}
