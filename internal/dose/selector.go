package dose

import (
	"fmt"

	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/bank"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/irt"
)

// infoTieEpsilon treats Fisher information values this close as equal, in
// which case the smaller item number wins. Keeps selection deterministic
// across architectures.
const infoTieEpsilon = 1e-9

// #region select

// selectNext returns the unused item of the estimator's trait that maximizes
// Fisher information at the trait's current EAP. With no items administered
// the EAP is 0, so the starting item is fully determined by the bank.
func selectNext(b *bank.Bank, te *traitEstimator) (int, error) {
	avail := te.availableItems()
	if len(avail) == 0 {
		return 0, fmt.Errorf("%w: trait %s exhausted", ErrNoItemsAvailable, te.trait)
	}

	theta := te.theta()
	best, bestInfo := 0, 0.0
	for _, num := range avail {
		it, ok := b.Item(num)
		if !ok {
			return 0, fmt.Errorf("item %d missing from bank", num)
		}
		info, err := irt.FisherInformation(it, theta)
		if err != nil {
			return 0, err
		}
		// Ascending iteration: only a strictly better item (beyond the tie
		// epsilon) displaces an earlier, smaller-numbered one.
		if best == 0 || info > bestInfo+infoTieEpsilon {
			best, bestInfo = num, info
		}
	}
	return best, nil
}

// #endregion select
