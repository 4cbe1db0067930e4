package sandbox

import (
	"time"

	"paperbroker/pkg/common"
)

// ContractResolver maps a continuous future to the concrete dated contract
// that is front at the given simulated time. An order on a continuous future
// is rewritten to the resolved contract before it rests, so every fill and
// position is always against a real contract.
type ContractResolver interface {
	ResolveContract(root string, asOf time.Time) (common.Asset, error)
}
