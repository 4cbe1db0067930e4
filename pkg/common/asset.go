package common

import (
	"fmt"
	"time"

	"paperbroker/pkg/utility/fixed"
)

type AssetKind uint8

// AssetKind is a closed set. Every switch over it in the margin and
// valuation code must list all kinds explicitly, so a new kind fails to
// compile until it has a margin and a valuation rule.
const (
	AssetStock AssetKind = iota
	AssetOption
	AssetFuture
	AssetContinuousFuture
	AssetCrypto
	AssetForex
)

func (k AssetKind) String() string {
	switch k {
	case AssetStock:
		return "stock"
	case AssetOption:
		return "option"
	case AssetFuture:
		return "future"
	case AssetContinuousFuture:
		return "continuous_future"
	case AssetCrypto:
		return "crypto"
	case AssetForex:
		return "forex"
	default:
		return fmt.Sprintf("asset_kind(%d)", uint8(k))
	}
}

type OptionRight uint8

const (
	RightNone OptionRight = iota
	RightCall
	RightPut
)

// Asset describes one tradable instrument. It is an immutable value; the
// ledger keys positions by Symbol.
type Asset struct {
	Symbol     string      `json:"symbol"`
	Kind       AssetKind   `json:"kind"`
	Multiplier fixed.Point `json:"multiplier"`

	// Option fields.
	Strike     fixed.Point `json:"strike,omitempty"`
	Expiration time.Time   `json:"expiration,omitempty"`
	Right      OptionRight `json:"right,omitempty"`

	// Root symbol for futures and continuous futures. Margin rates are keyed
	// by root, and a continuous future resolves to a concrete dated contract
	// through this root.
	UnderlyingRoot string `json:"underlying_root,omitempty"`
}

func (a Asset) Validate() error {
	if a.Symbol == "" {
		return fmt.Errorf("asset: symbol is empty")
	}
	if !a.Multiplier.IsPos() {
		return fmt.Errorf("asset %s: multiplier must be positive, got %s", a.Symbol, a.Multiplier)
	}

	switch a.Kind {
	case AssetOption:
		if !a.Strike.IsPos() {
			return fmt.Errorf("asset %s: option strike must be positive", a.Symbol)
		}
		if a.Expiration.IsZero() {
			return fmt.Errorf("asset %s: option expiration is not set", a.Symbol)
		}
		if a.Right != RightCall && a.Right != RightPut {
			return fmt.Errorf("asset %s: option right must be call or put", a.Symbol)
		}
	case AssetFuture, AssetContinuousFuture:
		if a.UnderlyingRoot == "" {
			return fmt.Errorf("asset %s: %s requires an underlying root", a.Symbol, a.Kind)
		}
		if !a.Strike.IsZero() || a.Right != RightNone {
			return fmt.Errorf("asset %s: option fields are not valid on a %s", a.Symbol, a.Kind)
		}
	case AssetStock, AssetCrypto, AssetForex:
		if !a.Strike.IsZero() || a.Right != RightNone || !a.Expiration.IsZero() {
			return fmt.Errorf("asset %s: derivative fields are not valid on a %s", a.Symbol, a.Kind)
		}
		if a.UnderlyingRoot != "" {
			return fmt.Errorf("asset %s: underlying root is not valid on a %s", a.Symbol, a.Kind)
		}
	default:
		return fmt.Errorf("asset %s: unknown kind %d", a.Symbol, a.Kind)
	}
	return nil
}

// MarginEligible reports whether positions in the asset hold margin instead
// of consuming full notional cash.
func (a Asset) MarginEligible() bool {
	switch a.Kind {
	case AssetFuture, AssetContinuousFuture:
		return true
	case AssetStock, AssetOption, AssetCrypto, AssetForex:
		return false
	}
	return false
}

// MarginRoot is the key used to look up the asset's margin rate. Futures are
// keyed by their root; everything else by symbol.
func (a Asset) MarginRoot() string {
	if a.UnderlyingRoot != "" {
		return a.UnderlyingRoot
	}
	return a.Symbol
}
