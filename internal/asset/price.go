package asset

import (
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// PricePrecision is the number of fixed-point decimals used for rates.
const PricePrecision = 18

var pricePrecisionMultiplier = new(big.Int).Exp(big.NewInt(10), big.NewInt(PricePrecision), nil)

// Price is an exchange rate between two assets, stored as a fixed-point
// integer with PricePrecision decimals.
type Price struct {
	rate      *big.Int
	base      *Asset
	quote     *Asset
	timestamp time.Time
}

// NewPrice creates a Price from a decimal rate. For CRO/USD at 0.08 the
// rate is 0.08, base CRO, quote USD.
func NewPrice(base, quote *Asset, rate decimal.Decimal, timestamp time.Time) Price {
	if base == nil || quote == nil {
		panic("asset: nil base or quote in price")
	}
	if rate.IsNegative() {
		panic("asset: negative price rate")
	}

	return Price{
		rate:      rate.Shift(PricePrecision).BigInt(),
		base:      base,
		quote:     quote,
		timestamp: timestamp,
	}
}

// NewPriceNow creates a Price observed now.
func NewPriceNow(base, quote *Asset, rate decimal.Decimal) Price {
	return NewPrice(base, quote, rate, time.Now())
}

// Rate returns the rate as a decimal.
func (p Price) Rate() decimal.Decimal {
	if p.rate == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(p.rate, -PricePrecision)
}

// Base returns the asset being priced.
func (p Price) Base() *Asset { return p.base }

// Quote returns the pricing unit.
func (p Price) Quote() *Asset { return p.quote }

// Timestamp returns when this price was observed.
func (p Price) Timestamp() time.Time { return p.timestamp }

// IsZero reports whether the rate is zero.
func (p Price) IsZero() bool {
	return p.rate == nil || p.rate.Sign() == 0
}

// Invert flips base and quote (CRO/USD to USD/CRO).
func (p Price) Invert() Price {
	if p.IsZero() {
		return Price{
			rate:      big.NewInt(0),
			base:      p.quote,
			quote:     p.base,
			timestamp: p.timestamp,
		}
	}

	precisionSquared := new(big.Int).Mul(pricePrecisionMultiplier, pricePrecisionMultiplier)
	return Price{
		rate:      new(big.Int).Div(precisionSquared, p.rate),
		base:      p.quote,
		quote:     p.base,
		timestamp: p.timestamp,
	}
}

// Convert converts an amount denominated in the base asset into the quote
// asset's smallest units.
func (p Price) Convert(amount Amount) (Amount, error) {
	if amount.Asset() == nil {
		return Amount{}, ErrNilAsset
	}
	if !amount.Asset().ID().Equals(p.base.ID()) {
		return Amount{}, fmt.Errorf("%w: expected %s, got %s",
			ErrAssetMismatch, p.base.Symbol(), amount.Asset().Symbol())
	}

	// quoteRaw = baseRaw * rate / 10^18, shifted by the decimal difference
	baseDecimals := int64(p.base.Decimals())
	quoteDecimals := int64(p.quote.Decimals())
	decimalShift := quoteDecimals - baseDecimals

	temp := new(big.Int).Mul(amount.Raw(), p.rate)
	temp.Div(temp, pricePrecisionMultiplier)

	if decimalShift > 0 {
		temp.Mul(temp, new(big.Int).Exp(big.NewInt(10), big.NewInt(decimalShift), nil))
	} else if decimalShift < 0 {
		temp.Div(temp, new(big.Int).Exp(big.NewInt(10), big.NewInt(-decimalShift), nil))
	}

	return NewAmount(p.quote, temp), nil
}

// Pair returns the trading pair symbol ("CRO/USD").
func (p Price) Pair() string {
	if p.base == nil || p.quote == nil {
		return "???/???"
	}
	return fmt.Sprintf("%s/%s", p.base.Symbol(), p.quote.Symbol())
}

func (p Price) String() string {
	return fmt.Sprintf("%s %s", p.Rate().String(), p.Pair())
}

// IsStale reports whether the observation is older than maxAge.
func (p Price) IsStale(maxAge time.Duration) bool {
	return time.Since(p.timestamp) > maxAge
}
