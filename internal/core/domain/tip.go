package domain

import "math/big"

// DefaultAssetDecimals is the decimal scale of the payment asset's
// smallest unit (18 for ETH-style assets: 1 unit = 10^18 wei).
const DefaultAssetDecimals = 18

// TipEvent is an inbound on-chain tip notification from the transport
// layer. Amounts arrive as integer smallest-unit quantities.
type TipEvent struct {
	// FromUserID is the paying user.
	FromUserID string

	// ToAddress is the receiving address. Tips to addresses other
	// than the bot's recognised addresses are ignored entirely.
	ToAddress string

	// Amount is the tipped quantity in smallest units (e.g. wei).
	Amount *big.Int

	// ChannelID and ThreadID locate the conversation the tip came
	// from, when the transport knows it. They route replies for tips
	// that arrive with no pending question; a parked question's own
	// routing takes precedence otherwise.
	ChannelID string
	ThreadID  string
}

// WholeUnits converts the smallest-unit amount to the asset's whole-unit
// value by dividing by 10^decimals. A nil amount converts to zero.
func (t TipEvent) WholeUnits(decimals int) float64 {
	if t.Amount == nil {
		return 0
	}
	scale := new(big.Float).SetInt(new(big.Int).Exp(
		big.NewInt(10), big.NewInt(int64(decimals)), nil,
	))
	value, _ := new(big.Float).Quo(new(big.Float).SetInt(t.Amount), scale).Float64()
	return value
}
