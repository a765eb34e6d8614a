package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// rarityEstimates maps a lowercase rarity or series tier to its typical shop
// price. The table is a product heuristic, not derived from the feed; it must
// stay as-is for behavioural parity with the estimates users already see.
var rarityEstimates = map[string]int64{
	"uncommon":  800,
	"rare":      1200,
	"epic":      1500,
	"legendary": 2000,
	"common":    800,

	// Cross-over series tiers typically land in the 1500-2000 range;
	// 1500 is the default estimate.
	"marvel":        1500,
	"dc":            1500,
	"starwars":      1500,
	"gaminglegends": 1500,
	"icon":          1500,
	"frozen":        1500,
	"lava":          1500,
	"shadow":        1500,
	"slurp":         1500,
	"dark":          1500,
}

// SuggestByRarity returns the static price estimate for a rarity, used only
// when no live offer prices an item. Mythic and unrecognized rarities have no
// known typical price and report ok=false.
func SuggestByRarity(rarity string) (decimal.Decimal, bool) {
	price, ok := rarityEstimates[strings.ToLower(rarity)]
	if !ok {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromInt(price), true
}
