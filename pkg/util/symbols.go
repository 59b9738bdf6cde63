package util

import "strings"

// Trading pairs are quoted against USDT throughout the service.
var quoteAssets = []string{"USDT", "USDC", "BUSD", "USD"}

var coinGeckoIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"BNB":   "binancecoin",
	"SOL":   "solana",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"AVAX":  "avalanche-2",
	"DOT":   "polkadot",
	"MATIC": "matic-network",
	"LINK":  "chainlink",
	"LTC":   "litecoin",
	"UNI":   "uniswap",
	"ATOM":  "cosmos",
	"NEAR":  "near",
}

var coinNames = map[string]string{
	"BTC":   "Bitcoin",
	"ETH":   "Ethereum",
	"BNB":   "BNB",
	"SOL":   "Solana",
	"XRP":   "XRP",
	"ADA":   "Cardano",
	"DOGE":  "Dogecoin",
	"AVAX":  "Avalanche",
	"DOT":   "Polkadot",
	"MATIC": "Polygon",
	"LINK":  "Chainlink",
	"LTC":   "Litecoin",
	"UNI":   "Uniswap",
	"ATOM":  "Cosmos",
	"NEAR":  "NEAR Protocol",
}

// BaseAsset strips the quote asset from a trading pair. "BTCUSDT" -> "BTC".
// Unknown quotes leave the symbol unchanged.
func BaseAsset(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	for _, quote := range quoteAssets {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return strings.TrimSuffix(s, quote)
		}
	}
	return s
}

// CoinGeckoID maps a trading pair or base asset to its CoinGecko coin id.
// Unmapped assets fall back to the lowercased base asset.
func CoinGeckoID(symbol string) string {
	base := BaseAsset(symbol)
	if id, ok := coinGeckoIDs[base]; ok {
		return id
	}
	return strings.ToLower(base)
}

// CoinName returns the human-readable name for a trading pair or base asset.
func CoinName(symbol string) string {
	base := BaseAsset(symbol)
	if name, ok := coinNames[base]; ok {
		return name
	}
	return base
}
