package util

import "testing"

func TestBaseAsset(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"BTCUSDT", "BTC"},
		{"ethusdt", "ETH"},
		{" SOLUSDC ", "SOL"},
		{"DOGEBUSD", "DOGE"},
		{"BTC", "BTC"},
		{"USDT", "USDT"},
	}
	for _, c := range cases {
		if got := BaseAsset(c.in); got != c.want {
			t.Fatalf("BaseAsset(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCoinGeckoID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"BTCUSDT", "bitcoin"},
		{"AVAXUSDT", "avalanche-2"},
		{"MATICUSDT", "matic-network"},
		{"PEPEUSDT", "pepe"},
	}
	for _, c := range cases {
		if got := CoinGeckoID(c.in); got != c.want {
			t.Fatalf("CoinGeckoID(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCoinName(t *testing.T) {
	if got := CoinName("NEARUSDT"); got != "NEAR Protocol" {
		t.Fatalf("CoinName(NEARUSDT) = %q", got)
	}
	if got := CoinName("PEPEUSDT"); got != "PEPE" {
		t.Fatalf("unmapped asset should return the base asset, got %q", got)
	}
}
