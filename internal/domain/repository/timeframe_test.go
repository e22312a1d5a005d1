package repository

import "testing"

func TestExpiryMinutesTable(t *testing.T) {
	cases := []struct {
		tf   Timeframe
		want int
	}{
		{TF1m, 1}, {TF5m, 5}, {TF15m, 15}, {TF30m, 30}, {TF1h, 60}, {TF4h, 240}, {TF1d, 1440},
	}
	for _, c := range cases {
		if got := AutomatedExpiry.Minutes(c.tf); got != c.want {
			t.Fatalf("automated %s = %d, want %d", c.tf, got, c.want)
		}
		if got := ManualExpiry.Minutes(c.tf); got != c.want {
			t.Fatalf("manual %s = %d, want %d", c.tf, got, c.want)
		}
	}
}

func TestExpiryPolicyFallbacks(t *testing.T) {
	unknown := Timeframe("7h")
	if got := AutomatedExpiry.Minutes(unknown); got != 60 {
		t.Fatalf("automated fallback = %d, want 60", got)
	}
	if got := ManualExpiry.Minutes(unknown); got != 5 {
		t.Fatalf("manual fallback = %d, want 5", got)
	}
}

func TestIsValidTimeframe(t *testing.T) {
	for _, tf := range []Timeframe{TF1m, TF5m, TF15m, TF30m, TF1h, TF4h, TF1d} {
		if !IsValidTimeframe(tf) {
			t.Fatalf("%s should be valid", tf)
		}
	}
	for _, tf := range []Timeframe{"", "2m", "1w", "60"} {
		if IsValidTimeframe(tf) {
			t.Fatalf("%q should be invalid", tf)
		}
	}
}

func TestNormalizeTimeframe(t *testing.T) {
	if got := NormalizeTimeframe(""); got != DefaultTimeframe() {
		t.Fatalf("empty = %s, want default", got)
	}
	if got := NormalizeTimeframe("bogus"); got != DefaultTimeframe() {
		t.Fatalf("bogus = %s, want default", got)
	}
	if got := NormalizeTimeframe("15m"); got != TF15m {
		t.Fatalf("15m = %s", got)
	}
}
