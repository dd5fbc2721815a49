package ticker

import (
	"reflect"
	"testing"

	"github.com/bobmcallan/sage/internal/common"
)

func TestResolveCompanyNames(t *testing.T) {
	r := NewResolver(common.NewSilentLogger())

	tests := []struct {
		query string
		want  string
	}{
		{"How is Tesla performing?", "TSLA"},
		{"tell me about apple", "AAPL"},
		{"What do you think of ALPHABET right now?", "GOOGL"},
		{"is facebook a buy", "META"},
		{"how's the s&p 500 doing", "SPY"},
		{"nasdaq outlook for this week", "QQQ"},
	}

	for _, tt := range tests {
		got := r.Resolve(tt.query)
		if got[0] != tt.want {
			t.Errorf("Resolve(%q) primary = %q, want %q", tt.query, got[0], tt.want)
		}
	}
}

func TestResolvePatterns(t *testing.T) {
	r := NewResolver(common.NewSilentLogger())

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"dollar prefix", "thoughts on $NVDA today", []string{"NVDA"}},
		{"bare token", "How has MSFT performed lately?", []string{"MSFT"}},
		{"parenthesized", "Advanced Micro Devices (AMD) earnings", []string{"AMD"}},
		{"dollar beats bare order", "compare $TSLA against AAPL", []string{"TSLA", "AAPL"}},
		{"duplicates collapse", "$AAPL vs AAPL and apple", []string{"AAPL"}},
		{"stop words excluded", "WHAT ARE THE BEST stocks NOW", []string{"UNKNOWN"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.query)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestResolveNoMatch(t *testing.T) {
	r := NewResolver(common.NewSilentLogger())

	for _, query := range []string{"asdkj qwop", "how do markets work", ""} {
		got := r.Resolve(query)
		if len(got) != 1 || got[0] != Unknown {
			t.Errorf("Resolve(%q) = %v, want [%s]", query, got, Unknown)
		}
	}
}

func TestPrimary(t *testing.T) {
	r := NewResolver(nil)

	if got := r.Primary("How is Tesla doing?"); got != "TSLA" {
		t.Errorf("Primary() = %q, want TSLA", got)
	}
	if got := r.Primary("hello there"); got != Unknown {
		t.Errorf("Primary() = %q, want %s", got, Unknown)
	}
}
