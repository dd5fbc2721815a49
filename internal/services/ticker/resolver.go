// Package ticker resolves free-text queries to candidate stock symbols
package ticker

import (
	"regexp"
	"strings"

	"github.com/bobmcallan/sage/internal/common"
)

// Unknown is the sentinel returned when no candidate symbol is found.
const Unknown = "UNKNOWN"

var (
	dollarPattern = regexp.MustCompile(`\$([A-Z]{1,5})\b`)
	barePattern   = regexp.MustCompile(`\b([A-Z]{2,5})\b`)
	parenPattern  = regexp.MustCompile(`\(([A-Z]{1,5})\)`)
)

// stopWords filters common uppercase English words out of bare-token matches.
// The list is a heuristic and incomplete by construction; ambiguous queries
// like "Is IT a good buy?" may still mis-resolve.
var stopWords = map[string]struct{}{
	"THE": {}, "AND": {}, "FOR": {}, "ARE": {}, "BUT": {}, "NOT": {},
	"YOU": {}, "ALL": {}, "CAN": {}, "HER": {}, "WAS": {}, "ONE": {},
	"OUR": {}, "OUT": {}, "DAY": {}, "GET": {}, "USE": {}, "MAN": {},
	"NEW": {}, "NOW": {}, "WAY": {}, "MAY": {}, "SAY": {}, "WHAT": {},
	"WHEN": {}, "WHERE": {}, "WHO": {}, "WHY": {}, "HOW": {}, "SOME": {},
	"GOOD": {}, "BEST": {}, "TOP": {}, "ANY": {}, "WILL": {}, "SHOULD": {},
	"COULD": {}, "WOULD": {},
}

// companyTickers maps well-known company names to their primary listing.
var companyTickers = []struct {
	name   string
	ticker string
}{
	{"apple", "AAPL"},
	{"tesla", "TSLA"},
	{"microsoft", "MSFT"},
	{"google", "GOOGL"},
	{"alphabet", "GOOGL"},
	{"amazon", "AMZN"},
	{"meta", "META"},
	{"facebook", "META"},
	{"nvidia", "NVDA"},
	{"netflix", "NFLX"},
	{"salesforce", "CRM"},
	{"oracle", "ORCL"},
	{"intel", "INTC"},
	{"amd", "AMD"},
	{"uber", "UBER"},
	{"lyft", "LYFT"},
	{"airbnb", "ABNB"},
	{"zoom", "ZM"},
	{"slack", "WORK"},
	{"twitter", "TWTR"},
	{"snapchat", "SNAP"},
	{"spotify", "SPOT"},
	{"adobe", "ADBE"},
	{"paypal", "PYPL"},
	{"palantir", "PLTR"},
	{"square", "SQ"},
	{"robinhood", "HOOD"},
	{"coinbase", "COIN"},
	{"s&p 500", "SPY"},
	{"spy", "SPY"},
	{"nasdaq", "QQQ"},
	{"qqq", "QQQ"},
	{"dow", "DIA"},
	{"russell", "IWM"},
}

// Resolver maps free text to candidate symbols. Resolution is pure pattern
// and dictionary matching; no I/O.
type Resolver struct {
	logger *common.Logger
}

// NewResolver creates a new resolver
func NewResolver(logger *common.Logger) *Resolver {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Resolver{logger: logger}
}

// Resolve returns an ordered, de-duplicated candidate list for a query.
// The first element is the primary candidate. The list is never empty: when
// nothing matches it is exactly [Unknown].
//
// Match priority: $SYMBOL, bare uppercase tokens, (SYMBOL), then company
// names. First-seen order wins across all passes.
func (r *Resolver) Resolve(query string) []string {
	seen := make(map[string]struct{})
	var candidates []string

	add := func(symbol string) {
		if _, dup := seen[symbol]; dup {
			return
		}
		seen[symbol] = struct{}{}
		candidates = append(candidates, symbol)
	}

	for _, m := range dollarPattern.FindAllStringSubmatch(query, -1) {
		add(m[1])
	}
	for _, m := range barePattern.FindAllStringSubmatch(query, -1) {
		if _, stop := stopWords[m[1]]; stop {
			continue
		}
		add(m[1])
	}
	for _, m := range parenPattern.FindAllStringSubmatch(query, -1) {
		add(m[1])
	}

	queryLower := strings.ToLower(query)
	for _, entry := range companyTickers {
		if strings.Contains(queryLower, entry.name) {
			add(entry.ticker)
		}
	}

	if len(candidates) == 0 {
		r.logger.Debug().Str("query", query).Msg("No ticker candidates found")
		return []string{Unknown}
	}

	r.logger.Debug().Str("query", query).Strs("candidates", candidates).Msg("Resolved ticker candidates")
	return candidates
}

// Primary returns the first candidate for a query.
func (r *Resolver) Primary(query string) string {
	return r.Resolve(query)[0]
}
