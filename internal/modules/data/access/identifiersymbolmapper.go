package access

import (
	"regexp"
	"strings"
)

// isinPattern matches a 12-character ISIN: 2-letter country code, 9
// alphanumeric characters, 1 check digit. Adapted from the teacher's
// internal/modules/universe isISIN check.
var isinPattern = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// exchangeSuffixPattern matches a trailing exchange suffix such as ".US" or
// ".DE". Adapted from the teacher's tradernetSuffixPattern.
var exchangeSuffixPattern = regexp.MustCompile(`\.[A-Z]{2,3}$`)

// isISIN reports whether identifier looks like an ISIN.
func isISIN(identifier string) bool {
	return isinPattern.MatchString(identifier)
}

// exchangeSuffixToProviderSymbol converts an exchange-suffixed identifier
// (e.g. "AAPL.US", "OTE.GR") into the symbol a price provider expects,
// adapted from the teacher's TradernetToYahoo conversion table.
func exchangeSuffixToProviderSymbol(identifier string) string {
	symbol := strings.ToUpper(identifier)
	switch {
	case strings.HasSuffix(symbol, ".US"):
		return strings.TrimSuffix(symbol, ".US")
	case strings.HasSuffix(symbol, ".GR"):
		return strings.TrimSuffix(symbol, ".GR") + ".AT"
	default:
		return symbol
	}
}

// IdentifierSymbolMapper resolves an asset id to a provider symbol using
// identifier-shape rules -- ISINs and bare tickers pass through unchanged,
// exchange-suffixed identifiers get their suffix converted -- with an
// Overrides table for assets that don't fit the rule (checked first).
// Adapted from the teacher's SymbolResolver, stripped of the Tradernet API
// lookup and database cache: QuantLab has no Tradernet dependency, so
// identifier-shape conversion plus an explicit override table is all the
// mapping this system needs.
type IdentifierSymbolMapper struct {
	Overrides map[string]string
}

// Resolve implements SymbolMapper.
func (m IdentifierSymbolMapper) Resolve(assetID string) (string, error) {
	identifier := strings.TrimSpace(strings.ToUpper(assetID))

	if m.Overrides != nil {
		if symbol, ok := m.Overrides[identifier]; ok {
			return symbol, nil
		}
	}

	if isISIN(identifier) {
		return identifier, nil
	}
	if exchangeSuffixPattern.MatchString(identifier) {
		return exchangeSuffixToProviderSymbol(identifier), nil
	}
	return identifier, nil
}
