package etf

import (
	"fmt"
	"regexp"
	"strings"
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)

// NormalizeSymbol upper-cases and trims raw and checks it is a ticker of
// 1 to 10 ASCII letters or digits. Normalizing a valid symbol again returns it
// unchanged.
func NormalizeSymbol(raw string) (string, error) {
	symbol := strings.TrimSpace(strings.ToUpper(raw))
	if !symbolPattern.MatchString(symbol) {
		return "", &Error{
			Kind:   KindInvalidSymbol,
			Symbol: symbol,
			Detail: fmt.Sprintf("Symbol '%s' is not a valid ETF ticker format", symbol),
		}
	}
	return symbol, nil
}
