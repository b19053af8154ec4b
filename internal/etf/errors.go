package etf

import (
	"errors"
	"fmt"
)

// Kind is the externally visible category of a failed lookup.
type Kind int

const (
	// KindInvalidSymbol means the symbol failed normalization. Client error.
	KindInvalidSymbol Kind = iota + 1
	// KindNotFound covers both missing data and any provider failure.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindInvalidSymbol:
		return "InvalidSymbolFormat"
	case KindNotFound:
		return "NotFound"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Title is the short error label used in ErrorRecord.
func (k Kind) Title() string {
	switch k {
	case KindInvalidSymbol:
		return "Invalid symbol"
	case KindNotFound:
		return "ETF not found"
	default:
		return "Lookup failed"
	}
}

var (
	ErrInvalidSymbol = errors.New("invalid symbol format")
	ErrNotFound      = errors.New("etf not found")
)

// Error is returned by NormalizeSymbol and Service.Lookup.
type Error struct {
	Kind   Kind
	Symbol string
	Detail string
	// Err is the provider failure collapsed into KindNotFound, if any.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidSymbol:
		return e.Kind == KindInvalidSymbol
	case ErrNotFound:
		return e.Kind == KindNotFound
	}
	return false
}

// Record converts e to its wire form.
func (e *Error) Record() ErrorRecord {
	return ErrorRecord{Error: e.Kind.Title(), Detail: e.Detail}
}

func notFound(symbol, detail string, cause error) *Error {
	return &Error{Kind: KindNotFound, Symbol: symbol, Detail: detail, Err: cause}
}

func providerFailure(symbol string, cause error) *Error {
	return notFound(symbol, fmt.Sprintf("Error fetching data for '%s': %v", symbol, cause), cause)
}
