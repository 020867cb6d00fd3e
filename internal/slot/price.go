package slot

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnparsablePrice means a price text is not "<amount>" or
// "<amount> <currency>".
var ErrUnparsablePrice = errors.New("unparsable price")

// Price is the structured reading of a record's price text. An empty
// Currency means the text carried none.
type Price struct {
	Amount   decimal.Decimal
	Currency string
}

// ParsePrice reads text such as "2", "2.50" or "2000 SOL". It never
// changes what is stored; records keep their original text.
func ParsePrice(text string) (Price, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || len(fields) > 2 {
		return Price{}, fmt.Errorf("%w: %q", ErrUnparsablePrice, text)
	}
	amount, err := decimal.NewFromString(fields[0])
	if err != nil {
		return Price{}, fmt.Errorf("%w: %q: %v", ErrUnparsablePrice, text, err)
	}
	p := Price{Amount: amount}
	if len(fields) == 2 {
		p.Currency = strings.ToUpper(fields[1])
	}
	return p, nil
}

// String renders the amount with its currency.
func (p Price) String() string {
	if p.Currency == "" {
		return p.Amount.String()
	}
	return p.Amount.String() + " " + p.Currency
}

// Valuation is the summed value (price * quantity) of a record list,
// grouped by currency.
type Valuation struct {
	Totals     map[string]decimal.Decimal
	Unpriced   int
	Currencies []string
}

// Value sums price * quantity over records. Records whose price does not
// parse are counted in Unpriced.
func Value(records []Record) Valuation {
	v := Valuation{Totals: map[string]decimal.Decimal{}}
	for _, r := range records {
		p, err := ParsePrice(r.Price)
		if err != nil {
			v.Unpriced++
			continue
		}
		line := p.Amount.Mul(decimal.NewFromInt(r.Quantity))
		v.Totals[p.Currency] = v.Totals[p.Currency].Add(line)
	}
	for c := range v.Totals {
		v.Currencies = append(v.Currencies, c)
	}
	sort.Strings(v.Currencies)
	return v
}
