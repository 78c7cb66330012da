package notifier

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders amount in the currency's minor-unit precision, e.g.
// "₩12,000,000" or "$1,234.56". Unknown currency codes fall back to a plain
// two-decimal number followed by the code.
func FormatMoney(amount float64, currency string) string {
	code := strings.ToUpper(currency)
	cur := money.GetCurrency(code)
	if cur == nil {
		return fmt.Sprintf("%s %s", decimal.NewFromFloat(amount).StringFixed(2), code)
	}
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	minor := decimal.NewFromFloat(amount).Mul(factor).Round(0)
	return money.New(minor.IntPart(), code).Display()
}

// FormatPercent renders a ratio as a signed percentage, 0.1234 -> "+12.34%".
func FormatPercent(ratio float64) string {
	return signed(decimal.NewFromFloat(ratio).Mul(decimal.NewFromInt(100)).StringFixed(2)) + "%"
}

func signed(s string) string {
	if strings.HasPrefix(s, "-") {
		return s
	}
	return "+" + s
}
