package planner

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders a USD amount as "$1,234.56", rounding half away from zero to the cent.
func FormatMoney(amount float64) string {
	cents := decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}

// FormatPercent renders a fraction such as 0.05 as "5%".
func FormatPercent(fraction float64) string {
	return decimal.NewFromFloat(fraction).Shift(2).Round(1).String() + "%"
}
