package service

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// formatCount 千分位整数
func formatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// formatMoney 千分位金额，保留两位小数
func formatMoney(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("%.2f", f)
}
