package dashboard

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders amounts the way the dashboard cards show them.
type Formatter struct {
	p *message.Printer
}

// NewFormatter returns a formatter for tag. The site is English only and
// uses language.AmericanEnglish.
func NewFormatter(tag language.Tag) Formatter {
	return Formatter{p: message.NewPrinter(tag)}
}

// Money formats v as dollars with cents, e.g. "$480,066.00".
func (f Formatter) Money(v float64) string {
	if v < 0 {
		return "-" + f.p.Sprintf("$%.2f", math.Abs(v))
	}
	return f.p.Sprintf("$%.2f", v)
}

// WholeMoney formats v as whole dollars, e.g. "$10,000".
func (f Formatter) WholeMoney(v float64) string {
	if v < 0 {
		return "-" + f.p.Sprintf("$%.0f", math.Abs(v))
	}
	return f.p.Sprintf("$%.0f", v)
}

// SignedMoney always carries a sign, e.g. "+$402.25".
func (f Formatter) SignedMoney(v float64) string {
	if v < 0 {
		return f.Money(v)
	}
	return "+" + f.Money(v)
}

// Percent formats an unsigned percentage with one decimal, e.g. "0.6%".
func (f Formatter) Percent(v float64) string {
	return f.p.Sprintf("%.1f%%", math.Abs(v))
}
