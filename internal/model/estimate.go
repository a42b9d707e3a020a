package model

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// EstimateSource identifies who authored an estimate.
type EstimateSource string

const (
	// SourceAI marks estimates produced by the AI gateway.
	SourceAI EstimateSource = "AI"
	// SourceRepairShop marks estimates proposed by a repair shop.
	SourceRepairShop EstimateSource = "Repair Shop"
	// SourceInsuranceAgent marks estimates proposed by an insurance agent.
	SourceInsuranceAgent EstimateSource = "Insurance Agent"
)

// Labor share of a proposed total. Parts take the remainder.
var laborShare = decimal.NewFromFloat(0.6)

// Estimate is a costed repair proposal. Treat it as immutable once built.
type Estimate struct {
	TotalCost decimal.Decimal `json:"total_cost"`
	LaborCost decimal.Decimal `json:"labor_cost"`
	PartsCost decimal.Decimal `json:"parts_cost"`
	Details   string          `json:"details"`
	Source    EstimateSource  `json:"source"`
}

// NewEstimate builds an estimate from a total using the fixed labor/parts split.
// The total is rounded to cents first.
func NewEstimate(total decimal.Decimal, details string, source EstimateSource) Estimate {
	total = total.Round(2)
	labor, parts := SplitCost(total)
	return Estimate{
		TotalCost: total,
		LaborCost: labor,
		PartsCost: parts,
		Details:   details,
		Source:    source,
	}
}

// IsBalanced reports whether labor and parts add up to the total exactly.
func (e Estimate) IsBalanced() bool {
	return e.LaborCost.Add(e.PartsCost).Equal(e.TotalCost)
}

// SplitCost divides a total into labor (60%, rounded to cents) and parts (the rest).
// The parts share absorbs rounding so labor+parts always equals total.
func SplitCost(total decimal.Decimal) (labor, parts decimal.Decimal) {
	labor = total.Mul(laborShare).Round(2)
	parts = total.Sub(labor)
	return labor, parts
}

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders a money amount as US dollars, e.g. $1,500.00.
func FormatAmount(d decimal.Decimal) string {
	d = d.Round(2)
	whole, cents, _ := strings.Cut(d.Abs().StringFixed(2), ".")
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		whole = amountPrinter.Sprintf("%d", n)
	}

	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "$" + whole + "." + cents
}

func cloneEstimate(e *Estimate) *Estimate {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}
