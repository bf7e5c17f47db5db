package main

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/zipafford/internal/model"
)

var printer = message.NewPrinter(language.English)

func money(v float64) string {
	return printer.Sprintf("$%.0f", v)
}

func moneyPtr(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return money(*v)
}

func count(n int) string {
	return printer.Sprintf("%d", n)
}

func pct(n int) string {
	return printer.Sprintf("%d%%", n)
}

var tierLabels = map[model.Tier]string{
	model.TierAffordable:   "Affordable",
	model.TierStretch:      "Stretch",
	model.TierUnaffordable: "Unaffordable",
	model.TierUnknown:      "Unknown",
}

func tierLabel(t model.Tier) string {
	if l, ok := tierLabels[t]; ok {
		return l
	}
	return string(t)
}
