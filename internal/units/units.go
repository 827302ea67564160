// Package units normalises quantity/unit pairs extracted from chat or
// receipt text into canonical base-unit quantities.
package units

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// standardFactors maps absolute unit labels to their base-unit multiplier.
// These are fixed trade units; per-product packaging rules are handled
// separately via conversion-rule tables.
var standardFactors = map[string]float64{
	"ton":     1000,
	"kwintal": 100,
	"ons":     0.1,
	"pon":     0.5,
	"lusin":   12,
	"kodi":    20,
	"gross":   144,
	"rim":     500,
}

// standardBaseLabels maps each standard trade unit to the base unit a
// conversion lands in.
var standardBaseLabels = map[string]string{
	"ton":     "kg",
	"kwintal": "kg",
	"ons":     "kg",
	"pon":     "kg",
	"lusin":   "pcs",
	"kodi":    "pcs",
	"gross":   "pcs",
	"rim":     "lembar",
}

// Conversion is the outcome of normalising one quantity/unit pair.
type Conversion struct {
	Qty     float64
	Unit    string
	Note    string
	Applied bool
}

// Normalize converts a raw quantity/unit pair to base units. The standard
// trade-unit table wins over per-product rules, relabeling to the trade
// unit's base ("ton" lands in "kg"); a per-product rule relabels to the
// product's base unit. Unknown units pass through untouched. A converted
// item's unit no longer matches the raw-unit tables, so normalisation is
// single-shot even when a caller runs it twice.
func Normalize(qty float64, unit string, rules map[string]float64, baseUnit string) Conversion {
	label := strings.ToLower(strings.TrimSpace(unit))
	if factor, ok := standardFactors[label]; ok {
		converted := qty * factor
		target := standardBaseLabels[label]
		return Conversion{
			Qty:     converted,
			Unit:    target,
			Note:    fmt.Sprintf("Dikonversi: %s %s = %s %s (x%s)", trimFloat(qty), label, trimFloat(converted), target, trimFloat(factor)),
			Applied: true,
		}
	}
	if len(rules) > 0 {
		if mult, ok := rules[label]; ok && mult > 0 {
			converted := qty * mult
			target := baseUnit
			if target == "" {
				target = unit
			}
			return Conversion{
				Qty:     converted,
				Unit:    target,
				Note:    fmt.Sprintf("Dikonversi: %s %s = %s %s (x%s)", trimFloat(qty), label, trimFloat(converted), target, trimFloat(mult)),
				Applied: true,
			}
		}
	}
	return Conversion{Qty: qty, Unit: unit}
}

// Factor returns the base-unit multiplier for unit, consulting the
// per-product rules first and then the standard trade-unit table. ok is
// false when neither table knows the unit.
func Factor(unit string, rules map[string]float64) (float64, bool) {
	label := strings.ToLower(strings.TrimSpace(unit))
	if mult, found := rules[label]; found && mult > 0 {
		return mult, true
	}
	if factor, found := standardFactors[label]; found {
		return factor, true
	}
	return 1, false
}

var (
	packTokenRe   = regexp.MustCompile(`(?i)\b(?:isi|x|@)\s*(\d+)`)
	firstNumberRe = regexp.MustCompile(`\d+`)
)

// PackSize extracts the base-units-per-purchase-unit multiplier from a
// variant label ("Isi 36" -> 36). A number after "isi", "x" or "@" wins;
// otherwise the first number anywhere is used; labels without numbers
// yield 1. The fallback is a heuristic and over-fires on variants where
// the number is not a pack count ("Level 5" -> 5); numeric variants are
// still treated as distinct products by duplicate resolution, which keeps
// a wrong guess from merging different SKUs.
func PackSize(variant string) float64 {
	if variant == "" {
		return 1
	}
	if m := packTokenRe.FindStringSubmatch(variant); m != nil {
		if n, err := strconv.ParseFloat(m[1], 64); err == nil && n > 0 {
			return n
		}
	}
	if m := firstNumberRe.FindString(variant); m != "" {
		if n, err := strconv.ParseFloat(m, 64); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
