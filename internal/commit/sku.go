package commit

import (
	"fmt"
	"strconv"
	"strings"
)

// categoryCodes maps a catalog category (or a keyword found in the
// product name) to the 3-letter SKU segment.
var categoryCodes = map[string]string{
	"frozen food": "FRZ",
	"frozen":      "FRZ",
	"minuman":     "MIN",
	"makanan":     "MKN",
	"snack":       "SNK",
	"kripik":      "SNK",
	"keripik":     "SNK",
	"bumbu":       "BMB",
	"sembako":     "SMB",
	"sayur":       "SYR",
	"buah":        "BUA",
}

// unitCodes maps base-unit labels to the 2-3 letter SKU segment.
var unitCodes = map[string]string{
	"pcs":     "PCS",
	"bungkus": "BKS",
	"botol":   "BTL",
	"kg":      "KG",
	"gram":    "GR",
	"liter":   "LTR",
	"lembar":  "LBR",
	"karton":  "KRT",
	"dus":     "DUS",
	"pack":    "PCK",
	"sachet":  "SCH",
}

// descriptiveWords are adjectives stripped before picking the brand
// segment from a product name.
var descriptiveWords = map[string]struct{}{
	"original": {},
	"pedas":    {},
	"manis":    {},
	"asin":     {},
	"besar":    {},
	"kecil":    {},
	"baru":     {},
	"segar":    {},
}

const defaultCategoryCode = "GEN"

// SKUPrefix derives the CATEGORY-BRAND-UNIT part of a product code, e.g.
// ("frozen food", "Singkong Original", "bungkus") -> "FRZ-SING-BKS".
func SKUPrefix(category, productName, unit string) string {
	return fmt.Sprintf("%s-%s-%s", categoryCode(category, productName), brandCode(productName), unitCode(unit))
}

// NextSKU appends the next 3-digit sequence to prefix given the
// lexicographically-last existing SKU sharing it ("" when none exist).
func NextSKU(prefix, lastExisting string) string {
	seq := 1
	if lastExisting != "" {
		if idx := strings.LastIndex(lastExisting, "-"); idx >= 0 {
			if n, err := strconv.Atoi(lastExisting[idx+1:]); err == nil {
				seq = n + 1
			}
		}
	}
	return fmt.Sprintf("%s-%03d", prefix, seq)
}

// categoryKeywords is scanned in order when the category is absent and a
// keyword in the product name has to stand in for it.
var categoryKeywords = []struct {
	keyword string
	code    string
}{
	{"frozen", "FRZ"},
	{"kripik", "SNK"},
	{"keripik", "SNK"},
	{"minuman", "MIN"},
	{"bumbu", "BMB"},
	{"sayur", "SYR"},
	{"buah", "BUA"},
}

func categoryCode(category, productName string) string {
	if code, ok := categoryCodes[strings.ToLower(strings.TrimSpace(category))]; ok {
		return code
	}
	lowered := strings.ToLower(productName)
	for _, entry := range categoryKeywords {
		if strings.Contains(lowered, entry.keyword) {
			return entry.code
		}
	}
	return defaultCategoryCode
}

func brandCode(productName string) string {
	for _, word := range strings.Fields(productName) {
		if _, skip := descriptiveWords[strings.ToLower(word)]; skip {
			continue
		}
		cleaned := strings.ToUpper(word)
		if len(cleaned) > 4 {
			cleaned = cleaned[:4]
		}
		if cleaned != "" {
			return cleaned
		}
	}
	return "PROD"
}

func unitCode(unit string) string {
	label := strings.ToLower(strings.TrimSpace(unit))
	if code, ok := unitCodes[label]; ok {
		return code
	}
	upper := strings.ToUpper(label)
	if len(upper) > 3 {
		upper = upper[:3]
	}
	if upper == "" {
		return "PCS"
	}
	return upper
}
