// Package sku generates stock-keeping-unit codes for store items.
package sku

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Generate builds a SKU from fabric and product-type codes plus a
// time-derived salt, e.g. "COT-TSH-260828-K4F2Q9". The prefix is
// deterministic for a given fabric/product-type pair; the salt makes
// successive calls distinct. Uniqueness is best effort; callers must
// check the generated value against the store and regenerate on
// collision.
func Generate(fabricCode, productTypeCode string) string {
	now := time.Now().UTC()
	salt := strings.ToUpper(strconv.FormatInt(now.UnixNano(), 36))
	if len(salt) > 6 {
		salt = salt[len(salt)-6:]
	}
	return fmt.Sprintf("%s-%s-%s-%s",
		codePart(fabricCode), codePart(productTypeCode), now.Format("060102"), salt)
}

// codePart normalizes a reference code into a three-character SKU
// segment: uppercased alphanumerics, padded with X when too short.
func codePart(code string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(code) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
		if b.Len() >= 3 {
			break
		}
	}
	part := b.String()
	for len(part) < 3 {
		part += "X"
	}
	return part
}
