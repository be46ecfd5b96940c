package services

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/AtSheen/efg/internal/models"
)

const (
	descriptionTaxCodeColumn = "Tax code"
	descriptionColumn        = "Description"

	// literalNewline is the two-character sequence backslash, n.
	literalNewline     = `\n`
	newlineReplacement = ". "
)

// FilterCandidates keeps the catalog rows consistent with q: same reporting
// country, matching or generic goods/services, equal reverse-charge text and
// equal VAT rate text. The input is not modified and an empty result is valid.
func FilterCandidates(rows []models.TaxCodeCatalogRow, q models.EnrichedQuery) []models.TaxCodeCatalogRow {
	country, resolved := q.ReportingCountry.Code()
	if !resolved {
		return []models.TaxCodeCatalogRow{}
	}

	goodsServices := string(q.GoodsServices)
	reverseCharge := capitalize(q.IsReverseCharge.String())

	out := make([]models.TaxCodeCatalogRow, 0)
	for _, row := range rows {
		if row.Country != country {
			continue
		}
		if row.GoodsServices != goodsServices && row.GoodsServices != string(models.GoodsServicesBoth) {
			continue
		}
		if capitalize(row.ReverseCharge) != reverseCharge {
			continue
		}
		if row.VATRateInInvoiceCopy != q.VATRate {
			continue
		}
		out = append(out, row)
	}
	return out
}

// CandidateTaxCodes returns the distinct tax codes of rows in first-seen order.
func CandidateTaxCodes(rows []models.TaxCodeCatalogRow) []string {
	seen := make(map[string]struct{}, len(rows))
	codes := make([]string, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.TaxCode]; ok {
			continue
		}
		seen[row.TaxCode] = struct{}{}
		codes = append(codes, row.TaxCode)
	}
	return codes
}

// JoinDescriptions returns the description rows whose tax code is in codes,
// with every literal `\n` in the description replaced by ". ".
func JoinDescriptions(descriptions *models.Table, codes []string) *models.Table {
	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}

	joined := descriptions.Filter(func(row models.Row) bool {
		cell := row.Get(descriptionTaxCodeColumn)
		if cell.IsNull() {
			return false
		}
		_, ok := set[cell.String()]
		return ok
	})

	return joined.MapColumn(descriptionColumn, func(c models.Cell) models.Cell {
		if c.IsNull() || c.Kind() != models.KindString {
			return c
		}
		return models.StringCell(strings.ReplaceAll(c.Raw(), literalNewline, newlineReplacement))
	})
}

// DescriptionTaxCodes lists the tax code of every joined description row,
// duplicates included.
func DescriptionTaxCodes(joined *models.Table) []string {
	cells := joined.Column(descriptionTaxCodeColumn)
	codes := make([]string, 0, len(cells))
	for _, c := range cells {
		if !c.IsNull() {
			codes = append(codes, c.String())
		}
	}
	return codes
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
