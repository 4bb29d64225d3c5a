package parser

import (
	"fmt"
	"strconv"

	"github.com/antchfx/xmlquery"
	"github.com/dgallion1/doccheck/internal/docmodel"
	"github.com/dgallion1/doccheck/internal/ooxml"
)

const mmPerTwip = 25.4 / 1440

// parsePageSettings reads the first section's geometry from the raw
// document part. Values are stored in twips and reported in millimetres.
func parsePageSettings(path string) (docmodel.PageSettings, error) {
	var ps docmodel.PageSettings

	doc, err := ooxml.ReadPartFromFile(path, ooxml.DocumentPart)
	if err != nil {
		return ps, fmt.Errorf("read section properties: %w", err)
	}

	sectPr := ooxml.FindOne(doc, "//w:sectPr")
	if sectPr == nil {
		return ps, nil
	}

	if pgSz := ooxml.Child(sectPr, "w:pgSz"); pgSz != nil {
		ps.PaperWidthMM = twipsAttrMM(pgSz, "w:w")
		ps.PaperHeightMM = twipsAttrMM(pgSz, "w:h")
	}
	if pgMar := ooxml.Child(sectPr, "w:pgMar"); pgMar != nil {
		ps.Margins = docmodel.Margins{
			TopMM:    twipsAttrMM(pgMar, "w:top"),
			BottomMM: twipsAttrMM(pgMar, "w:bottom"),
			LeftMM:   twipsAttrMM(pgMar, "w:left"),
			RightMM:  twipsAttrMM(pgMar, "w:right"),
		}
	}

	return ps, nil
}

func twipsAttrMM(n *xmlquery.Node, name string) float64 {
	v := ooxml.Attr(n, name)
	if v == "" {
		return 0
	}
	twips, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return round2(twips * mmPerTwip)
}
