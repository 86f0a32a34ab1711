package rjo

import (
	"fmt"
	"strings"
)

type override struct {
	// suffix matches the end of the security description.
	suffix string
	// root and sector match the exported Bloomberg fields when suffix is empty.
	root, sector string

	toRoot, toSector string
}

// overrides correct symbols RJO exports wrongly. The first match wins.
var overrides = []override{
	{suffix: "SCM TSR20RUBBR", toRoot: "OR", toSector: "Comdty"},
	{suffix: "LME NICKEL US", toRoot: "LN", toSector: "Comdty"},
	{suffix: "CME LUMBER FUT", toRoot: "LBO", toSector: "Comdty"},
	{root: "NZ", sector: "Index", toRoot: "JGS"},
	{root: "AL", sector: "Comdty", toRoot: "ALE"},
	{suffix: "ICE UKA FUT", toRoot: "UKE", toSector: "Comdty"},
	{suffix: "EUX FDXS FUT", toRoot: "MZS", toSector: "Index"},
	{suffix: "OSE GOLD", toRoot: "JG", toSector: "Comdty"},
	{suffix: "CMX MHG COPPER", toRoot: "MHC", toSector: "Comdty"},
	{suffix: "NYM MICR CRUDE", toRoot: "WMI", toSector: "Comdty"},
	{suffix: "IFLL 3MESRT F", toRoot: "TKY", toSector: "Comdty"},
	{suffix: "ICE FTSE250 2", toRoot: "YBY", toSector: "Index"},
}

func (o override) matches(description, root, sector string) bool {
	if o.suffix != "" {
		return strings.HasSuffix(description, o.suffix)
	}
	return root == o.root && sector == o.sector
}

var monthCodes = map[string]string{
	"01": "F", "02": "G", "03": "H", "04": "J", "05": "K", "06": "M",
	"07": "N", "08": "Q", "09": "U", "10": "V", "11": "X", "12": "Z",
}

// twoDigitYear lists roots whose contracts carry a two-digit year.
var twoDigitYear = map[string]bool{"NG": true, "LA": true, "MO": true}

// YellowKey derives the Bloomberg futures yellow key from RJO contract fields,
// e.g. ("...", "CL", "Comdty", "202403") gives "CLH4 Comdty".
// It returns an empty key when the root or contract month is missing.
func YellowKey(description, root, sector, contractMonth string) (string, error) {
	for _, o := range overrides {
		if o.matches(description, root, sector) {
			root = o.toRoot
			if o.toSector != "" {
				sector = o.toSector
			}
			break
		}
	}

	if root == "" || contractMonth == "" {
		return "", nil
	}
	if len(root) == 1 {
		root += " "
	}

	if len(contractMonth) != 6 {
		return "", fmt.Errorf("contract month %q is not YYYYMM", contractMonth)
	}
	year, month := contractMonth[:4], contractMonth[4:]
	code, ok := monthCodes[month]
	if !ok {
		return "", fmt.Errorf("contract month %q has invalid month %q", contractMonth, month)
	}

	yearCode := year[3:]
	if twoDigitYear[root] {
		yearCode = year[2:]
	}

	return root + code + yearCode + " " + sector, nil
}
