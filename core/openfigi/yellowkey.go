package openfigi

// YellowKey renders a mapping as a Bloomberg yellow key.
// Equities carry the exchange code, index options use their description.
func YellowKey(m Mapping) string {
	switch {
	case m.MarketSector == "Equity":
		return m.Ticker + " " + m.ExchCode + " " + m.MarketSector
	case m.SecurityType == "Index Option":
		return m.SecurityDescription + " " + m.MarketSector
	default:
		return m.Ticker + " " + m.MarketSector
	}
}
