package rjo

// Column names of the headerless RJO position file, in file order.
const (
	ColRecordCode            = "Record_code"
	ColAccountNumber         = "Account_number"
	ColAccountCurrencySymbol = "Account_type_currency_symbol"
	ColBuySellCode           = "Buy_sell_code"
	ColQuantity              = "Quantity"
	ColSecuritySubtypeCode   = "Security_subtype_code"
	ColContractMonth         = "Contract_month"
	ColSecurityDescription   = "Security_desc_line_1"
	ColClosePrice            = "Close_price"
	ColBloombergRoot         = "bloomberg_root"
	ColBloombergSector       = "bloomberg_market_sector"
)

// PositionHeader is the fixed column layout of the csvnpos export.
var PositionHeader = []string{
	ColRecordCode,
	"Firm",
	"Office",
	ColAccountNumber,
	"Account_type",
	ColAccountCurrencySymbol,
	"Trade_date",
	ColBuySellCode,
	ColQuantity,
	"Exchange_code",
	"Futures_code",
	"Security_type_code",
	ColSecuritySubtypeCode,
	ColContractMonth,
	"Strike_price",
	ColSecurityDescription,
	ColClosePrice,
	"Trade_price",
	"Market_value",
	ColBloombergRoot,
	ColBloombergSector,
}
