package fmp

// CongressionalTrade is one raw record from the senate-latest or house-latest
// endpoints. Transient: discarded after normalization, except for the raw
// JSON payload retained on the canonical trade.
type CongressionalTrade struct {
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Office           string `json:"office"`
	District         string `json:"district"` // Senate: state code; House: state code + district number
	Symbol           string `json:"symbol"`
	DateReceived     string `json:"dateRecieved"` // provider spells it this way
	TransactionDate  string `json:"transactionDate"`
	Owner            string `json:"owner"`
	AssetDescription string `json:"assetDescription"`
	AssetType        string `json:"assetType"`
	Type             string `json:"type"`   // free text, e.g. "Purchase", "Sale (Full)"
	Amount           string `json:"amount"` // free-text range, e.g. "$1,001 - $15,000"
	Comment          string `json:"comment"`
	Link             string `json:"link"`
}

// InsiderTrade is one raw record from the insider-trading endpoint.
// Unlike the congressional feeds it carries numeric share/price fields
// instead of an amount-range string.
type InsiderTrade struct {
	Symbol               string  `json:"symbol"`
	ReportingName        string  `json:"reportingName"`
	TypeOfOwner          string  `json:"typeOfOwner"`
	TransactionType      string  `json:"transactionType"` // e.g. "P-Purchase", "S-Sale"
	SecuritiesTransacted float64 `json:"securitiesTransacted"`
	Price                float64 `json:"price"`
	SecurityName         string  `json:"securityName"`
	FilingDate           string  `json:"filingDate"`
	TransactionDate      string  `json:"transactionDate"`
	Link                 string  `json:"link"`
}
