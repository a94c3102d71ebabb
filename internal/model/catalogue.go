package model

// ExchangeInfo names an exchange and its headline index. Catalogue entries carry
// no figures; they seed input templates.
type ExchangeInfo struct {
	Region        string
	Exchange      string
	IndexName     string
	LocalCurrency string
}

// DefaultExchanges is the core GCC set every report covers.
var DefaultExchanges = []ExchangeInfo{
	{Region: "UAE", Exchange: "DFM", IndexName: "DFM General Index", LocalCurrency: "AED"},
	{Region: "UAE", Exchange: "ADX", IndexName: "ADX General Index", LocalCurrency: "AED"},
	{Region: "Saudi Arabia", Exchange: "Tadawul", IndexName: "TASI", LocalCurrency: "SAR"},
}

// OptionalExchanges can be added for comparison.
var OptionalExchanges = []ExchangeInfo{
	{Region: "Kuwait", Exchange: "Boursa Kuwait", IndexName: "Premier Market Index", LocalCurrency: "KWD"},
	{Region: "Qatar", Exchange: "QSE", IndexName: "QE Index", LocalCurrency: "QAR"},
	{Region: "USA", Exchange: "NYSE", IndexName: "NYSE Composite", LocalCurrency: "USD"},
	{Region: "USA", Exchange: "NASDAQ", IndexName: "NASDAQ Composite", LocalCurrency: "USD"},
	{Region: "UK", Exchange: "LSE", IndexName: "FTSE 100", LocalCurrency: "GBP"},
	{Region: "Germany", Exchange: "XETRA", IndexName: "DAX", LocalCurrency: "EUR"},
	{Region: "France", Exchange: "Euronext Paris", IndexName: "CAC 40", LocalCurrency: "EUR"},
	{Region: "Japan", Exchange: "TSE", IndexName: "Nikkei 225", LocalCurrency: "JPY"},
	{Region: "Hong Kong", Exchange: "HKEX", IndexName: "Hang Seng", LocalCurrency: "HKD"},
}

// Catalogue returns the default exchanges, followed by the optional ones when all is set.
func Catalogue(all bool) []ExchangeInfo {
	out := append([]ExchangeInfo(nil), DefaultExchanges...)
	if all {
		out = append(out, OptionalExchanges...)
	}
	return out
}
