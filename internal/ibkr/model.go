package ibkr

import "encoding/xml"

// FlexRequestResponse is the reply to SendRequest. On success it carries the reference
// code and the URL the statement is fetched from.
type FlexRequestResponse struct {
	XMLName       xml.Name `xml:"FlexStatementResponse"`
	Timestamp     string   `xml:"timestamp,attr"`
	Status        string   `xml:"Status"`        // Success or Fail
	ReferenceCode string   `xml:"ReferenceCode"` // code to download the requested statement
	URL           string   `xml:"Url"`
	ErrorCode     *int     `xml:"ErrorCode"`
	ErrorMessage  *string  `xml:"ErrorMessage"`
}

// FlexQueryResponse is a generated Flex statement. Only trades are read.
type FlexQueryResponse struct {
	XMLName        xml.Name `xml:"FlexQueryResponse"`
	QueryName      string   `xml:"queryName,attr"`
	Type           string   `xml:"type,attr"`
	FlexStatements struct {
		Count         string          `xml:"count,attr"`
		FlexStatement []FlexStatement `xml:"FlexStatement"`
	} `xml:"FlexStatements"`
}

// FlexStatement covers one account over one period.
type FlexStatement struct {
	AccountID     string `xml:"accountId,attr"`
	FromDate      string `xml:"fromDate,attr"`
	ToDate        string `xml:"toDate,attr"`
	WhenGenerated string `xml:"whenGenerated,attr"`
	Trades        struct {
		Trade []Trade `xml:"Trade"`
	} `xml:"Trades"`
}

// Trade is one execution. Quantity is negative for sales.
type Trade struct {
	AssetCategory string  `xml:"assetCategory,attr"`
	Currency      string  `xml:"currency,attr"`
	Symbol        string  `xml:"symbol,attr"`
	Description   string  `xml:"description,attr"`
	Isin          string  `xml:"isin,attr"`
	Quantity      float64 `xml:"quantity,attr"`
	TradePrice    float64 `xml:"tradePrice,attr"`
	IbCommission  float64 `xml:"ibCommission,attr"`
	TransactionID int64   `xml:"transactionID,attr"`
	TradeDate     string  `xml:"tradeDate,attr"`
	BuySell       string  `xml:"buySell,attr"`
}
