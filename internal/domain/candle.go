package domain

// Candle is one bar of the OHLCV price series.
// Column names follow the upstream data contract: Open, High, Low, Close,
// Volume, indexed by timestamp.
type Candle struct {
	Symbol      string  // traded asset
	TimestampMs int64   // bar open time, Unix milliseconds
	Open        float64 // first traded price of the bar
	High        float64 // highest traded price of the bar
	Low         float64 // lowest traded price of the bar
	Close       float64 // last traded price of the bar
	Volume      float64 // traded volume of the bar
}
