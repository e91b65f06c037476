package schemas

// PostQuoteRequest carries either a raw feed record in Line or the decoded
// fields. Price and Quantity are decimal strings, e.g. "32.99".
type PostQuoteRequest struct {
	Line       string `json:"line,omitempty"`
	Instrument string `json:"instrument,omitempty"`
	Price      string `json:"price,omitempty"`
	Quantity   string `json:"quantity,omitempty"`
	Side       string `json:"side,omitempty"`
}

type InstrumentsResponse struct {
	Instruments []string `json:"instruments"`
}

type Level struct {
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
}

type DepthResponse struct {
	Instrument string  `json:"instrument"`
	Bids       []Level `json:"bids"`
	Asks       []Level `json:"asks"`
}

type AggregateResponse struct {
	Instrument string `json:"instrument"`
	Levels     int    `json:"levels"`
	Value      string `json:"value"`
}
