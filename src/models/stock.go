package models

// MStock is a row of the stocks table, keyed by segment.
type MStock struct {
	ID        int64   `json:"id" db:"id"`
	Symbol    string  `json:"symbol" db:"symbol"`
	Name      string  `json:"name" db:"name"`
	Sector    string  `json:"sector" db:"sector"`
	Segment   string  `json:"segment" db:"segment"`
	LastPrice float64 `json:"last_price" db:"last_price"`
}

// MPositionView is a net position as shown on the dashboard.
type MPositionView struct {
	MPosition
	NetQuantity int            `json:"net_quantity"`
	Status      PositionStatus `json:"status"`
}
