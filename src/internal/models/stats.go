package models

// Stats is the aggregated view returned by the stats endpoint.
type Stats struct {
	TotalSessions       int            `json:"total_sessions"`
	ActiveLastMinute    int            `json:"active_last_minute"`
	ActiveLast5Minutes  int            `json:"active_last_5_minutes"`
	PagesVisited        map[string]int `json:"pages_visited"`
	BrowserDistribution map[string]int `json:"browser_distribution"`
	CartItems           int            `json:"cart_items"`
	ProductsCount       int            `json:"products_count"`
	Timestamp           string         `json:"timestamp"`
}
