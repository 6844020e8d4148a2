package model

// QualityCount aggregates store items per quality grade.
type QualityCount struct {
	Quality  StoreItemQuality `json:"quality"`
	Count    int64            `json:"count"`
	Quantity int64            `json:"quantity"`
}

// SourceCount aggregates store items per source type.
type SourceCount struct {
	SourceType string `json:"source_type"`
	Count      int64  `json:"count"`
	Quantity   int64  `json:"quantity"`
}

// StatusCount aggregates orders per lifecycle status.
type StatusCount struct {
	Status OrderStatus `json:"status"`
	Count  int64       `json:"count"`
}

// StoreSummaryResponse is the dashboard aggregate over the store.
type StoreSummaryResponse struct {
	TotalItems         int64          `json:"total_items"`
	TotalQuantity      int64          `json:"total_quantity"`
	TotalValue         string         `json:"total_value"`
	PendingAdjustments int64          `json:"pending_adjustments"`
	ItemsByQuality     []QualityCount `json:"items_by_quality"`
	ItemsBySource      []SourceCount  `json:"items_by_source"`
	OrdersByStatus     []StatusCount  `json:"orders_by_status"`
}
