package domain

// Proximity feed 条目的远近标签
type Proximity string

const (
	ProximityNearby     Proximity = "nearby"
	ProximityFartherOut Proximity = "farther_out"
)

// FeedTag 距离标注；zip 无法解析时 DistanceMiles 为空、Proximity 为空串
type FeedTag struct {
	DistanceMiles *float64  `json:"distanceMiles,omitempty"`
	Proximity     Proximity `json:"proximity,omitempty"`
}

type FeedEvent struct {
	Event
	FeedTag
}

type FeedPosting struct {
	HelpPosting
	FeedTag
}

type FeedProduct struct {
	Product
	FeedTag
}

// Feed 按类型分组的聚合结果，各自保持自身的时间序，不做跨类型混排
type Feed struct {
	Zip      string        `json:"zip,omitempty"`
	Radius   float64       `json:"radiusMiles"`
	Filtered bool          `json:"filtered"`
	Events   []FeedEvent   `json:"events"`
	Postings []FeedPosting `json:"postings"`
	Products []FeedProduct `json:"products"`
}

// Analytics 平台级只读汇总
type Analytics struct {
	TotalUsers     int64 `json:"totalUsers"`
	TotalOrders    int64 `json:"totalOrders"`
	GMVCents       int64 `json:"gmvCents"`
	TotalBookings  int64 `json:"totalBookings"`
	ReportsPending int64 `json:"reportsPending"`
}
