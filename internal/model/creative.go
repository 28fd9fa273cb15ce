package model

// CreativeStatus はクリエイティブの配信状態を表す。
type CreativeStatus string

const (
	CreativeStatusPending  CreativeStatus = "pending"
	CreativeStatusActive   CreativeStatus = "active"
	CreativeStatusPaused   CreativeStatus = "paused"
	CreativeStatusArchived CreativeStatus = "archived"
	CreativeStatusError    CreativeStatus = "error"
)

// Creative は外部クリエイティブAPIから取得する広告クリエイティブを表す。
// このシステムは読み取り専用で、フィルタリングやソートは行わない。
type Creative struct {
	ID           string         `json:"id"`
	CraftID      string         `json:"craft_id"`
	Platform     string         `json:"platform"`
	SessionID    string         `json:"session_id"`
	Status       CreativeStatus `json:"status"`
	ErrorMessage map[string]any `json:"error_message"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
	IsDeleted    bool           `json:"is_deleted"`
	MetaCreative *MetaCreative  `json:"meta_creative,omitempty"`
}

// MetaCreative はMetaプラットフォーム固有のクリエイティブ情報を表す。
type MetaCreative struct {
	ID                    int64    `json:"id"`
	CreativeID            string   `json:"creative_id"`
	MetaCampaignID        *string  `json:"meta_campaign_id"`
	MetaAdsetID           *string  `json:"meta_adset_id"`
	MetaAdcreativeID      *string  `json:"meta_adcreative_id"`
	MetaAdID              *string  `json:"meta_ad_id"`
	CampaignName          *string  `json:"campaign_name"`
	CampaignObjective     *string  `json:"campaign_objective"`
	CampaignDailyBudget   *float64 `json:"campaign_daily_budget"`
	AdsetName             *string  `json:"adset_name"`
	AdsetBillingEvent     *string  `json:"adset_billing_event"`
	AdsetOptimizationGoal *string  `json:"adset_optimization_goal"`
	AdsetBidStrategy      *string  `json:"adset_bid_strategy"`
	AdsetBidAmount        *float64 `json:"adset_bid_amount"`
	AdsetDailyBudget      *float64 `json:"adset_daily_budget"`
	AdsetTargetingJSON    *string  `json:"adset_targeting_json"`
	AdTitle               *string  `json:"ad_title"`
	AdBody                *string  `json:"ad_body"`
	AdWebsiteURL          *string  `json:"ad_website_url"`
	AdCallToAction        *string  `json:"ad_call_to_action"`
}
