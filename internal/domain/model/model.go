// Package model contains domain models passed between layers.
package model

// Country identifies a bidding participant.
type Country string

// The four participants of a simulation pass.
const (
	USA     Country = "USA"
	Germany Country = "Germany"
	China   Country = "China"
	Korea   Country = "Korea"
)

// BidRecord holds one participant's reference data and bid. The three
// competitor records are immutable; the Korea record gets the learner's
// price substituted on every scoring pass.
type BidRecord struct {
	Country          Country
	CreditRating     string
	CreditScore      int
	PerformanceRank  int
	PerformanceScore int
	TechnicalRank    int
	TechnicalScore   int
	CostMillion      float64
	BidPriceMillion  float64
}

// RankedResult is one row of a completed scoring pass.
// TotalScore is always the literal sum of the four component scores.
type RankedResult struct {
	Country          Country `json:"country"`
	PriceScore       int     `json:"price_score"`
	TechnicalScore   int     `json:"technical_score"`
	PerformanceScore int     `json:"performance_score"`
	CreditScore      int     `json:"credit_score"`
	TotalScore       int     `json:"total_score"`
	Rank             int     `json:"rank"`
	BidPriceMillion  float64 `json:"bid_price_million"`
}

// Role distinguishes learner and admin sessions.
type Role string

const (
	RoleLearner Role = "USER"
	RoleAdmin   Role = "ADMIN"
)
