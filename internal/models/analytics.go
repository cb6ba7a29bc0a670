package models

import "time"

// HourlyActivity is one hour bucket of the daily active-user breakdown.
type HourlyActivity struct {
	Hour            int   `json:"hour"`
	ActiveUsers     int64 `json:"activeUsers"`
	ReadingSessions int64 `json:"readingSessions"`
}

// DailyActiveUsers reports active-user counts for one calendar day, with
// rolling weekly/monthly windows ending on that day.
type DailyActiveUsers struct {
	Date            time.Time        `json:"date"`
	DAU             int64            `json:"dau"`
	WAU             int64            `json:"wau"`
	MAU             int64            `json:"mau"`
	HourlyBreakdown []HourlyActivity `json:"hourlyBreakdown"`
}

// ActivityPoint is one bucket of a reading-activity trend series.
type ActivityPoint struct {
	Date        time.Time `json:"date"`
	Sessions    int64     `json:"sessions"`
	ActiveUsers int64     `json:"activeUsers"`
}

// ReadingActivity is a bucketed trend of reading sessions over a window.
type ReadingActivity struct {
	Period        string          `json:"period"`
	StartDate     time.Time       `json:"startDate"`
	EndDate       time.Time       `json:"endDate"`
	DataPoints    []ActivityPoint `json:"dataPoints"`
	TotalActivity int64           `json:"totalActivity"`
	AverageDaily  float64         `json:"averageDailyActivity"`
	PeakActivity  int64           `json:"peakActivity"`
	PeakDate      string          `json:"peakDate,omitempty"`
}

// TrendPoint is one bucket of a user-activity trend series.
type TrendPoint struct {
	Date        time.Time `json:"date"`
	ActiveUsers int64     `json:"activeUsers"`
	Sessions    int64     `json:"sessions"`
}

// UserTrends is a bucketed trend of distinct active users over a window.
type UserTrends struct {
	Period       string       `json:"period"`
	StartDate    time.Time    `json:"startDate"`
	EndDate      time.Time    `json:"endDate"`
	DataPoints   []TrendPoint `json:"dataPoints"`
	TotalUsers   int64        `json:"totalUsers"`
	PeakUsers    int64        `json:"peakUsers"`
	PeakDate     string       `json:"peakDate,omitempty"`
	AverageDaily float64      `json:"averageDailyUsers"`
}

// AnalyticsSummary is the windowed key-metrics report. Each growth rate
// compares the window against the preceding window of equal length, in
// percent.
type AnalyticsSummary struct {
	StartDate            time.Time `json:"startDate"`
	EndDate              time.Time `json:"endDate"`
	Period               string    `json:"period"`
	ActiveUsers          int64     `json:"activeUsers"`
	UserGrowthRate       float64   `json:"userGrowthRate"`
	UniqueNovelsRead     int64     `json:"uniqueNovelsRead"`
	NovelGrowthRate      float64   `json:"novelGrowthRate"`
	TotalReadingSessions int64     `json:"totalReadingSessions"`
	SessionGrowthRate    float64   `json:"sessionGrowthRate"`
	TotalComments        int64     `json:"totalComments"`
	TotalReviews         int64     `json:"totalReviews"`
}

// TopNovel pairs a resolved novel with its read count from the local
// history store.
type TopNovel struct {
	Novel
	ReadCount int64 `json:"readCount"`
}

// TopContent lists the most-read novels per the local reading history.
type TopContent struct {
	GeneratedAt time.Time  `json:"generatedAt"`
	TopNovels   []TopNovel `json:"topNovels"`
}

// EngagementStatistics carries platform-wide comment and review totals
// from the engagement service.
type EngagementStatistics struct {
	TotalComments int64 `json:"totalComments"`
	TotalReviews  int64 `json:"totalReviews"`
}

// PlatformStatistics is the cross-service platform dashboard snapshot.
// Counts sourced from an unavailable upstream are reported as zero rather
// than failing the whole snapshot.
type PlatformStatistics struct {
	Timestamp            time.Time `json:"timestamp"`
	TotalNovels          int64     `json:"totalNovels"`
	DailyActiveUsers     int64     `json:"dailyActiveUsers"`
	WeeklyActiveUsers    int64     `json:"weeklyActiveUsers"`
	MonthlyActiveUsers   int64     `json:"monthlyActiveUsers"`
	TotalReadingSessions int64     `json:"totalReadingSessions"`
	UniqueNovelsRead     int64     `json:"uniqueNovelsRead"`
	TotalComments        int64     `json:"totalComments"`
	TotalReviews         int64     `json:"totalReviews"`
}
