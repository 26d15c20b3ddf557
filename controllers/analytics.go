package controllers

import (
	"math"
	"math/rand"
	"sort"
	"time"
)

// Derived engagement statistics. Everything in this file is a pure
// transformation over already-fetched post and comment state; nothing
// here mutates the store.

// viewSpreadDays is the window a post's lifetime views are assumed to be
// spread over when synthesizing a daily series.
const viewSpreadDays = 30

// baseReadSeconds is the fixed floor of the time-on-content estimate.
const baseReadSeconds = 120

// estimatedTimeSeconds approximates how long a reader spends on a post:
// a fixed two-minute base plus one second per ten characters of content.
// A stand-in for real session telemetry.
func estimatedTimeSeconds(contentLength int) int64 {
	return baseReadSeconds + int64(contentLength)/10
}

// engagementRate is the percentage of views that produced a reaction or
// a comment. Zero when the posts were never viewed.
func engagementRate(likes, dislikes, comments, views int64) float64 {
	if views == 0 {
		return 0
	}
	return 100 * float64(likes+dislikes+comments) / float64(views)
}

// postStat carries the derived per-post metrics for dashboards.
type postStat struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	Likes         int64     `json:"likes"`
	Dislikes      int64     `json:"dislikes"`
	Comments      int64     `json:"comments"`
	Views         int64     `json:"views"`
	EstimatedTime int64     `json:"estimated_time_seconds"`
}

func (s postStat) engagement() int64 {
	return s.Likes + s.Dislikes + s.Comments
}

// topPosts ranks stats by engagement descending and returns up to n
// entries, keeping only posts that saw any engagement or views. Ties
// preserve the input order, which is newest-first.
func topPosts(stats []postStat, n int) []postStat {
	ranked := make([]postStat, 0, len(stats))
	for _, s := range stats {
		if s.engagement() > 0 || s.Views > 0 {
			ranked = append(ranked, s)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].engagement() > ranked[j].engagement()
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// seriesPoint is one day of the synthesized view series.
type seriesPoint struct {
	Date  string `json:"date"`
	Views int64  `json:"views"`
}

// dailyViewSeries produces a 30-point daily view-count series ending at
// today. Each post's lifetime views are distributed evenly over the 30
// days following its creation, with the remainder spread one view per
// day over the earliest days so the window sums to the lifetime count;
// contributions are summed per calendar day. Days after today
// contribute nothing.
func dailyViewSeries(stats []postStat, today time.Time) []seriesPoint {
	todayMid := midnight(today)
	series := make([]seriesPoint, viewSpreadDays)
	for i := range series {
		day := todayMid.AddDate(0, 0, i-viewSpreadDays+1)
		series[i].Date = day.Format("2006-01-02")
		for _, s := range stats {
			created := midnight(s.CreatedAt)
			offset := int(day.Sub(created).Hours() / 24)
			if offset < 0 || offset >= viewSpreadDays {
				continue
			}
			series[i].Views += s.Views / viewSpreadDays
			if int64(offset) < s.Views%viewSpreadDays {
				series[i].Views++
			}
		}
	}
	return series
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// viewEvent is one synthesized entry of a post's view history. The
// history is illustrative simulation, not recorded telemetry.
type viewEvent struct {
	ViewedAt     time.Time `json:"viewed_at"`
	DwellSeconds int       `json:"dwell_seconds"`
}

// synthesizeViewHistory generates a plausible view history for a post
// from a caller-supplied pseudo-random source. The entry count is
// min(views, max(daysSinceCreation, 10)); timestamps are weighted
// toward recency by squaring the uniform draw.
func synthesizeViewHistory(rng *rand.Rand, views int64, createdAt, now time.Time) []viewEvent {
	if views <= 0 || !createdAt.Before(now) {
		return []viewEvent{}
	}
	days := int64(now.Sub(createdAt).Hours() / 24)
	count := max64(days, 10)
	if views < count {
		count = views
	}

	age := now.Sub(createdAt)
	events := make([]viewEvent, 0, count)
	for i := int64(0); i < count; i++ {
		frac := rng.Float64()
		back := time.Duration(math.Pow(frac, 2) * float64(age))
		events = append(events, viewEvent{
			ViewedAt:     now.Add(-back),
			DwellSeconds: 30 + rng.Intn(270),
		})
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ViewedAt.Before(events[j].ViewedAt) })
	return events
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
