package journal

import (
	"context"
	"sort"
	"time"
)

// EmotionCount pairs an emotion label with how often it appears.
type EmotionCount struct {
	Emotion string
	Count   int
}

// DayMood is the average sentiment of all entries written on one day.
type DayMood struct {
	Day     string // YYYY-MM-DD
	Average float64
	Entries int
}

// Stats aggregates the local mirror for the insights view.
type Stats struct {
	Entries          int
	Pending          int
	AverageSentiment float64
	Emotions         []EmotionCount
	Trend            []DayMood // oldest day first
	WeeklyDelta      float64   // last 7 days vs the 7 before, relative to the newest entry
	First            string    // timestamp of the oldest entry
	Last             string    // timestamp of the newest entry
}

// Stats computes insight aggregates over every locally stored entry. It works
// entirely offline.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	entries, err := s.store.ListEntries(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{Entries: len(entries)}
	if len(entries) == 0 {
		return stats, nil
	}

	counts := make(map[string]int)
	days := make(map[string]*DayMood)
	var total float64
	var newest time.Time
	stats.First = entries[0].Timestamp
	stats.Last = entries[0].Timestamp

	for _, entry := range entries {
		total += entry.Analysis.SentimentScore
		if entry.Pending {
			stats.Pending++
		}
		for _, emotion := range entry.Analysis.Emotions {
			counts[emotion]++
		}
		if entry.Timestamp < stats.First {
			stats.First = entry.Timestamp
		}
		if entry.Timestamp > stats.Last {
			stats.Last = entry.Timestamp
		}
		ts, err := time.Parse(time.RFC3339, entry.Timestamp)
		if err != nil {
			continue
		}
		day := ts.Format("2006-01-02")
		if days[day] == nil {
			days[day] = &DayMood{Day: day}
		}
		days[day].Average += entry.Analysis.SentimentScore
		days[day].Entries++
		if ts.After(newest) {
			newest = ts
		}
	}
	stats.AverageSentiment = total / float64(len(entries))

	for _, d := range days {
		d.Average /= float64(d.Entries)
		stats.Trend = append(stats.Trend, *d)
	}
	sort.Slice(stats.Trend, func(i, j int) bool { return stats.Trend[i].Day < stats.Trend[j].Day })
	stats.WeeklyDelta = weeklyDelta(stats.Trend, newest)

	for emotion, count := range counts {
		stats.Emotions = append(stats.Emotions, EmotionCount{Emotion: emotion, Count: count})
	}
	sort.Slice(stats.Emotions, func(i, j int) bool {
		if stats.Emotions[i].Count != stats.Emotions[j].Count {
			return stats.Emotions[i].Count > stats.Emotions[j].Count
		}
		return stats.Emotions[i].Emotion < stats.Emotions[j].Emotion
	})
	return stats, nil
}

// weeklyDelta compares the mean daily mood of the most recent seven days with
// the seven days before them. Zero when either window is empty.
func weeklyDelta(trend []DayMood, newest time.Time) float64 {
	if newest.IsZero() {
		return 0
	}
	cutRecent := newest.AddDate(0, 0, -7).Format("2006-01-02")
	cutPrior := newest.AddDate(0, 0, -14).Format("2006-01-02")

	var recentSum, priorSum float64
	var recentN, priorN int
	for _, d := range trend {
		switch {
		case d.Day > cutRecent:
			recentSum += d.Average
			recentN++
		case d.Day > cutPrior:
			priorSum += d.Average
			priorN++
		}
	}
	if recentN == 0 || priorN == 0 {
		return 0
	}
	return recentSum/float64(recentN) - priorSum/float64(priorN)
}
