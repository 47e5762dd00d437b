package insights

import (
	"time"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
)

// DayActivity is the number of dreams recorded on one calendar day.
type DayActivity struct {
	Date  string `json:"date"`
	Day   string `json:"day"`
	Count int    `json:"count"`
	Lucid bool   `json:"lucid"`
}

// WeeklyActivity buckets dreams by DreamDate over the seven days ending at
// now, oldest first.
func WeeklyActivity(dreams []models.Dream, now time.Time) []DayActivity {
	days := make([]DayActivity, 7)
	index := map[string]int{}
	for i := 0; i < 7; i++ {
		d := now.AddDate(0, 0, i-6)
		key := d.Format(models.DateLayout)
		days[i] = DayActivity{Date: key, Day: d.Weekday().String()[:3]}
		index[key] = i
	}

	for _, d := range dreams {
		i, ok := index[d.DreamDate]
		if !ok {
			continue
		}
		days[i].Count++
		if d.DreamType == "lucid" {
			days[i].Lucid = true
		}
	}
	return days
}
