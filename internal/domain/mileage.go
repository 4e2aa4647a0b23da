package domain

import "time"

// DailyMileage is one row of the mileage summary.
type DailyMileage struct {
	Date time.Time

	// Miles is the day's total rounded to one decimal place.
	Miles float64

	// Postcodes is the day's trail of outward codes in input order with
	// consecutive duplicates removed.
	Postcodes []string
}

// DateLabel returns the date formatted as DD-Mon-YYYY.
func (d DailyMileage) DateLabel() string {
	return d.Date.Format(DateLabelLayout)
}

// MileageSummary is the per-day mileage report for one uploaded file.
type MileageSummary struct {
	FileName   string
	Days       []DailyMileage
	TotalMiles float64
	Stats      IngestStats
}
