package templates

// Stats are the KPI values rendered on the home page before any API call
// completes.
type Stats struct {
	TotalDistance  float64
	TotalDuration  float64
	AvgPower       float64
	AvgHeartRate   float64
	TotalElevation float64
}

type HomeData struct {
	Stats       Stats
	RecordCount int
	Source      string // "sample", "upload" or "store"
}

// RaceResult is one row on the static results page.
type RaceResult struct {
	Race     string
	Date     string
	Location string
	Podium   [3]string
	Note     string
}

// SeasonResults is the fixed race history shown at /results.
var SeasonResults = []RaceResult{
	{
		Race:     "Regional Championship",
		Date:     "2025-03-15",
		Location: "Kigali",
		Podium:   [3]string{"Alice Mukamana", "Eric Niyonsaba", "Claudine Uwase"},
		Note:     "First place overall for the team.",
	},
	{
		Race:     "Hill Climb Classic",
		Date:     "2025-02-22",
		Location: "Musanze",
		Podium:   [3]string{"Patrick Byukusenge", "Jean Bosco Habimana", "Samuel Mugisha"},
		Note:     "Course record on the final ascent.",
	},
	{
		Race:     "Lakeside Criterium",
		Date:     "2025-02-08",
		Location: "Rubavu",
		Podium:   [3]string{"Divine Ingabire", "Valens Ndayisenga", "Alice Mukamana"},
		Note:     "",
	},
	{
		Race:     "Season Opener Time Trial",
		Date:     "2025-01-18",
		Location: "Huye",
		Podium:   [3]string{"Eric Niyonsaba", "Samuel Mugisha", "Patrick Byukusenge"},
		Note:     "Three riders inside the top five.",
	},
}
