package timeline

// Sample returns the reference clinical-trials timeline: four studies, two
// of which run concurrently.
func Sample() *Document {
	return &Document{
		Title: "Clinical trials",
		Epoch: "2000-01-01",
		Unit:  "month",
		Intervals: []Entry{
			{Title: "Study of Bendamustine", Start: 5, End: 50},
			{Title: "ASCT With Nivolumab", Start: 55, End: 85},
			{Title: "Study of Stockolm", Start: 70, End: 100},
			{Title: "Bortezomib", Start: 90, End: 115},
		},
	}
}

// SampleExtended returns a denser trials timeline that needs four lanes.
func SampleExtended() *Document {
	return &Document{
		Title: "Clinical trials (extended)",
		Epoch: "2000-01-01",
		Unit:  "month",
		Intervals: []Entry{
			{Title: "First one", Start: 5, End: 18},
			{Title: "Study of Bendamustine1", Start: 28, End: 46},
			{Title: "A long one", Start: 21, End: 100},
			{Title: "Another one", Start: 20, End: 49},
			{Title: "ASCT With Nivolumab", Start: 55, End: 85},
			{Title: "Study of Stockolm", Start: 75, End: 100},
			{Title: "The new drug study", Start: 70, End: 110},
			{Title: "Bortezomib", Start: 90, End: 115},
		},
	}
}
