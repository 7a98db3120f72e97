package build

// TestSummary holds the aggregated test outcomes of a build.
type TestSummary struct {
	Total  int
	Passed int
	Failed int
}

// Skipped returns the number of tests that neither passed nor failed.
func (s TestSummary) Skipped() int {
	return s.Total - s.Passed - s.Failed
}

// Outcomes returns the summary as a mapping of outcome to count.
func (s TestSummary) Outcomes() map[string]int {
	return map[string]int{
		"Total":   s.Total,
		"Passed":  s.Passed,
		"Failed":  s.Failed,
		"Skipped": s.Skipped(),
	}
}
