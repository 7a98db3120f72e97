package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTestSummary_Outcomes(t *testing.T) {
	s := TestSummary{Total: 10, Passed: 7, Failed: 2}
	assert.Equal(t, 1, s.Skipped())
	assert.Equal(t, map[string]int{"Total": 10, "Passed": 7, "Failed": 2, "Skipped": 1}, s.Outcomes())
}

func TestTestSummary_Skipped(t *testing.T) {
	s := TestSummary{Total: 3, Passed: 3}
	assert.Equal(t, 0, s.Skipped())

	s = TestSummary{Total: 5, Failed: 1}
	assert.Equal(t, 4, s.Skipped())
}
