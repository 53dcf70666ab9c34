package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/iov-one/yieldshift/errors"
	"github.com/iov-one/yieldshift/yieldtest/assert"
)

func TestCmdSimulate(t *testing.T) {
	var out bytes.Buffer
	assert.Nil(t, cmdSimulate(nil, &out, []string{"-scenario", "testdata/scenario.yaml"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, 6, len(lines))
	assert.Equal(t, []string{"TIME", "ACTION", "USER", "HEDGER", "RATIO", "OPTIMAL", "ALLOCATION", "PHASE"}, strings.Fields(lines[0]))

	// The eligible sizes shrink with the time since the last update, which
	// moves the ratio slightly.
	wantRatios := []string{"100000", "101012", "101012"}
	wantAllocations := []string{"5100", "5200", "5300"}
	for i, want := range wantAllocations {
		row := strings.Fields(lines[i+1])
		assert.Equal(t, "update", row[1])
		assert.Equal(t, wantRatios[i], row[4])
		assert.Equal(t, "9000", row[5])
		assert.Equal(t, want, row[6])
		assert.Equal(t, "adjusting", row[7])
	}

	yield := strings.Fields(lines[4])
	assert.Equal(t, "2024-01-01T03:00:00Z", yield[0])
	assert.Equal(t, []string{"yield", "1000", "530", "470"}, yield[1:5])

	// Balanced pools send the allocation back toward the base.
	last := strings.Fields(lines[5])
	assert.Equal(t, "10000", last[4])
	assert.Equal(t, "5000", last[5])
	assert.Equal(t, "5200", last[6])
}

func TestRunScenarioErrors(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	cases := map[string]struct {
		sc      scenario
		wantErr *errors.Error
	}{
		"missing start": {
			sc:      scenario{},
			wantErr: errors.ErrEmpty,
		},
		"unknown action": {
			sc: scenario{
				Start: start,
				Steps: []scenarioStep{{Action: "explode"}},
			},
			wantErr: errors.ErrInput,
		},
		"invalid duration": {
			sc: scenario{
				Start: start,
				Steps: []scenarioStep{{Action: "update", After: "soon"}},
			},
			wantErr: errors.ErrInput,
		},
		"invalid parameters": {
			sc: scenario{
				Start:  start,
				Params: scenarioParams{BaseBps: 9500, MaxBps: 9000},
			},
			wantErr: errors.ErrInvalidShiftRange,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var out bytes.Buffer
			err := runScenario(&out, tc.sc)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}
