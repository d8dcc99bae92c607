package main

import (
	"fmt"
	"io"
	"time"

	"bundleid/internal/pipeline"
)

// printStageTimings writes one "<stage> <ms> ms" line per stage that ran.
func printStageTimings(out io.Writer, timings pipeline.Timings) {
	for _, stage := range pipeline.Stages {
		if timings.Has(stage) {
			fmt.Fprintf(out, "%-8s %.1f ms\n", stage, float64(timings.Duration(stage))/float64(time.Millisecond))
		}
	}
}
