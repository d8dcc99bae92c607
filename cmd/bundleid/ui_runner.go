package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"bundleid/internal/pipeline"
	"bundleid/internal/ui"
)

// uiMode selects the progress view of assign.
type uiMode uint8

const (
	uiAuto uiMode = iota // on when stderr is a terminal and --quiet is off
	uiOn
	uiOff
)

var uiModes = map[string]uiMode{"": uiAuto, "auto": uiAuto, "on": uiOn, "off": uiOff}

func parseUIMode(value string) (uiMode, error) {
	mode, ok := uiModes[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return uiAuto, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
	return mode, nil
}

// enabled reports whether the view is drawn. It draws on stderr because the
// report owns stdout.
func (m uiMode) enabled(quiet bool) bool {
	switch m {
	case uiOn:
		return true
	case uiOff:
		return false
	}
	return !quiet && isTerminal(os.Stderr)
}

type assignOutcome struct {
	result pipeline.Result
	err    error
}

func runAssignWithUI(ctx context.Context, title string, req *pipeline.Request) (pipeline.Result, error) {
	if req == nil {
		return pipeline.Result{}, fmt.Errorf("missing assign request")
	}
	events := make(chan pipeline.Event, 64)
	outcomeCh := make(chan assignOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = pipeline.ChannelSink{Ch: events}
		res, err := pipeline.Run(ctx, &reqCopy)
		outcomeCh <- assignOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, uiStages(req), events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}

// uiStages lists the stages a run reports. Without records only the two
// passes run.
func uiStages(req *pipeline.Request) []pipeline.Stage {
	if req.Records != nil {
		return pipeline.Stages
	}
	return []pipeline.Stage{pipeline.StageModules, pipeline.StageChunks}
}
