package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"cstrlit/internal/driver"
	"cstrlit/internal/ui"
)

type runOutcome struct {
	report *driver.Report
	err    error
}

func runWithUI(ctx context.Context, title string, req driver.Request) (*driver.Report, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	names := make([]string, len(req.Literals))
	for i, in := range req.Literals {
		names[i] = in.Name
	}

	go func() {
		reqCopy := req
		reqCopy.Progress = driver.ChannelSink{Ch: events}
		report, err := driver.Run(ctx, reqCopy)
		outcomeCh <- runOutcome{report: report, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, names, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// UI мог выйти раньше (ошибка, Ctrl+C): дочитываем события, чтобы воркеры не встали
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.report, uiErr
	}
	return outcome.report, outcome.err
}
