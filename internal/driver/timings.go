package driver

import (
	"encoding/json"
	"fmt"

	"cstrlit/internal/diag"
	"cstrlit/internal/observ"
	"cstrlit/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// AppendTimings records the timer as an OBS6001 info diagnostic whose single
// note carries the phases as JSON. It is added even when bag is full.
func AppendTimings(bag *diag.Bag, timer *observ.Timer, path string) {
	if bag == nil || timer == nil {
		return
	}
	rep := timer.Report()
	payload := timingPayload{Kind: "build", Path: path, TotalMS: rep.TotalMS, Phases: rep.Phases}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if payload.Path != "" {
		msg = fmt.Sprintf("%s, %s", msg, payload.Path)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	entry := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, msg).
		WithNote(source.Span{}, string(data))

	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(bag.Len() + 1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
