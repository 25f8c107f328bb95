package domain

import "time"

// RunState is the stage of a season extraction run.
type RunState string

const (
	StateIdle           RunState = "idle"
	StateScanningRounds RunState = "scanning-rounds"
	StateFetchingSheets RunState = "fetching-sheets"
	StateReconciling    RunState = "reconciling"
	StateUnifying       RunState = "unifying"
	StateReady          RunState = "ready"
	StateFailed         RunState = "failed"
	StateCancelled      RunState = "cancelled"
)

// SheetFailure identifies one sheet that could not be extracted in a run.
type SheetFailure struct {
	Round    int    `json:"round"`
	Sheet    string `json:"sheet"`
	Kind     string `json:"kind"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error"`
}

type RoundSummary struct {
	Round     int `json:"round"`
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	// Retried counts sheets that needed more than one attempt, whatever the outcome.
	Retried int `json:"retried"`
	Failed  int `json:"failed"`
	// Skipped counts matches already extracted or without a sheet code.
	Skipped    int            `json:"skipped"`
	IndexError string         `json:"index_error,omitempty"`
	Failures   []SheetFailure `json:"failures,omitempty"`
}

type Run struct {
	ID         string         `json:"id"`
	SeasonKey  string         `json:"season_key"`
	SeasonName string         `json:"season_name"`
	State      RunState       `json:"state"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Error      string         `json:"error,omitempty"`
	Rounds     []RoundSummary `json:"rounds,omitempty"`
}
