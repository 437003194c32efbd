package model

import "time"

type ServiceSnapshot struct {
	SourceDir    string       `json:"source_dir"`
	DestDir      string       `json:"dest_dir"`
	WatcherState WatcherState `json:"watcher_state"`
	StartedAt    time.Time    `json:"started_at"`
	Moved        int          `json:"moved"`
	Vanished     int          `json:"vanished"`
	Failed       int          `json:"failed"`
	LastMove     *time.Time   `json:"last_move"`
	LastSweep    *time.Time   `json:"last_sweep"`
	Sweeps       int          `json:"sweeps"`
}
