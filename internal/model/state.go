package model

type WatcherState string

const (
	WatcherStopped        WatcherState = "STOPPED"
	WatcherActive         WatcherState = "ACTIVE"
	WatcherFaulted        WatcherState = "FAULTED"
	WatcherReinitializing WatcherState = "REINITIALIZING"
	WatcherFailed         WatcherState = "FAILED"
)
