package notify

// EventSource is the name registered with the system event log.
const EventSource = "FileMonitorService"
