package worker

import (
	"path"
	"time"
)

func getOutputKey(prefix string, task *Task) string {
	return path.Join(prefix, task.message.RequestID+".csv")
}

const RFC3339Micro = "2006-01-02T15:04:05.000000-07:00"

func getFormattedNow() string {
	return time.Now().UTC().Format(RFC3339Micro)
}
