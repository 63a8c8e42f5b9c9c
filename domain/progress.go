package domain

import "io"

// ProgressManager reports batch-generation progress to the user. A single
// task ("generate") is tracked at a time; flesh's batch generator drives
// it from spec §4.3's "Produce N CFGs ... after a time budget without a
// new distinct CFG, return what was collected" loop.
type ProgressManager interface {
	Initialize(total int)
	StartTask(taskName string)
	UpdateProgress(taskName string, processed, total int)
	CompleteTask(taskName string, success bool)
	SetWriter(writer io.Writer)
	IsInteractive() bool
	Close()
}
