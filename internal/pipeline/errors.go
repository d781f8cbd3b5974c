package pipeline

import "errors"

var (
	// ErrStageActive is returned when a stage is activated while another
	// one is still active.
	ErrStageActive = errors.New("another stage is still active")

	// ErrStageOrder is returned when stages are activated out of order.
	ErrStageOrder = errors.New("stage activated out of order")

	// ErrStageNotActive is returned when finishing a stage that is not active.
	ErrStageNotActive = errors.New("stage is not active")

	// ErrNoReport is returned by Analyze when the pipeline completed without
	// producing a report (for example when it has no synthesis step).
	ErrNoReport = errors.New("pipeline produced no report")
)
