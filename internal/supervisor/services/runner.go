// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package services

import "context"

// Runnable is a component with a blocking, context-aware run loop.
// Satisfied by the websocket hub and the event relay.
type Runnable interface {
	Run(ctx context.Context) error
}

// RunnerService adapts a Runnable to suture.Service under a stable name.
type RunnerService struct {
	name     string
	runnable Runnable
}

// NewRunnerService wraps a run loop for supervision.
func NewRunnerService(name string, runnable Runnable) *RunnerService {
	return &RunnerService{name: name, runnable: runnable}
}

// Serve implements suture.Service.
func (s *RunnerService) Serve(ctx context.Context) error {
	return s.runnable.Run(ctx)
}

// String implements fmt.Stringer for supervisor logs.
func (s *RunnerService) String() string {
	return s.name
}
