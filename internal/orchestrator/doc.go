// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package orchestrator runs a list of vaccination tags through the automation interpreter
// one batch at a time, pausing after every batch but the last until the operator confirms
// the form was submitted.
//
// A run moves through the states Idle, Running, AwaitingConfirmation and ends in Completed,
// Cancelled or Failed. Stop interrupts the run in either active state.
package orchestrator
