// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package diag records the non-fatal findings of a model build.
//
// The merge, reference and resolution stages never abort on their own. They
// report what they found (a covariance violation, an unresolved reference, a
// required property that resolved to nothing) and carry on with a best-effort
// result. Every report is written to the slog logger carried by ctxlog and,
// when a Collector is attached to the context, recorded so that a driver can
// inspect the outcome after the build and decide whether a fatal finding
// should stop the whole run.
package diag
