// Package core sequences the tabular pipeline for uploaded files.
//
// This package is the heart of tabconv, containing the per-file flow
// independent of any UI or transport layer. It is used by the HTTP handlers,
// the CLI, and tests without modification.
//
// # Pipeline
//
// Every uploaded file runs through the same stages, each one a pure function
// from the packages below core:
//
//  1. Detect the format from the file name ([tabio.DetectFormat])
//  2. Load the bytes into a [table.Table] ([tabio.Load])
//  3. Apply cleaning operations in the requested order ([clean.Apply])
//  4. Project the requested columns ([table.Project])
//  5. Serialize to the target format ([tabio.Serialize])
//
// The working table is threaded through the stages by reassignment; no stage
// mutates its input. A file never shares a table with another file.
//
// # Batches
//
// [Service.ProcessBatch] runs files in parallel, bounded by
// [config.UploadConfig.MaxConcurrent]. A failing file is recorded in its own
// [FileOutcome] and never stops the rest of the batch. Files with an
// unsupported extension are reported as skipped rather than failed.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE006: File errors (size, parsing, empty, batch size)
//   - FMT001: Unsupported format
//   - COL001-COL005: Column selection errors
//   - SER001, OPS001, CHT001: Serialization, cleaning and chart errors
//   - UPL002-UPL005: Capacity, cancellation and timeouts
package core
