// Package tasks runs long catalog operations with real-time progress reporting.
//
// # Export
//
// [Exporter.Export] writes every record to its own file in an output directory
// together with the record's image:
//
//   - A worker pool (default 5, at most 10 workers) writes one record per job
//   - Local images are decoded from their data URL and written next to the record
//   - Remote images are downloaded through a rate limiter when a downloader is set
//   - Failures are collected per record and never abort the run
//   - An export_manifest.json summarizing the run is written last
//
// # Progress Reporting
//
// All operations report through a [ProgressUpdate] channel. Sends use select
// with default so a slow or absent reader never blocks the export.
package tasks
