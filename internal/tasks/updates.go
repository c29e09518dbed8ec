package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	QueueRecords Phase = iota
	ExportRecord
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case QueueRecords:
		return "queue_records"
	case ExportRecord:
		return "export_record"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func queueRecordsUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   QueueRecords,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Exporting %d records...", total),
	}
}

func exportCompletedUpdate(step, total int, res RecordResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportRecord,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✓ %s (%d files)", res.Title, len(res.Files)),
		Data:    res,
	}
}

func exportFailedUpdate(step, total int, res RecordResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportRecord,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✗ %s: %v", res.Title, res.Err),
		Data:    res,
	}
}

func writeManifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing manifest to %s", path),
	}
}
