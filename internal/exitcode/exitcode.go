// Package exitcode defines the process exit codes used by the bookshelf CLI.
package exitcode

const (
	Success       = 0
	GeneralError  = 1
	ConfigError   = 2
	Precondition  = 3
	Declined      = 4
	EmptyBatch    = 5
	EmptyPlan     = 6
	ArchiveFailed = 7
	ToolNotFound  = 9

	// Extractor boundary failures get distinct codes so callers can tell
	// a bad start marker from a bad end marker without parsing stderr.
	StartNotFound = 10
	EndNotFound   = 11
)

// String returns a human-readable description of the exit code.
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case Precondition:
		return "Precondition failure"
	case Declined:
		return "Operator declined confirmation"
	case EmptyBatch:
		return "No files moved to quarantine"
	case EmptyPlan:
		return "No manifest entries matched the batch"
	case ArchiveFailed:
		return "Archiving quarantine batch failed"
	case ToolNotFound:
		return "Required external tool not found"
	case StartNotFound:
		return "Start marker not found"
	case EndNotFound:
		return "End marker not found"
	default:
		return "Unknown error"
	}
}
