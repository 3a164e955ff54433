package settlement

// Status is the lifecycle state of a settlement. Financial fields are
// immutable after creation; only the status moves, and only forward.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusPaid       Status = "paid"
)

// NormalizeStatus validates and normalizes a status string.
func NormalizeStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusPending, StatusProcessing, StatusPaid:
		return Status(value), true
	default:
		return "", false
	}
}

// CanTransition reports whether moving from one status to another is a
// forward transition. Skipping processing is allowed.
func CanTransition(from, to Status) bool {
	return statusRank(to) > statusRank(from)
}

func statusRank(status Status) int {
	switch status {
	case StatusPending:
		return 1
	case StatusProcessing:
		return 2
	case StatusPaid:
		return 3
	default:
		return 0
	}
}
