package v1alpha1

type Status string

const (
	StatusDraft Status = "Draft"
)

// StringToStatus maps an empty status to Draft and keeps any other value.
func StringToStatus(s string) Status {
	if s == "" {
		return StatusDraft
	}
	return Status(s)
}
