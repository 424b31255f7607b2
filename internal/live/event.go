package live

const (
	EventInvalidate = "invalidate"
	EventShutdown   = "shutdown"
)

type Event struct {
	Type string `json:"type"`
	Key  string `json:"key,omitempty"`
}
