package sink

import (
	"time"

	"github.com/goccy/go-json"
)

type deadLetter struct {
	Error      string `json:"error"`
	Original   any    `json:"original"`
	Source     string `json:"source"`
	ReceivedAt string `json:"receivedAt"`
}

// DeadLetter wraps a rejected payload into a DLQ message. Payloads that are
// not valid JSON are embedded as a string.
func DeadLetter(topic, source string, original []byte, cause error, receivedAt time.Time) (Message, error) {
	dl := deadLetter{
		Error:      cause.Error(),
		Original:   string(original),
		Source:     source,
		ReceivedAt: receivedAt.UTC().Format(time.RFC3339Nano),
	}
	if json.Valid(original) {
		dl.Original = json.RawMessage(original)
	}
	buf, err := json.Marshal(dl)
	if err != nil {
		return Message{}, err
	}
	return Message{Topic: topic, Key: []byte("invalid"), Value: buf, ReceivedAt: receivedAt}, nil
}
