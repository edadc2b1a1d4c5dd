package out

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/restakehq/restake-agent/internal/message"
)

const EnvelopeVersion = "v1"

// Envelope is the machine-readable frame around one turn's replies.
type Envelope struct {
	Version string          `json:"version"`
	Success bool            `json:"success"`
	Replies []message.Reply `json:"replies,omitempty"`
	Error   *ErrorBody      `json:"error"`
	Meta    EnvelopeMeta    `json:"meta"`
}

type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type EnvelopeMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Command   string    `json:"command"`
}

// Render writes the envelope in the configured output mode. Plain mode prints
// only the reply texts, one block per reply; json mode emits the full frame.
func Render(w io.Writer, env Envelope, outputMode string) error {
	env.Version = EnvelopeVersion
	if outputMode == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(env)
	}

	if env.Error != nil {
		_, err := fmt.Fprintln(w, env.Error.Message)
		return err
	}
	for _, reply := range env.Replies {
		if _, err := fmt.Fprintln(w, reply.Text); err != nil {
			return err
		}
	}
	return nil
}
