package gemini

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
)

const maxEventSize = 1 << 20

// readEvents decodes a server-sent event stream, yielding text increments
// until a finish reason arrives
func readEvents(r io.Reader, yield func(string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxEventSize)

	var data []string
	finished := false

	flush := func() error {
		if len(data) == 0 {
			return nil
		}
		payload := strings.Join(data, "\n")
		data = data[:0]

		done, err := handleEvent(payload, yield)
		if done {
			finished = true
		}
		return err
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if err := flush(); err != nil {
				return err
			}
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		default:
			// Comments, event names and ids carry nothing we use
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	if err := flush(); err != nil {
		return err
	}

	if !finished {
		return ErrStreamIncomplete
	}
	return nil
}

func handleEvent(payload string, yield func(string) error) (bool, error) {
	var resp response
	if err := sonic.UnmarshalString(payload, &resp); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	if resp.Error != nil {
		return false, &APIError{StatusCode: resp.Error.Code, Message: resp.Error.Message}
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return false, fmt.Errorf("%w: %s", ErrBlocked, resp.PromptFeedback.BlockReason)
	}

	if text := resp.text(); text != "" {
		if err := yield(text); err != nil {
			return false, err
		}
	}

	switch reason := resp.finishReason(); reason {
	case "":
		return false, nil
	case "STOP", "MAX_TOKENS":
		return true, nil
	default:
		return true, fmt.Errorf("%w: %s", ErrBlocked, reason)
	}
}
