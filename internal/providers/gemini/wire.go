package gemini

import (
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
)

type part struct {
	Text    string `json:"text,omitempty"`
	Thought bool   `json:"thought,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type request struct {
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Contents          []content `json:"contents"`
}

type candidate struct {
	Content      *content `json:"content"`
	FinishReason string   `json:"finishReason"`
}

type response struct {
	Candidates     []candidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// newRequest maps the conversation onto user and model turns. Turns before
// the first user message (the greeting) are not part of the exchange.
func newRequest(instruction string, history []types.ChatMessage, prompt string) request {
	req := request{Contents: make([]content, 0, len(history)+1)}
	if instruction != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: instruction}}}
	}

	seenUser := false
	for _, msg := range history {
		if msg.Text == "" || msg.Failed {
			continue
		}
		role := "model"
		if msg.Sender == types.SenderUser {
			role = "user"
			seenUser = true
		}
		if !seenUser {
			continue
		}
		req.Contents = append(req.Contents, content{Role: role, Parts: []part{{Text: msg.Text}}})
	}

	req.Contents = append(req.Contents, content{Role: "user", Parts: []part{{Text: prompt}}})
	return req
}

// text concatenates the visible parts of the first candidate
func (r *response) text() string {
	if len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return ""
	}
	var out string
	for _, p := range r.Candidates[0].Content.Parts {
		if !p.Thought {
			out += p.Text
		}
	}
	return out
}

func (r *response) finishReason() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	return r.Candidates[0].FinishReason
}
