package chat

import (
	"context"
	"errors"
	"fmt"

	"samarkand-dashboard/internal/common/logger"
	"samarkand-dashboard/internal/common/metrics"
)

// Outcome tells where a reply came from.
type Outcome string

const (
	OutcomeModel    Outcome = "model"
	OutcomeFallback Outcome = "fallback"
)

// Result is the answer to one chat message. Cause is set when the model
// could not be used and the reply is a fallback.
type Result struct {
	Reply   string
	Outcome Outcome
	Cause   error
}

// Responder answers a single message with no conversation memory.
type Responder struct {
	completer Completer
	logger    logger.Logger
}

func NewResponder(completer Completer, log logger.Logger) *Responder {
	return &Responder{
		completer: completer,
		logger:    log.WithFields(map[string]interface{}{"component": "chat-responder"}),
	}
}

// SystemPrompt embeds the data context and answering guidance.
func SystemPrompt(contextText string) string {
	return fmt.Sprintf(`You are a data analyst assistant for a dashboard about hospitals, schools and preschools in the Samarkand region of Uzbekistan.
You have access to the following data summary:

%s

Guidelines:
- Answer using only the data above; say so when it does not contain the answer.
- Quote numbers with at most 2 decimals.
- Use a markdown table when comparing several facilities or regions.
- Keep answers short and clear.`, contextText)
}

// Respond asks the model and degrades to Fallback on any failure. It never
// returns an error; the failure is reported in Result.Cause.
func (r *Responder) Respond(ctx context.Context, message, contextText string) Result {
	answer, err := r.completer.Complete(ctx, SystemPrompt(contextText), message)
	if err == nil {
		metrics.ChatReplies.WithLabelValues(string(OutcomeModel)).Inc()
		return Result{Reply: FormatTable(answer), Outcome: OutcomeModel}
	}

	fields := map[string]interface{}{"error": err.Error()}
	if errors.Is(err, ErrModelUnavailable) {
		r.logger.Debug("no model configured, using fallback reply", fields)
	} else {
		r.logger.Warn("completion failed, using fallback reply", fields)
	}

	metrics.ChatReplies.WithLabelValues(string(OutcomeFallback)).Inc()
	return Result{Reply: Fallback(message), Outcome: OutcomeFallback, Cause: err}
}
