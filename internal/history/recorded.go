package history

import (
	"context"
	"encoding/json"

	"github.com/cexll/swe-crew/internal/action"
)

// recordedAction forwards calls to the wrapped action and appends a step
// with the request payload and the resulting response before returning.
type recordedAction struct {
	inner     action.Action
	sink      Sink
	sessionID string
}

// Recorded composes an action with history recording for one session.
// The wrapping is explicit at the call site: whoever registers the
// action with the tool framework decides whether (and where) its
// invocations are recorded.
func Recorded(a action.Action, sink Sink, sessionID string) action.Action {
	return &recordedAction{inner: a, sink: sink, sessionID: sessionID}
}

func (r *recordedAction) Name() string { return r.inner.Name() }

func (r *recordedAction) Execute(ctx context.Context, raw json.RawMessage) (action.Response, error) {
	resp, err := r.inner.Execute(ctx, raw)
	if err != nil {
		// Requests rejected by validation never produced a response;
		// there is nothing to record.
		return resp, err
	}

	r.sink.Append(r.sessionID, Step{
		AgentAction: r.inner.Name(),
		Request:     raw,
		ToolOutput:  resp.Output,
		ReturnCode:  resp.ReturnCode,
	})
	return resp, nil
}
