package transport

import (
	"context"
	"strings"
)

// Recorder is a scripted Sender for tests. Responses are played in the
// order they were enqueued; when the script runs out, Default is
// returned. Every request is recorded for assertions.
//
// Recorder is not safe for concurrent use; the commands it serves run
// their remote calls sequentially.
type Recorder struct {
	Calls   []Request
	Default Response

	script []stub
}

type stub struct {
	resp Response
	err  error
}

// NewRecorder creates a Recorder whose unscripted default is 200 "{}".
func NewRecorder() *Recorder {
	return &Recorder{Default: Response{StatusCode: 200, Body: []byte("{}")}}
}

// Enqueue appends one scripted response.
func (r *Recorder) Enqueue(resp Response) *Recorder {
	r.script = append(r.script, stub{resp: resp})
	return r
}

// EnqueueStatus appends one scripted response with the given status and
// body text.
func (r *Recorder) EnqueueStatus(status int, body string) *Recorder {
	return r.Enqueue(Response{StatusCode: status, Body: []byte(body)})
}

// EnqueueError appends one scripted network-level failure.
func (r *Recorder) EnqueueError(err error) *Recorder {
	r.script = append(r.script, stub{err: err})
	return r
}

// Send records the request and plays the next scripted response.
func (r *Recorder) Send(_ context.Context, req Request) (Response, error) {
	r.Calls = append(r.Calls, req)
	if len(r.script) == 0 {
		return r.Default, nil
	}
	next := r.script[0]
	r.script = r.script[1:]
	if next.err != nil {
		return Response{}, next.err
	}
	return next.resp, nil
}

// CallCount returns the number of recorded requests.
func (r *Recorder) CallCount() int {
	return len(r.Calls)
}

// CallsTo returns the recorded requests whose URL contains the fragment.
func (r *Recorder) CallsTo(fragment string) []Request {
	var out []Request
	for _, call := range r.Calls {
		if strings.Contains(call.URL, fragment) {
			out = append(out, call)
		}
	}
	return out
}
