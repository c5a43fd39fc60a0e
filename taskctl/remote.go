package taskctl

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bnstruct/pebl/result"
)

// Marshaler is the wire side of learner.Portable that Remote needs: a task
// that can gob-encode itself for shipping to a worker process. Remote
// depends on this narrower interface rather than learner.Portable directly
// so taskctl never imports learner (learner already depends on nothing in
// this package, and keeping it that way avoids an import cycle).
type Marshaler interface {
	Marshal() ([]byte, error)
}

// Remote ships each task's gob encoding to Endpoint over HTTP POST and
// decodes a gob-encoded result.Result from the response body (spec.md §5
// "shipped to a remote worker and the result shipped back"), the same
// submit/run/retrieve shape as
// original_source/src/pebl/taskcontroller/ipy1.py's runtask_picklestr, with
// gob standing in for pickle and a plain HTTP POST standing in for the
// IPython1 engine queue.
type Remote struct {
	Endpoint string
	Client   *http.Client // nil means http.DefaultClient
	Timeout  time.Duration
}

// Run ships every task to Endpoint and collects the decoded results, in
// order, stopping at the first error. Every task must also implement
// Marshaler; a task that doesn't is a programming error, not a runtime
// condition, so Run returns an error rather than panicking.
func (r Remote) Run(tasks []Task) ([]*result.Result, error) {
	client := r.Client
	if client == nil {
		client = http.DefaultClient
		if r.Timeout > 0 {
			client = &http.Client{Timeout: r.Timeout}
		}
	}

	results := make([]*result.Result, len(tasks))
	for i, t := range tasks {
		m, ok := t.(Marshaler)
		if !ok {
			return nil, fmt.Errorf("taskctl: task %d does not implement Marshaler", i)
		}

		payload, err := m.Marshal()
		if err != nil {
			return nil, fmt.Errorf("taskctl: marshal task %d: %w", i, err)
		}

		res, err := r.dispatch(client, payload)
		if err != nil {
			return nil, fmt.Errorf("taskctl: dispatch task %d: %w", i, err)
		}
		results[i] = res
	}
	return results, nil
}

func (r Remote) dispatch(client *http.Client, payload []byte) (*result.Result, error) {
	resp, err := client.Post(r.Endpoint, "application/octet-stream", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("worker returned %d: %s", resp.StatusCode, body)
	}

	var res result.Result
	if err := gob.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode worker response: %w", err)
	}
	return &res, nil
}

// Decoder reconstructs a Task from the bytes a Marshaler produced. Unlike
// Python's pickle, gob cannot recover a concrete type from an encoded value
// alone, so a worker must know in advance which learner type it serves;
// Decoder is how ServeWorker is told that.
type Decoder func([]byte) (Task, error)

// ServeWorker builds the worker-side HTTP handler for Remote: it decodes
// the request body with decode, runs the task, and gob-encodes the result
// back to the caller. The caller chooses one Decoder per endpoint (e.g. one
// route per learner type) since a single handler cannot serve mixed learner
// types without a type tag Remote does not send.
func ServeWorker(decode Decoder) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		task, err := decode(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		res, err := task.Run()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/octet-stream")
		if err := gob.NewEncoder(w).Encode(res); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
