package dispatch

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/bignyap/cloud-uploader/storage/api"
)

// Aggregate collects per-backend upload results from one fan-out. It is
// built fresh per request and serializes in registration order; Go maps do
// not preserve insertion order on their own.
type Aggregate struct {
	mu      sync.Mutex
	order   []api.BackendID
	results map[api.BackendID]api.UploadResult
}

func newAggregate(order []api.BackendID) *Aggregate {
	return &Aggregate{
		order:   order,
		results: make(map[api.BackendID]api.UploadResult, len(order)),
	}
}

func (a *Aggregate) set(id api.BackendID, res api.UploadResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results[id] = res
}

// Get returns the result recorded for id.
func (a *Aggregate) Get(id api.BackendID) (api.UploadResult, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	res, ok := a.results[id]
	return res, ok
}

// Len returns the number of recorded results.
func (a *Aggregate) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.results)
}

// Failed returns the number of recorded failures.
func (a *Aggregate) Failed() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, res := range a.results {
		if !res.Success {
			n++
		}
	}
	return n
}

// Backends returns the IDs with a recorded result, in registration order.
func (a *Aggregate) Backends() []api.BackendID {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]api.BackendID, 0, len(a.results))
	for _, id := range a.order {
		if _, ok := a.results[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// MarshalJSON writes the results as a JSON object keyed by backend, in
// registration order.
func (a *Aggregate) MarshalJSON() ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, id := range a.order {
		res, ok := a.results[id]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false

		key, err := json.Marshal(string(id))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(res)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
