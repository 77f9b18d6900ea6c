package dispatch

import (
	"context"
	"sync"
	"time"

	logapi "github.com/bignyap/cloud-uploader/logger/api"
	"github.com/bignyap/cloud-uploader/storage/api"
)

// DefaultTimeout bounds a single adapter invocation. The aggregate latency
// of a fan-out is therefore bounded by the slowest configured backend.
const DefaultTimeout = 60 * time.Second

// Dispatcher routes a single-backend request to the matching adapter, or
// fans a multi-backend request out to every configured adapter and collects
// the results. It holds no per-request state and is safe for concurrent use.
type Dispatcher struct {
	order    []api.BackendID
	adapters map[api.BackendID]api.BackendService
	timeout  time.Duration
	log      logapi.Logger
}

type Option func(*Dispatcher)

func WithTimeout(d time.Duration) Option {
	return func(dp *Dispatcher) {
		if d > 0 {
			dp.timeout = d
		}
	}
}

func WithLogger(l logapi.Logger) Option {
	return func(dp *Dispatcher) {
		if l != nil {
			dp.log = l.WithComponent("dispatch")
		}
	}
}

func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		adapters: map[api.BackendID]api.BackendService{},
		timeout:  DefaultTimeout,
		log:      &logapi.DefaultLogger{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register adds an adapter. Registration order defines fan-out invocation
// order and aggregate serialization order. A duplicate ID is ignored.
func (d *Dispatcher) Register(svc api.BackendService) {
	id := svc.ID()
	if _, dup := d.adapters[id]; dup {
		return
	}
	d.order = append(d.order, id)
	d.adapters[id] = svc
}

// Backends returns the registered backend IDs in registration order.
func (d *Dispatcher) Backends() []api.BackendID {
	out := make([]api.BackendID, len(d.order))
	copy(out, d.order)
	return out
}

// Configured reports whether an adapter is registered for id.
func (d *Dispatcher) Configured(id api.BackendID) bool {
	_, ok := d.adapters[id]
	return ok
}

// UploadOne delegates the upload to the adapter for id and returns its
// result unchanged. An unregistered id fails before reaching any adapter.
func (d *Dispatcher) UploadOne(ctx context.Context, id api.BackendID, req *api.UploadRequest) (api.UploadResult, error) {
	svc, ok := d.adapters[id]
	if !ok {
		return api.UploadResult{}, api.NotConfigured(id)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	res := svc.Upload(ctx, req)
	if !res.Success {
		d.log.Warn(ctx, "Backend upload failed",
			logapi.String("backend", string(id)),
			logapi.String("file", req.Name),
			logapi.String("reason", res.Message),
		)
	}
	return res, nil
}

// UploadAll invokes every registered adapter with the same request,
// concurrently. Each invocation reads the request through its own view and
// runs to completion or failure on its own; one backend failing never
// blocks the others.
func (d *Dispatcher) UploadAll(ctx context.Context, req *api.UploadRequest) *Aggregate {
	agg := newAggregate(d.order)

	var wg sync.WaitGroup
	for _, id := range d.order {
		svc := d.adapters[id]
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()
			agg.set(svc.ID(), svc.Upload(cctx, req))
		}()
	}
	wg.Wait()

	d.log.Info(ctx, "Fan-out upload finished",
		logapi.String("file", req.Name),
		logapi.Int("backends", agg.Len()),
		logapi.Int("failed", agg.Failed()),
	)
	return agg
}

// Listing is the outcome of one backend's list call within a fan-out.
type Listing struct {
	Backend api.BackendID
	Files   []api.FileDescriptor
	Err     error
}

// ListOne returns the file listing of the adapter for id. An unregistered
// id fails before reaching any adapter.
func (d *Dispatcher) ListOne(ctx context.Context, id api.BackendID) ([]api.FileDescriptor, error) {
	svc, ok := d.adapters[id]
	if !ok {
		return nil, api.NotConfigured(id)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return svc.List(ctx)
}

// ListAll fans the list call out to every registered adapter. Zero
// registered backends yields an empty mapping, not an error; a per-backend
// failure is recorded in its Listing.
func (d *Dispatcher) ListAll(ctx context.Context) map[api.BackendID]Listing {
	out := make(map[api.BackendID]Listing, len(d.order))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, id := range d.order {
		svc := d.adapters[id]
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()
			files, err := svc.List(cctx)
			mu.Lock()
			out[svc.ID()] = Listing{Backend: svc.ID(), Files: files, Err: err}
			mu.Unlock()
		}()
	}
	wg.Wait()
	return out
}
