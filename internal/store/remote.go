package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Result codes a record backend may attach to a failed item.
const (
	CodeNotFound   = "NOT_FOUND"
	CodeValidation = "VALIDATION"
)

// RemoteConfig points a Remote store at a record backend.
type RemoteConfig struct {
	BaseURL   string
	ProjectID string
	PublicKey string
	Timeout   time.Duration
}

// Remote is an EntityStore backed by an HTTP record service.
type Remote[T any] struct {
	kind Kind[T]
	cfg  RemoteConfig
	HTTP *http.Client
	now  func() time.Time
}

// NewRemote creates a remote store for kind.
func NewRemote[T any](kind Kind[T], cfg RemoteConfig) *Remote[T] {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Remote[T]{
		kind: kind,
		cfg:  cfg,
		HTTP: &http.Client{Timeout: cfg.Timeout},
		now:  time.Now,
	}
}

type fetchResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    []json.RawMessage `json:"data"`
}

type getResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type itemResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

type mutateResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Results []itemResult `json:"results"`
}

// List fetches every record of the table.
func (r *Remote[T]) List(ctx context.Context) ([]T, error) {
	var out fetchResponse
	if err := r.do(ctx, http.MethodGet, r.recordsURL(), nil, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, r.rejected("list", out.Message)
	}
	items := make([]T, 0, len(out.Data))
	for _, raw := range out.Data {
		v, err := r.decode(raw)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

// Get fetches a single record.
func (r *Remote[T]) Get(ctx context.Context, id int) (T, error) {
	var zero T
	var out getResponse
	err := r.do(ctx, http.MethodGet, r.recordsURL()+"/"+strconv.Itoa(id), nil, &out)
	var terr *TransportError
	if errors.As(err, &terr) && terr.Status == http.StatusNotFound {
		return zero, r.kind.notFound(id)
	}
	if err != nil {
		return zero, err
	}
	if !out.Success || len(out.Data) == 0 || string(out.Data) == "null" {
		return zero, r.kind.notFound(id)
	}
	return r.decode(out.Data)
}

// Create validates the draft locally and sends it as a one-record batch.
func (r *Remote[T]) Create(ctx context.Context, draft T) (T, error) {
	var zero T
	prepared, err := r.kind.prepare(draft, nil, r.now())
	if err != nil {
		return zero, err
	}
	results, err := r.mutate(ctx, http.MethodPost, []T{prepared})
	if err != nil {
		return zero, err
	}
	return r.single("create", results, r.kind.ID(draft))
}

// Update sends the full record for id. Defaults for creation-assigned fields
// are resolved against the stored record.
func (r *Remote[T]) Update(ctx context.Context, id int, draft T) (T, error) {
	var zero T
	prev, err := r.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	prepared, err := r.kind.prepare(draft, &prev, r.now())
	if err != nil {
		return zero, err
	}
	r.kind.SetID(&prepared, id)
	results, err := r.mutate(ctx, http.MethodPut, []T{prepared})
	if err != nil {
		return zero, err
	}
	return r.single("update", results, id)
}

// Delete removes id on the backend.
func (r *Remote[T]) Delete(ctx context.Context, id int) (bool, error) {
	body := map[string][]int{"RecordIds": {id}}
	var out mutateResponse
	if err := r.do(ctx, http.MethodDelete, r.recordsURL(), body, &out); err != nil {
		return false, err
	}
	if !out.Success {
		return false, r.rejected("delete", out.Message)
	}
	if len(out.Results) == 0 {
		return false, r.kind.notFound(id)
	}
	for _, res := range out.Results {
		if !res.Success {
			return false, r.itemError(res, id)
		}
	}
	return true, nil
}

// CreateBatch sends all valid drafts in one request. Drafts that fail local
// validation are reported as failures without being sent.
func (r *Remote[T]) CreateBatch(ctx context.Context, drafts []T) (BatchResult[T], error) {
	return r.batch(ctx, http.MethodPost, drafts, func(it T) (T, error) {
		return r.kind.prepare(it, nil, r.now())
	})
}

// UpdateBatch sends all valid items in one request.
func (r *Remote[T]) UpdateBatch(ctx context.Context, items []T) (BatchResult[T], error) {
	return r.batch(ctx, http.MethodPut, items, func(it T) (T, error) {
		prev, err := r.Get(ctx, r.kind.ID(it))
		if err != nil {
			return it, err
		}
		return r.kind.prepare(it, &prev, r.now())
	})
}

func (r *Remote[T]) batch(ctx context.Context, method string, items []T, prepare func(T) (T, error)) (BatchResult[T], error) {
	res := BatchResult[T]{Succeeded: []T{}, Failed: []BatchFailure{}}
	send := make([]T, 0, len(items))
	index := make([]int, 0, len(items))
	for i, it := range items {
		p, err := prepare(it)
		if err != nil {
			res.Failed = append(res.Failed, failureFor(i, r.kind.ID(it), err))
			continue
		}
		r.kind.SetID(&p, r.kind.ID(it))
		send = append(send, p)
		index = append(index, i)
	}
	if len(send) > 0 {
		results, err := r.mutate(ctx, method, send)
		if err != nil {
			return res, err
		}
		for j, i := range index {
			if j >= len(results) {
				res.Failed = append(res.Failed, BatchFailure{Index: i, ID: r.kind.ID(items[i]), Message: "no result returned"})
				continue
			}
			item := results[j]
			if !item.Success {
				res.Failed = append(res.Failed, BatchFailure{Index: i, ID: r.kind.ID(items[i]), Message: r.itemError(item, r.kind.ID(items[i])).Error()})
				continue
			}
			v, err := r.decode(item.Data)
			if err != nil {
				res.Failed = append(res.Failed, failureFor(i, r.kind.ID(items[i]), err))
				continue
			}
			res.Succeeded = append(res.Succeeded, v)
		}
	}
	return res, batchError(r.kind.Name, res)
}

func (r *Remote[T]) mutate(ctx context.Context, method string, items []T) ([]itemResult, error) {
	records := make([]Record, len(items))
	for i, it := range items {
		rec := r.kind.Codec.Encode(it)
		if method == http.MethodPost {
			delete(rec, "Id")
		}
		records[i] = rec
	}
	var out mutateResponse
	if err := r.do(ctx, method, r.recordsURL(), map[string]any{"records": records}, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, r.rejected(method, out.Message)
	}
	return out.Results, nil
}

func (r *Remote[T]) single(op string, results []itemResult, id int) (T, error) {
	var zero T
	for _, res := range results {
		if !res.Success {
			return zero, r.itemError(res, id)
		}
	}
	if len(results) == 0 {
		return zero, r.rejected(op, "no "+r.kind.Name+" returned")
	}
	return r.decode(results[0].Data)
}

func (r *Remote[T]) itemError(res itemResult, id int) error {
	msg := res.Message
	if msg == "" {
		msg = "rejected by backend"
	}
	switch res.Code {
	case CodeNotFound:
		return r.kind.notFound(id)
	case CodeValidation:
		return &ValidationError{Entity: r.kind.Name, Fields: map[string]string{"record": msg}}
	default:
		return fmt.Errorf("%s %d: %s", r.kind.Name, id, msg)
	}
}

func (r *Remote[T]) rejected(op, msg string) error {
	if msg == "" {
		msg = "request unsuccessful"
	}
	return &TransportError{Op: r.kind.Name + " " + op, URL: r.recordsURL(), Err: errors.New(msg)}
}

func (r *Remote[T]) decode(raw json.RawMessage) (T, error) {
	var zero T
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return zero, &TransportError{Op: "decode " + r.kind.Name, URL: r.recordsURL(), Err: err}
	}
	v, err := r.kind.Codec.Decode(rec)
	if err != nil {
		return zero, &TransportError{Op: "decode " + r.kind.Name, URL: r.recordsURL(), Err: err}
	}
	return v, nil
}

func (r *Remote[T]) recordsURL() string {
	return r.cfg.BaseURL + "/tables/" + r.kind.Table + "/records"
}

func (r *Remote[T]) do(ctx context.Context, method, url string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Apper-Project-Id", r.cfg.ProjectID)
	req.Header.Set("X-Apper-Public-Key", r.cfg.PublicKey)

	resp, err := r.HTTP.Do(req)
	if err != nil {
		return &TransportError{Op: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &TransportError{Op: method, URL: url, Status: resp.StatusCode, Err: errors.New(string(bodyBytes))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: method, URL: url, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
