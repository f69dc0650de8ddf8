package loki

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var ErrStopped = errors.New("loki pusher is stopped")

type Logger interface {
	Error(msg string, args ...any)
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {

	// TenantKey and TenantValue form an optional tenant header for multi-tenant Loki setups.
	TenantKey   string
	TenantValue string

	// Url of the push endpoint, e.g. https://example-prod.grafana.net/loki/api/v1/push
	Url string `validate:"required,url"`

	// BatchMaxSize is the maximum number of lines sent in one request.
	BatchMaxSize int `validate:"gte=1"`

	// BatchMaxWait is the maximum time a line waits in the batch.
	BatchMaxWait time.Duration `validate:"gte=1"`

	// BufferSize is how many lines may wait for the batcher before Push starts dropping them.
	BufferSize int `validate:"gte=1"`

	// Labels are attached to every line.
	Labels map[string]string

	// Username and Password enable basic auth when both are set.
	Username string
	Password string
}

func (cfg *Config) setDefaults() {
	if cfg.BatchMaxSize == 0 {
		cfg.BatchMaxSize = 1000
	}
	if cfg.BatchMaxWait == 0 {
		cfg.BatchMaxWait = 5 * time.Second
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 1024
	}
	if cfg.Labels == nil {
		cfg.Labels = map[string]string{}
	}
}

// Pusher batches log lines and pushes them to Loki in the background.
type Pusher struct {
	config    *Config
	ctx       context.Context
	cancel    context.CancelFunc
	client    HTTPClient
	entries   chan LogEntry
	stopOnce  sync.Once
	waitGroup sync.WaitGroup
	logsBatch []streamValue
	logger    Logger
	dropped   int
}

type LogEntry struct {
	Level     string `json:"level"`
	Message   string `json:"msg"`
	Caller    string `json:"caller,omitempty"`
	ErrorType string `json:"error_type,omitempty"`
}

type pushRequest struct {
	Streams []stream `json:"streams"`
}

type stream struct {
	Stream map[string]string `json:"stream"`
	Values []streamValue     `json:"values"`
}

type streamValue []string

func New(ctx context.Context, cfg Config, logger Logger) (*Pusher, error) {
	return NewWithClient(ctx, cfg, logger, &http.Client{Timeout: 10 * time.Second})
}

func NewWithClient(ctx context.Context, cfg Config, logger Logger, client HTTPClient) (*Pusher, error) {

	cfg.setDefaults()
	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Pusher{
		config:    &cfg,
		ctx:       ctx,
		cancel:    cancel,
		client:    client,
		entries:   make(chan LogEntry, cfg.BufferSize),
		logsBatch: make([]streamValue, 0, cfg.BatchMaxSize),
		logger:    logger,
	}

	p.waitGroup.Add(1)
	go p.run()
	return p, nil
}

// Push queues a line. It never blocks the caller: lines are dropped while the buffer is full.
func (p *Pusher) Push(e LogEntry) error {
	select {
	case <-p.ctx.Done():
		return ErrStopped
	default:
	}

	select {
	case p.entries <- e:
		return nil
	default:
		return fmt.Errorf("loki buffer is full, line dropped")
	}
}

// Stop flushes queued lines and waits for the last push.
func (p *Pusher) Stop() {
	p.stopOnce.Do(func() {
		p.cancel()
		p.waitGroup.Wait()
	})
}

func (p *Pusher) run() {
	defer p.waitGroup.Done()

	ticker := time.NewTicker(p.config.BatchMaxWait)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			p.drain()
			return
		case entry := <-p.entries:
			p.add(entry)
		case <-ticker.C:
			p.flush(p.ctx)
		}
	}
}

func (p *Pusher) add(entry LogEntry) {
	p.logsBatch = append(p.logsBatch, newLog(entry, time.Now()))
	if len(p.logsBatch) >= p.config.BatchMaxSize {
		p.flush(p.ctx)
	}
}

// drain sends what is left after the pusher was cancelled.
func (p *Pusher) drain() {
	for {
		select {
		case entry := <-p.entries:
			p.logsBatch = append(p.logsBatch, newLog(entry, time.Now()))
		default:
			ctx, cancel := context.WithTimeout(context.Background(), p.config.BatchMaxWait)
			defer cancel()
			p.flush(ctx)
			return
		}
	}
}

func (p *Pusher) flush(ctx context.Context) {
	if len(p.logsBatch) == 0 {
		return
	}
	if err := p.send(ctx, p.logsBatch); err != nil {
		p.logger.Error("failed to send logs", "error", err, "lines", len(p.logsBatch))
	}
	p.logsBatch = p.logsBatch[:0]
}

func newLog(entry LogEntry, at time.Time) streamValue {
	entryJson, err := json.Marshal(entry)
	if err != nil {
		entryJson = []byte(strconv.Quote(entry.Message))
	}
	return streamValue{strconv.FormatInt(at.UnixNano(), 10), string(entryJson)}
}

func (p *Pusher) send(ctx context.Context, values []streamValue) error {
	buf := &bytes.Buffer{}
	gz := gzip.NewWriter(buf)

	if err := json.NewEncoder(gz).Encode(pushRequest{Streams: []stream{{
		Stream: p.config.Labels,
		Values: values,
	}}}); err != nil {
		return err
	}

	if err := gz.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.Url, buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")

	if p.config.TenantKey != "" {
		req.Header.Set(p.config.TenantKey, p.config.TenantValue)
	}

	if p.config.Username != "" && p.config.Password != "" {
		req.SetBasicAuth(p.config.Username, p.config.Password)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("received unexpected response code from Loki: %s, body: %s", resp.Status, string(body))
	}

	return nil
}
