// Package syncd implements the community sync service for Fathom.
// It receives logbook entries and chatbot feedback over a TCP
// connection (or unix socket), buffers incoming data, and batches
// writes to the SQLite database for optimal throughput.
//
// Architecture:
//
//	Client (TUI / mobile app) → TCP/UDS → Syncer → Batch Buffer → DBService
//
// The syncer uses buffered channels and a periodic flush to batch
// writes, committing on the flush interval or batch size, whichever
// comes first. A write-ahead journal in SQLite ensures crash safety.
package syncd

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/fathomdive/fathom/internal/config"
	"github.com/fathomdive/fathom/internal/database"
)

// Syncer defines the interface for the sync service.
// This abstraction allows for mocking in integration tests.
type Syncer interface {
	// Start begins listening for incoming sync data.
	Start(ctx context.Context) error
	// Stop gracefully shuts down the syncer, flushing remaining data.
	Stop() error
	// Metrics returns the current sync metrics.
	Metrics() SyncMetrics
}

// SyncMetrics tracks throughput and error rates.
type SyncMetrics struct {
	DivesIngested    int64 `json:"dives_ingested"`
	FeedbackIngested int64 `json:"feedback_ingested"`
	ErrorCount       int64 `json:"error_count"`
	BatchesCommitted int64 `json:"batches_committed"`
	Uptime           int64 `json:"uptime_seconds"`
}

// ============================================================
// Wire Protocol
// ============================================================

// MessageType discriminates the kind of payload in the wire protocol.
type MessageType byte

const (
	MsgDive     MessageType = 0x01
	MsgFeedback MessageType = 0x02
	MsgBatch    MessageType = 0x03
)

// maxPayloadSize caps a single wire message at 10MB.
const maxPayloadSize = 10 * 1024 * 1024

// BatchMessage contains multiple items of different types.
// Wire format per message: [1 byte type][4 bytes length (big-endian)][payload JSON]
type BatchMessage struct {
	Dives    []*database.Dive     `json:"dives,omitempty"`
	Feedback []*database.Feedback `json:"feedback,omitempty"`
}

// ============================================================
// DaemonSyncer Implementation
// ============================================================

// DaemonSyncer is the production implementation of the Syncer interface.
// It manages the network listener, batch buffers, and flush goroutine.
type DaemonSyncer struct {
	config  config.SyncConfig
	store   database.Store
	log     *zap.Logger
	metrics SyncMetrics

	// Channels for buffered ingestion
	diveChan     chan *database.Dive
	feedbackChan chan *database.Feedback

	listener net.Listener
	wg       sync.WaitGroup
	started  time.Time

	// Live connections, so shutdown can unblock handlers mid-read.
	connMu  sync.Mutex
	conns   map[net.Conn]struct{}
	connWG  sync.WaitGroup
	closing bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewDaemonSyncer creates a new sync daemon with the given configuration.
func NewDaemonSyncer(cfg config.SyncConfig, store database.Store, log *zap.Logger) *DaemonSyncer {
	return &DaemonSyncer{
		config:       cfg,
		store:        store,
		log:          log,
		diveChan:     make(chan *database.Dive, cfg.BatchSize*2),
		feedbackChan: make(chan *database.Feedback, cfg.BatchSize*2),
		conns:        make(map[net.Conn]struct{}),
		done:         make(chan struct{}),
	}
}

// Start begins listening for incoming connections and starts the batch
// flush goroutine. It also replays any pending writes from a previous crash.
func (d *DaemonSyncer) Start(ctx context.Context) error {
	d.started = time.Now()

	if err := d.replayPending(); err != nil {
		d.log.Warn("failed to replay pending writes", zap.Error(err))
	}

	// Determine network type based on platform
	network := "tcp"
	if runtime.GOOS != "windows" && !isTCPAddr(d.config.ListenAddr) {
		network = "unix"
		// Remove stale socket file
		os.Remove(d.config.ListenAddr)
	}

	listener, err := net.Listen(network, d.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", d.config.ListenAddr, err)
	}
	d.listener = listener

	ctx, d.cancel = context.WithCancel(ctx)

	d.wg.Add(1)
	go d.flushLoop(ctx)

	if d.config.MetricsAddr != "" {
		d.wg.Add(1)
		go d.serveMetrics(ctx)
	}

	d.wg.Add(1)
	go d.acceptLoop(ctx)

	d.log.Info("sync daemon listening",
		zap.String("addr", d.config.ListenAddr),
		zap.String("network", network))
	return nil
}

// isTCPAddr distinguishes "host:port" listen addresses from socket paths.
func isTCPAddr(addr string) bool {
	_, _, err := net.SplitHostPort(addr)
	return err == nil
}

// Addr returns the bound listen address. Useful when the configured
// port is 0 and the OS picked one.
func (d *DaemonSyncer) Addr() string {
	if d.listener == nil {
		return d.config.ListenAddr
	}
	return d.listener.Addr().String()
}

// Stop gracefully shuts down the syncer, flushing remaining buffered data.
// Connection handlers must be fully drained before the ingestion channels
// close, or a handler mid-message could send on a closed channel.
func (d *DaemonSyncer) Stop() error {
	d.log.Info("shutting down sync daemon")

	if d.cancel != nil {
		d.cancel()
	}

	if d.listener != nil {
		d.listener.Close()
	}

	// Unblock handlers stuck in a read, then wait them out.
	d.connMu.Lock()
	d.closing = true
	for conn := range d.conns {
		conn.Close()
	}
	d.connMu.Unlock()
	d.connWG.Wait()

	// Close channels to signal the flush goroutine
	close(d.diveChan)
	close(d.feedbackChan)

	d.wg.Wait()
	close(d.done)

	d.log.Info("sync daemon stopped")
	return nil
}

// Metrics returns a snapshot of the current sync metrics.
func (d *DaemonSyncer) Metrics() SyncMetrics {
	return SyncMetrics{
		DivesIngested:    atomic.LoadInt64(&d.metrics.DivesIngested),
		FeedbackIngested: atomic.LoadInt64(&d.metrics.FeedbackIngested),
		ErrorCount:       atomic.LoadInt64(&d.metrics.ErrorCount),
		BatchesCommitted: atomic.LoadInt64(&d.metrics.BatchesCommitted),
		Uptime:           int64(time.Since(d.started).Seconds()),
	}
}

// acceptLoop handles incoming connections.
func (d *DaemonSyncer) acceptLoop(ctx context.Context) {
	defer d.wg.Done()

	for {
		conn, err := d.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				d.log.Error("accept failed", zap.Error(err))
				continue
			}
		}

		d.connMu.Lock()
		if d.closing {
			d.connMu.Unlock()
			conn.Close()
			continue
		}
		d.conns[conn] = struct{}{}
		d.connWG.Add(1)
		d.connMu.Unlock()

		go d.handleConnection(ctx, conn)
	}
}

// handleConnection reads wire messages from a single client connection.
// Messages use a length-prefixed JSON format:
//
//	[1 byte type][4 bytes length][JSON payload]
func (d *DaemonSyncer) handleConnection(ctx context.Context, conn net.Conn) {
	defer d.connWG.Done()
	defer func() {
		conn.Close()
		d.connMu.Lock()
		delete(d.conns, conn)
		d.connMu.Unlock()
	}()

	d.log.Debug("new connection", zap.Stringer("remote", conn.RemoteAddr()))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Read message type (1 byte)
		typeBuf := make([]byte, 1)
		if _, err := io.ReadFull(conn, typeBuf); err != nil {
			if err != io.EOF {
				d.log.Debug("connection read error", zap.Error(err))
			}
			return
		}
		msgType := MessageType(typeBuf[0])

		// Read payload length (4 bytes, big-endian)
		lenBuf := make([]byte, 4)
		if _, err := io.ReadFull(conn, lenBuf); err != nil {
			d.log.Error("failed to read message length", zap.Error(err))
			atomic.AddInt64(&d.metrics.ErrorCount, 1)
			return
		}
		payloadLen := binary.BigEndian.Uint32(lenBuf)

		if payloadLen > maxPayloadSize {
			d.log.Error("message too large", zap.Uint32("bytes", payloadLen))
			atomic.AddInt64(&d.metrics.ErrorCount, 1)
			return
		}

		payload := make([]byte, payloadLen)
		if _, err := io.ReadFull(conn, payload); err != nil {
			d.log.Error("failed to read payload", zap.Error(err))
			atomic.AddInt64(&d.metrics.ErrorCount, 1)
			return
		}

		if err := d.processMessage(msgType, payload); err != nil {
			d.log.Error("processing message", zap.Error(err))
			atomic.AddInt64(&d.metrics.ErrorCount, 1)
		}

		// Send ACK (1 byte: 0x00 = success)
		conn.Write([]byte{0x00})
	}
}

// processMessage deserializes and routes a wire message to the appropriate
// channel for batched insertion.
func (d *DaemonSyncer) processMessage(msgType MessageType, payload []byte) error {
	switch msgType {
	case MsgDive:
		var dive database.Dive
		if err := json.Unmarshal(payload, &dive); err != nil {
			return fmt.Errorf("unmarshaling dive: %w", err)
		}
		select {
		case d.diveChan <- &dive:
			atomic.AddInt64(&d.metrics.DivesIngested, 1)
		default:
			// Channel full — insert directly to avoid data loss
			if err := d.store.InsertDive(&dive); err != nil {
				return fmt.Errorf("direct dive insert: %w", err)
			}
			atomic.AddInt64(&d.metrics.DivesIngested, 1)
		}

	case MsgFeedback:
		var fb database.Feedback
		if err := json.Unmarshal(payload, &fb); err != nil {
			return fmt.Errorf("unmarshaling feedback: %w", err)
		}
		select {
		case d.feedbackChan <- &fb:
			atomic.AddInt64(&d.metrics.FeedbackIngested, 1)
		default:
			if err := d.store.InsertFeedback(&fb); err != nil {
				return fmt.Errorf("direct feedback insert: %w", err)
			}
			atomic.AddInt64(&d.metrics.FeedbackIngested, 1)
		}

	case MsgBatch:
		var batch BatchMessage
		if err := json.Unmarshal(payload, &batch); err != nil {
			return fmt.Errorf("unmarshaling batch: %w", err)
		}
		// Journal the batch before applying so a crash mid-apply can replay.
		writeID, err := d.store.WritePendingPayload(payload)
		if err != nil {
			return fmt.Errorf("journaling batch: %w", err)
		}
		if err := d.processBatch(&batch); err != nil {
			return err
		}
		if err := d.store.CommitPendingPayload(writeID); err != nil {
			return fmt.Errorf("committing journaled batch: %w", err)
		}

	default:
		return fmt.Errorf("unknown message type: 0x%02x", msgType)
	}

	return nil
}

// processBatch handles a batch message containing mixed types.
func (d *DaemonSyncer) processBatch(batch *BatchMessage) error {
	if len(batch.Dives) > 0 {
		if err := d.store.BatchInsertDives(batch.Dives); err != nil {
			return fmt.Errorf("batch dive insert: %w", err)
		}
		atomic.AddInt64(&d.metrics.DivesIngested, int64(len(batch.Dives)))
	}

	if len(batch.Feedback) > 0 {
		if err := d.store.BatchInsertFeedback(batch.Feedback); err != nil {
			return fmt.Errorf("batch feedback insert: %w", err)
		}
		atomic.AddInt64(&d.metrics.FeedbackIngested, int64(len(batch.Feedback)))
	}

	atomic.AddInt64(&d.metrics.BatchesCommitted, 1)
	return nil
}

// flushLoop periodically flushes buffered items to the database.
// It commits when either BatchSize items accumulate or FlushInterval elapses.
func (d *DaemonSyncer) flushLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.FlushInterval)
	defer ticker.Stop()

	diveBuf := make([]*database.Dive, 0, d.config.BatchSize)
	fbBuf := make([]*database.Feedback, 0, d.config.BatchSize)

	flush := func() {
		if len(diveBuf) > 0 {
			if err := d.store.BatchInsertDives(diveBuf); err != nil {
				d.log.Error("flushing dive batch", zap.Error(err))
				atomic.AddInt64(&d.metrics.ErrorCount, 1)
			} else {
				atomic.AddInt64(&d.metrics.BatchesCommitted, 1)
			}
			diveBuf = diveBuf[:0]
		}
		if len(fbBuf) > 0 {
			if err := d.store.BatchInsertFeedback(fbBuf); err != nil {
				d.log.Error("flushing feedback batch", zap.Error(err))
				atomic.AddInt64(&d.metrics.ErrorCount, 1)
			} else {
				atomic.AddInt64(&d.metrics.BatchesCommitted, 1)
			}
			fbBuf = fbBuf[:0]
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case dive, ok := <-d.diveChan:
			if !ok {
				flush()
				return
			}
			diveBuf = append(diveBuf, dive)
			if len(diveBuf) >= d.config.BatchSize {
				flush()
			}

		case fb, ok := <-d.feedbackChan:
			if !ok {
				flush()
				return
			}
			fbBuf = append(fbBuf, fb)
			if len(fbBuf) >= d.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()
		}
	}
}

// replayPending replays any pending writes from a previous crash.
func (d *DaemonSyncer) replayPending() error {
	pending, err := d.store.GetPendingPayloads()
	if err != nil {
		return fmt.Errorf("getting pending payloads: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	d.log.Info("replaying pending writes from crash recovery", zap.Int("count", len(pending)))

	for _, pw := range pending {
		var batch BatchMessage
		if err := json.Unmarshal(pw.Payload, &batch); err != nil {
			d.log.Warn("skipping corrupt pending write",
				zap.Int64("write_id", pw.WriteID), zap.Error(err))
			continue
		}

		if err := d.processBatch(&batch); err != nil {
			d.log.Error("failed to replay pending write",
				zap.Int64("write_id", pw.WriteID), zap.Error(err))
			continue
		}

		if err := d.store.CommitPendingPayload(pw.WriteID); err != nil {
			d.log.Error("failed to commit pending write",
				zap.Int64("write_id", pw.WriteID), zap.Error(err))
		}
	}

	return nil
}

// serveMetrics starts an HTTP server exposing sync metrics.
func (d *DaemonSyncer) serveMetrics(ctx context.Context) {
	defer d.wg.Done()

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Metrics endpoint (Prometheus-compatible text format)
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		m := d.Metrics()
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		fmt.Fprintf(w, "# HELP fathom_dives_ingested_total Total dives ingested\n")
		fmt.Fprintf(w, "# TYPE fathom_dives_ingested_total counter\n")
		fmt.Fprintf(w, "fathom_dives_ingested_total %d\n", m.DivesIngested)
		fmt.Fprintf(w, "# HELP fathom_feedback_ingested_total Total feedback records ingested\n")
		fmt.Fprintf(w, "# TYPE fathom_feedback_ingested_total counter\n")
		fmt.Fprintf(w, "fathom_feedback_ingested_total %d\n", m.FeedbackIngested)
		fmt.Fprintf(w, "# HELP fathom_errors_total Total errors\n")
		fmt.Fprintf(w, "# TYPE fathom_errors_total counter\n")
		fmt.Fprintf(w, "fathom_errors_total %d\n", m.ErrorCount)
		fmt.Fprintf(w, "# HELP fathom_batches_committed_total Total batches committed\n")
		fmt.Fprintf(w, "# TYPE fathom_batches_committed_total counter\n")
		fmt.Fprintf(w, "fathom_batches_committed_total %d\n", m.BatchesCommitted)
		fmt.Fprintf(w, "# HELP fathom_uptime_seconds Uptime in seconds\n")
		fmt.Fprintf(w, "# TYPE fathom_uptime_seconds gauge\n")
		fmt.Fprintf(w, "fathom_uptime_seconds %d\n", m.Uptime)
	})

	// JSON metrics for programmatic access
	mux.HandleFunc("/api/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(d.Metrics())
	})

	server := &http.Server{
		Addr:    d.config.MetricsAddr,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	d.log.Info("metrics server listening", zap.String("addr", d.config.MetricsAddr))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		d.log.Error("metrics server", zap.Error(err))
	}
}
