package db

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// historyQueueCapacity bounds how many records may wait for insertion.
const historyQueueCapacity = 100

// insertTimeout bounds a single background insert.
const insertTimeout = 10 * time.Second

// historyWriter drains queued generation records into the store on a
// background goroutine. Enqueue never blocks; when the buffer is full the
// record is dropped and the caller decides how loudly to complain.
type historyWriter struct {
	store   *Store
	queue   chan GenerationRecord
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	mu      sync.Mutex
}

func newHistoryWriter(store *Store) *historyWriter {
	ctx, cancel := context.WithCancel(context.Background())
	return &historyWriter{
		store:  store,
		queue:  make(chan GenerationRecord, historyQueueCapacity),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the background processor. Safe to call more than once.
func (w *historyWriter) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true
	w.wg.Add(1)
	go w.run()
}

func (w *historyWriter) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			w.drain()
			return
		case rec := <-w.queue:
			w.insert(rec)
		}
	}
}

// drain flushes whatever is still buffered at shutdown.
func (w *historyWriter) drain() {
	for {
		select {
		case rec := <-w.queue:
			w.insert(rec)
		default:
			return
		}
	}
}

func (w *historyWriter) insert(rec GenerationRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
	defer cancel()
	if err := w.store.Insert(ctx, rec); err != nil {
		w.store.logger.Error("history insert failed",
			zap.String("id", rec.ID),
			zap.Error(err))
	}
}

// Enqueue queues a record without blocking. Returns false when full.
func (w *historyWriter) Enqueue(rec GenerationRecord) bool {
	select {
	case w.queue <- rec:
		return true
	default:
		return false
	}
}

// Pending returns the number of buffered records.
func (w *historyWriter) Pending() int {
	return len(w.queue)
}

// Stop cancels the processor and waits for the drain to finish.
func (w *historyWriter) Stop() {
	w.cancel()
	w.wg.Wait()
}
