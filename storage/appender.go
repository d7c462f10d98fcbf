package storage

import (
	"context"

	"mcstat/value"
)

const AppendQueueSize = 100

type appendItem struct {
	val value.Value
}

var shutdownAppendItem *appendItem = &appendItem{}
var flushAppendItem *appendItem = &appendItem{}

// Appender decouples sample production from backend writes: values are
// queued by the producer and persisted in arrival order by Run. The first
// write error is kept and reported by Err; later values are dropped.
type Appender struct {
	store    *SampleStore
	seriesID int64
	queue    chan *appendItem
	synced   chan struct{}
	err      error
}

func NewAppender(store *SampleStore, seriesID int64) *Appender {
	return &Appender{
		store:    store,
		seriesID: seriesID,
		queue:    make(chan *appendItem, AppendQueueSize),
		synced:   make(chan struct{}, 1),
	}
}

func (a *Appender) Run(ctx context.Context) {
	for {
		select {

		case item := <-a.queue:
			if item == shutdownAppendItem {
				a.synced <- struct{}{}
				return
			} else if item == flushAppendItem {
				a.synced <- struct{}{}
				continue
			}
			if a.err == nil {
				_, a.err = a.store.Append(a.seriesID, item.val)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (a *Appender) Append(v value.Value) {
	a.queue <- &appendItem{val: v}
}

// Flush blocks until every value queued before the call has been written.
func (a *Appender) Flush() {
	a.queue <- flushAppendItem
	<-a.synced
}

// Close drains the queue and stops Run. The Appender must not be used
// afterwards.
func (a *Appender) Close() {
	a.queue <- shutdownAppendItem
	<-a.synced
}

// Err reports the first write failure. Only meaningful after Flush or
// Close.
func (a *Appender) Err() error {
	return a.err
}
