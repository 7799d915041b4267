// Package autosave reconciles rapid local edits with a slow, asynchronous
// save operation.
//
// Edits arrive far faster than saves complete. The pipeline debounces edit
// bursts into one save attempt and tags every attempt with the edit
// generation captured at fire time; a save that completes after further
// edits is discarded as stale rather than allowed to mark the document
// clean. Dropping that generation check would reintroduce a silent-data-loss
// race, so it is applied to debounced and manual saves alike.
//
// All mutable state is owned by a single goroutine fed by a channel of
// events (edits, timer firings, save completions, shutdown), in the same
// shape as a store flush loop: between events, state transitions are
// synchronous and atomic.
package autosave

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/pagecraft/pagemodel"
)

// Status is the user-visible persistence state.
type Status string

const (
	StatusIdle   Status = "idle"
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
	StatusError  Status = "error"
)

// ErrClosed is returned by SaveNow after the pipeline has shut down.
var ErrClosed = errors.New("autosave: pipeline closed")

// Saver is the external save collaborator. Repeated identical saves must be
// harmless from the caller's perspective.
type Saver interface {
	SaveModel(ctx context.Context, pageID string, m *pagemodel.PageModel) error
}

// ModelSource yields the latest model at save-fire time. The pipeline always
// reads through this indirection instead of capturing a model when the
// timer is armed: further edits may land during the debounce window, and a
// stale closure capture would persist them incompletely.
type ModelSource interface {
	CurrentModel() *pagemodel.PageModel
}

// Config controls pipeline timing.
type Config struct {
	// Debounce is the quiet period after the last edit before a save fires.
	Debounce time.Duration `yaml:"debounce"`
	// StatusDisplay is how long saved/error stays visible before reverting
	// to idle.
	StatusDisplay time.Duration `yaml:"status_display"`
	// Logger for save failures and stale discards.
	Logger *slog.Logger `yaml:"-"`
	// OnStatus, when set, is invoked from the pipeline goroutine on every
	// status transition.
	OnStatus func(Status) `yaml:"-"`
}

func (c *Config) defaults() {
	if c.Debounce <= 0 {
		c.Debounce = 2 * time.Second
	}
	if c.StatusDisplay <= 0 {
		c.StatusDisplay = 1500 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// State is an observable snapshot of the pipeline.
type State struct {
	Status     Status
	Dirty      bool
	Generation uint64
	LastSaved  time.Time
}

type eventKind int

const (
	evEdit eventKind = iota
	evManual
	evSaveDone
	evShutdown
)

type event struct {
	kind  eventKind
	gen   uint64 // evSaveDone: generation captured at fire time
	err   error  // evSaveDone
	reply chan error
}

// Pipeline is the auto-save coordinator for one page session.
type Pipeline struct {
	cfg    Config
	pageID string
	saver  Saver
	source ModelSource

	events    chan event
	done      chan struct{}
	closeOnce sync.Once

	mu   sync.Mutex
	view State

	// Everything below is owned by the run goroutine.
	generation  uint64
	dirty       bool
	status      Status
	saving      bool
	pendingFire bool
	closing     bool
	waiters     []chan error

	debTimer    *time.Timer
	debC        <-chan time.Time
	statusTimer *time.Timer
	statusC     <-chan time.Time
}

// New creates and starts a pipeline for pageID.
func New(pageID string, saver Saver, source ModelSource, cfg Config) *Pipeline {
	cfg.defaults()
	p := &Pipeline{
		cfg:    cfg,
		pageID: pageID,
		saver:  saver,
		source: source,
		events: make(chan event, 16),
		done:   make(chan struct{}),
		status: StatusIdle,
	}
	p.view = State{Status: StatusIdle}
	go p.run()
	return p
}

// NotifyEdit registers one accepted local edit: the generation advances,
// the document becomes dirty, and the debounce timer is re-armed,
// cancelling any previously armed, not-yet-fired timer.
func (p *Pipeline) NotifyEdit() {
	p.send(event{kind: evEdit})
}

// SaveNow requests an immediate save, bypassing the debounce window but
// following the same generation discipline: a result superseded by a racing
// edit cannot clear dirtiness. Returns the save error, nil on success or
// when there was nothing to save.
func (p *Pipeline) SaveNow(ctx context.Context) error {
	reply := make(chan error, 1)
	if !p.send(event{kind: evManual, reply: reply}) {
		return ErrClosed
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return ErrClosed
	}
}

// State returns an observable snapshot.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

// Close stops the pipeline. A dirty model gets one final synchronous flush
// before the goroutine exits.
func (p *Pipeline) Close() error {
	p.closeOnce.Do(func() {
		p.send(event{kind: evShutdown})
	})
	<-p.done
	return nil
}

func (p *Pipeline) send(ev event) bool {
	select {
	case p.events <- ev:
		return true
	case <-p.done:
		return false
	}
}

func (p *Pipeline) run() {
	defer close(p.done)
	for {
		select {
		case ev := <-p.events:
			switch ev.kind {
			case evEdit:
				p.generation++
				p.dirty = true
				p.armDebounce()
				p.publish()
			case evManual:
				p.stopDebounce()
				p.fire(ev.reply)
			case evSaveDone:
				p.completeSave(ev)
				if p.closing && !p.saving {
					p.shutdown()
					return
				}
			case evShutdown:
				if p.saving {
					// Let the in-flight save land first; its result still
					// goes through the generation check.
					p.closing = true
					continue
				}
				p.shutdown()
				return
			}
		case <-p.debC:
			p.debC = nil
			p.debTimer = nil
			p.fire(nil)
		case <-p.statusC:
			p.statusC = nil
			p.statusTimer = nil
			if p.status == StatusSaved || p.status == StatusError {
				p.setStatus(StatusIdle)
			}
		}
	}
}

// fire starts a save attempt with the generation captured now and the
// latest model read through the live source.
func (p *Pipeline) fire(reply chan error) {
	if !p.dirty {
		if reply != nil {
			reply <- nil
		}
		return
	}
	if reply != nil {
		p.waiters = append(p.waiters, reply)
	}
	if p.saving {
		// One save in flight at a time; remember to fire again when it
		// completes so the newest generation is not stranded.
		p.pendingFire = true
		return
	}

	g0 := p.generation
	model := p.source.CurrentModel()
	p.saving = true
	p.stopStatusTimer()
	p.setStatus(StatusSaving)

	go func() {
		err := p.saver.SaveModel(context.Background(), p.pageID, model)
		p.send(event{kind: evSaveDone, gen: g0, err: err})
	}()
}

func (p *Pipeline) completeSave(ev event) {
	p.saving = false

	switch {
	case ev.err != nil:
		p.cfg.Logger.Warn("autosave failed", "page_id", p.pageID, "error", ev.err)
		p.setStatus(StatusError)
		p.armStatusReset()
		// Still dirty; retried on the next edit/debounce cycle or SaveNow.

	case ev.gen != p.generation:
		// Stale: edits landed during the save window. Discard the result —
		// the document stays dirty and the newest model retries. This is
		// not a failure and is never surfaced as one.
		p.cfg.Logger.Debug("stale autosave discarded",
			"page_id", p.pageID, "saved_generation", ev.gen, "current_generation", p.generation)
		p.setStatus(StatusIdle)
		p.ensureRetry()

	default:
		p.dirty = false
		p.mu.Lock()
		p.view.LastSaved = time.Now()
		p.mu.Unlock()
		p.setStatus(StatusSaved)
		p.armStatusReset()
	}

	for _, w := range p.waiters {
		w <- ev.err
	}
	p.waiters = nil

	if p.pendingFire {
		p.pendingFire = false
		if p.dirty {
			p.fire(nil)
		}
	}
}

// ensureRetry guarantees a dirty document has a pending save intent even
// when no further edits arrive.
func (p *Pipeline) ensureRetry() {
	if p.dirty && p.debTimer == nil && !p.saving {
		p.armDebounce()
	}
}

func (p *Pipeline) shutdown() {
	p.stopDebounce()
	p.stopStatusTimer()
	for _, w := range p.waiters {
		w <- ErrClosed
	}
	p.waiters = nil
	if p.dirty {
		if err := p.saver.SaveModel(context.Background(), p.pageID, p.source.CurrentModel()); err != nil {
			p.cfg.Logger.Warn("final autosave flush failed", "page_id", p.pageID, "error", err)
		} else {
			p.dirty = false
		}
	}
	p.setStatus(StatusIdle)
}

func (p *Pipeline) armDebounce() {
	if p.debTimer != nil {
		p.debTimer.Stop()
	}
	p.debTimer = time.NewTimer(p.cfg.Debounce)
	p.debC = p.debTimer.C
}

func (p *Pipeline) stopDebounce() {
	if p.debTimer != nil {
		p.debTimer.Stop()
		p.debTimer = nil
		p.debC = nil
	}
}

func (p *Pipeline) armStatusReset() {
	if p.statusTimer != nil {
		p.statusTimer.Stop()
	}
	p.statusTimer = time.NewTimer(p.cfg.StatusDisplay)
	p.statusC = p.statusTimer.C
}

func (p *Pipeline) stopStatusTimer() {
	if p.statusTimer != nil {
		p.statusTimer.Stop()
		p.statusTimer = nil
		p.statusC = nil
	}
}

func (p *Pipeline) setStatus(s Status) {
	p.status = s
	p.publish()
	if p.cfg.OnStatus != nil {
		p.cfg.OnStatus(s)
	}
}

func (p *Pipeline) publish() {
	p.mu.Lock()
	p.view.Status = p.status
	p.view.Dirty = p.dirty
	p.view.Generation = p.generation
	p.mu.Unlock()
}
