// Package dupcheck implements the debounced duplicate detector: a
// background probe of the registry's duplicate lookup, keyed by a
// monotonically increasing generation counter so rapid keystrokes collapse
// into one request and stale responses are discarded.
package dupcheck

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/registradesk/registra/internal/logger"
	"github.com/registradesk/registra/internal/record"
	"github.com/registradesk/registra/internal/registry"
)

// Status classifies the duplicate alert.
type Status int

const (
	StatusNone    Status = iota // No overlap with existing records
	StatusSimilar               // Partial identity overlap, advisory only
	StatusExact                 // Exact identity match, blocks submission
)

// String returns the display name of a status.
func (s Status) String() string {
	switch s {
	case StatusSimilar:
		return "similar"
	case StatusExact:
		return "exact"
	default:
		return "none"
	}
}

// Alert is the current duplicate-detection state shown to the user.
type Alert struct {
	Status     Status
	Candidates []registry.SimilarRecord
	Message    string
}

// Prober is the duplicate-lookup capability consumed by the detector.
// *registry.Client satisfies it; tests substitute a fake.
type Prober interface {
	CheckDuplicates(ctx context.Context, req registry.DuplicateCheckRequest) (*registry.DuplicateCheckResponse, error)
}

// DebounceElapsedMsg fires when the quiet period after an identity-field
// change has elapsed. Carries the generation it was scheduled under.
type DebounceElapsedMsg struct {
	Gen int
}

// ProbeResultMsg carries a finished probe back to the UI loop.
type ProbeResultMsg struct {
	Gen  int
	Resp *registry.DuplicateCheckResponse
	Err  error
}

// DefaultDebounce is the quiet period before a probe fires.
const DefaultDebounce = 500 * time.Millisecond

// Detector owns the debounce generation counter and the current alert.
// At most one probe result is ever applied per generation; any event tagged
// with an older generation is stale and dropped.
type Detector struct {
	prober    Prober
	typ       record.Type
	excludeID string
	debounce  time.Duration

	gen      int
	identity map[string]string
	alert    Alert
}

// New creates a detector. excludeID is the record's own ID in edit mode,
// or "" for add mode.
func New(prober Prober, typ record.Type, excludeID string, debounce time.Duration) *Detector {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Detector{
		prober:    prober,
		typ:       typ,
		excludeID: excludeID,
		debounce:  debounce,
	}
}

// Alert returns the current duplicate alert.
func (d *Detector) Alert() Alert {
	return d.alert
}

// Schedule registers an identity-field change. Bumping the generation
// cancels any pending debounce timer or in-flight probe (their results
// arrive stale and are dropped). If the identity subset is incomplete the
// alert resets to none with no network call; otherwise a new quiet-period
// timer starts.
func (d *Detector) Schedule(identity map[string]string, complete bool) tea.Cmd {
	d.gen++

	if !complete {
		d.alert = Alert{}
		d.identity = nil
		return nil
	}

	d.identity = identity
	gen := d.gen
	return tea.Tick(d.debounce, func(time.Time) tea.Msg {
		return DebounceElapsedMsg{Gen: gen}
	})
}

// Dismiss clears the alert explicitly, forcing status back to none.
func (d *Detector) Dismiss() {
	d.alert = Alert{}
}

// Invalidate drops any pending timer or in-flight probe on teardown so a
// dangling probe cannot fire after the session ends.
func (d *Detector) Invalidate() {
	d.gen++
}

// Update handles detector messages. Returns a follow-up command (the probe
// itself, after the debounce elapses) or nil.
func (d *Detector) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case DebounceElapsedMsg:
		if msg.Gen != d.gen {
			// Superseded by a later identity-field change.
			return nil
		}
		return d.probeCmd(msg.Gen)

	case ProbeResultMsg:
		if msg.Gen != d.gen {
			logger.Debug("dupcheck: dropping stale probe result (gen %d, current %d)", msg.Gen, d.gen)
			return nil
		}
		if msg.Err != nil {
			// Fail-open: duplicate detection is assistive, the registry
			// enforces true uniqueness on write. Leave the alert as-is.
			logger.Warn("dupcheck: probe failed, keeping previous status: %v", msg.Err)
			return nil
		}
		d.alert = classify(msg.Resp)
		return nil
	}
	return nil
}

// probeCmd issues the remote lookup for the given generation.
func (d *Detector) probeCmd(gen int) tea.Cmd {
	req := registry.DuplicateCheckRequest{
		Type:      d.typ,
		Identity:  d.identity,
		ExcludeID: d.excludeID,
	}
	prober := d.prober
	return func() tea.Msg {
		resp, err := prober.CheckDuplicates(context.Background(), req)
		return ProbeResultMsg{Gen: gen, Resp: resp, Err: err}
	}
}

// classify maps a lookup response onto an alert.
func classify(resp *registry.DuplicateCheckResponse) Alert {
	if resp == nil {
		return Alert{}
	}
	if resp.IsDuplicate {
		msg := "An exact duplicate of this record already exists."
		if len(resp.SimilarRecords) > 0 && resp.SimilarRecords[0].RegistryNo != "" {
			msg = "An exact duplicate already exists (Registry No. " + resp.SimilarRecords[0].RegistryNo + ")."
		}
		return Alert{
			Status:     StatusExact,
			Candidates: resp.SimilarRecords,
			Message:    msg,
		}
	}
	if len(resp.SimilarRecords) > 0 {
		return Alert{
			Status:     StatusSimilar,
			Candidates: resp.SimilarRecords,
			Message:    "Similar records found. Review them before saving.",
		}
	}
	return Alert{}
}
