// Package session runs live inspection sessions: it reconciles a cached
// draft with the canonical report on open, applies every edit as a whole
// report replacement, and writes each new report through to the draft cache.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"inspectroom/internal/draft"
	"inspectroom/internal/inspection"
)

var (
	ErrDraftDecisionRequired = errors.New("a saved draft exists; choose keep or discard")
	ErrNotOpen               = errors.New("inspection session is not open")
	ErrReportComplete        = errors.New("inspection is complete")
	ErrInvalidDecision       = errors.New("draft decision must be ask, keep or discard")
	ErrInvalidFinalStatus    = errors.New("final status must be PASS, FAIL or CONDITIONAL")
	ErrInvalidRole           = errors.New("unknown role")
	ErrNoGDTSymbol           = errors.New("parameter has no GD&T symbol")
	ErrUnknownGDTSymbol      = errors.New("unknown GD&T symbol")
)

// Repository is the canonical report store.
type Repository interface {
	Get(ctx context.Context, id string) (inspection.Report, error)
	Save(ctx context.Context, r inspection.Report) error
}

type DraftCache interface {
	Exists(ctx context.Context, reportID string) (bool, error)
	Load(ctx context.Context, reportID string) (inspection.Report, bool, error)
	Save(ctx context.Context, r inspection.Report) error
	Discard(ctx context.Context, reportID string) error
}

type ImageGenerator interface {
	Generate(ctx context.Context, symbolName, symbolCode string) (string, error)
}

// Decision is the caller's answer when a draft exists for the report being opened.
type Decision string

const (
	DecisionAsk     Decision = "ask"
	DecisionKeep    Decision = "keep"
	DecisionDiscard Decision = "discard"
)

func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case "", DecisionAsk:
		return DecisionAsk, nil
	case DecisionKeep, DecisionDiscard:
		return Decision(s), nil
	}
	return "", ErrInvalidDecision
}

// Source records where a live session's report was loaded from.
type Source string

const (
	SourceCanonical Source = "canonical"
	SourceDraft     Source = "draft"
)

type Manager struct {
	repo   Repository
	drafts DraftCache
	images ImageGenerator
	lg     *zap.SugaredLogger
	now    func() time.Time

	mu   sync.Mutex
	live map[string]*Session
	wg   sync.WaitGroup
}

func NewManager(repo Repository, drafts DraftCache, images ImageGenerator, lg *zap.SugaredLogger) *Manager {
	if lg == nil {
		lg = zap.NewNop().Sugar()
	}
	return &Manager{
		repo:   repo,
		drafts: drafts,
		images: images,
		lg:     lg,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		live:   map[string]*Session{},
	}
}

// Open returns the live session for reportID, loading it if necessary.
// When a draft is cached and decision is DecisionAsk, Open returns
// ErrDraftDecisionRequired without opening anything. A draft that cannot
// be parsed falls back to the canonical report and leaves a notice.
func (m *Manager) Open(ctx context.Context, reportID string, decision Decision) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.live[reportID]; ok {
		return s, nil
	}
	canonical, err := m.repo.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}

	report, source := canonical, SourceCanonical
	var notices []Notice

	exists, err := m.drafts.Exists(ctx, reportID)
	if err != nil {
		m.lg.Warnw("draft lookup failed, using canonical report", "report", reportID, "error", err)
		exists = false
	}
	if exists {
		switch decision {
		case DecisionKeep:
			d, found, err := m.drafts.Load(ctx, reportID)
			switch {
			case err != nil:
				m.lg.Warnw("failed to parse draft", "report", reportID, "error", err)
				notices = append(notices, m.notice(NoticeMalformedDraft, 0,
					"The saved draft is corrupted and could not be loaded. Starting with the original report."))
			case found:
				// Image requests die with the session that issued them.
				report, _ = dropPendingImages(d)
				source = SourceDraft
			}
		case DecisionDiscard:
			if err := m.drafts.Discard(ctx, reportID); err != nil {
				m.lg.Warnw("failed to discard draft", "report", reportID, "error", err)
			}
		default:
			return nil, ErrDraftDecisionRequired
		}
	}

	s := &Session{m: m, report: report, source: source, notices: notices, imageSeq: map[int]uint64{}}
	m.live[reportID] = s
	m.lg.Infow("session opened", "report", reportID, "source", source)
	return s, nil
}

// HasDraft reports whether a draft is cached for reportID.
func (m *Manager) HasDraft(ctx context.Context, reportID string) (bool, error) {
	return m.drafts.Exists(ctx, reportID)
}

// Get returns an already open session.
func (m *Manager) Get(reportID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.live[reportID]
	if !ok {
		return nil, ErrNotOpen
	}
	return s, nil
}

// Close ends the live session. The cached draft is left in place.
func (m *Manager) Close(reportID string) {
	m.mu.Lock()
	s, ok := m.live[reportID]
	delete(m.live, reportID)
	m.mu.Unlock()
	if !ok {
		return
	}
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	m.lg.Infow("session closed", "report", reportID)
}

// Wait blocks until every in-flight image generation has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) notice(kind NoticeKind, parameterID int, msg string) Notice {
	return Notice{Kind: kind, ParameterID: parameterID, Message: msg, At: m.now()}
}

func (m *Manager) saveDraft(ctx context.Context, r inspection.Report) {
	if err := m.drafts.Save(ctx, r); err != nil {
		m.lg.Warnw("draft write failed", "report", r.ID, "error", err)
	}
}

func (m *Manager) persistCompleted(ctx context.Context, r inspection.Report) error {
	if err := m.repo.Save(ctx, r); err != nil {
		return fmt.Errorf("persist completed inspection: %w", err)
	}
	return nil
}

var _ DraftCache = (*draft.Cache)(nil)
