package session

import (
	"context"
	"sync"
	"time"

	"inspectroom/internal/inspection"
)

type NoticeKind string

const (
	NoticeMalformedDraft        NoticeKind = "malformed_draft"
	NoticeImageGenerationFailed NoticeKind = "image_generation_failed"
)

// Notice is a recoverable failure the participant should be told about.
type Notice struct {
	Kind        NoticeKind `json:"kind"`
	ParameterID int        `json:"parameterId,omitempty"`
	Message     string     `json:"message"`
	At          time.Time  `json:"at"`
}

// Session is one live inspection. All edits go through update, which swaps
// the whole report under the lock and writes the result to the draft cache.
type Session struct {
	m *Manager

	mu       sync.Mutex
	report   inspection.Report
	source   Source
	notices  []Notice
	imageSeq map[int]uint64
	closed   bool
}

type View struct {
	Report  inspection.Report `json:"report"`
	Source  Source            `json:"source"`
	Notices []Notice          `json:"notices"`
}

func (s *Session) Report() inspection.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	notices := make([]Notice, len(s.notices))
	copy(notices, s.notices)
	return View{Report: s.report, Source: s.source, Notices: notices}
}

// TakeNotices returns and clears the pending notices.
func (s *Session) TakeNotices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}

func (s *Session) update(ctx context.Context, fn func(inspection.Report) inspection.Report) (inspection.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return inspection.Report{}, ErrNotOpen
	}
	if s.report.IsComplete {
		return s.report, ErrReportComplete
	}
	s.report = fn(s.report)
	s.m.saveDraft(ctx, s.report)
	return s.report, nil
}

func (s *Session) UpdateProductDetails(ctx context.Context, fields map[string]*string) (inspection.Report, error) {
	return s.update(ctx, func(r inspection.Report) inspection.Report {
		return inspection.UpdateProductDetails(r, fields)
	})
}

func (s *Session) AddParameter(ctx context.Context) (inspection.Report, error) {
	return s.update(ctx, inspection.AddParameter)
}

func (s *Session) RemoveParameter(ctx context.Context, id int) (inspection.Report, error) {
	return s.update(ctx, func(r inspection.Report) inspection.Report {
		return inspection.RemoveParameter(r, id)
	})
}

// UpdateParameter validates patch before touching the report.
func (s *Session) UpdateParameter(ctx context.Context, id int, patch inspection.ParameterPatch) (inspection.Report, error) {
	if err := patch.Validate(); err != nil {
		return inspection.Report{}, err
	}
	return s.update(ctx, func(r inspection.Report) inspection.Report {
		return inspection.UpdateParameter(r, id, patch)
	})
}

func (s *Session) AddReportEvidence(ctx context.Context, item inspection.Evidence) (inspection.Report, error) {
	item = s.stamp(item)
	return s.update(ctx, func(r inspection.Report) inspection.Report {
		return inspection.AddReportEvidence(r, item)
	})
}

func (s *Session) RemoveReportEvidence(ctx context.Context, index int) (inspection.Report, error) {
	return s.update(ctx, func(r inspection.Report) inspection.Report {
		return inspection.RemoveReportEvidence(r, index)
	})
}

func (s *Session) AddParameterEvidence(ctx context.Context, parameterID int, item inspection.Evidence) (inspection.Report, error) {
	item = s.stamp(item)
	return s.update(ctx, func(r inspection.Report) inspection.Report {
		return inspection.AddParameterEvidence(r, parameterID, item)
	})
}

func (s *Session) RemoveParameterEvidence(ctx context.Context, parameterID, index int) (inspection.Report, error) {
	return s.update(ctx, func(r inspection.Report) inspection.Report {
		return inspection.RemoveParameterEvidence(r, parameterID, index)
	})
}

// SignOff records role's signature, replacing any earlier one.
func (s *Session) SignOff(ctx context.Context, role inspection.Role, comment string) (inspection.Report, error) {
	if !role.IsValid() {
		return inspection.Report{}, ErrInvalidRole
	}
	at := s.m.now()
	return s.update(ctx, func(r inspection.Report) inspection.Report {
		return inspection.SignOff(r, role, comment, at)
	})
}

// Complete makes the report terminal and stores it as the canonical copy.
// Signatures are not required. Images still loading are dropped. The live
// report becomes complete only after the repository accepts it.
func (s *Session) Complete(ctx context.Context, status inspection.InspectionStatus) (inspection.Report, error) {
	if !status.IsValid() {
		return inspection.Report{}, ErrInvalidFinalStatus
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return inspection.Report{}, ErrNotOpen
	}
	if s.report.IsComplete {
		return s.report, ErrReportComplete
	}
	next, cleared := dropPendingImages(s.report)
	next = inspection.CompleteInspection(next, status)
	if err := s.m.persistCompleted(ctx, next); err != nil {
		return s.report, err
	}
	for _, id := range cleared {
		s.imageSeq[id]++
	}
	s.report = next
	s.m.saveDraft(ctx, s.report)
	s.m.lg.Infow("inspection completed, notifying participants", "report", next.ID, "status", status)
	return s.report, nil
}

func (s *Session) Summary(required []inspection.Role) inspection.Summary {
	return inspection.Summarize(s.Report(), required)
}

func (s *Session) stamp(item inspection.Evidence) inspection.Evidence {
	if item.CapturedAt.IsZero() {
		item.CapturedAt = s.m.now()
	}
	return item
}
