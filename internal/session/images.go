package session

import (
	"context"

	"inspectroom/internal/inspection"
)

// GenerateImage marks the parameter's GD&T image as loading and requests an
// illustration in the background. The result is merged into whatever the
// parameter looks like when it arrives; a result for an older request than
// the latest one for the same parameter is dropped. An unknown parameter id
// is a no-op.
func (s *Session) GenerateImage(ctx context.Context, parameterID int) (inspection.Report, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return inspection.Report{}, ErrNotOpen
	}
	if s.report.IsComplete {
		defer s.mu.Unlock()
		return s.report, ErrReportComplete
	}
	p, ok := s.report.Parameter(parameterID)
	if !ok {
		defer s.mu.Unlock()
		return s.report, nil
	}
	if p.GDTSymbol == nil || *p.GDTSymbol == "" {
		s.mu.Unlock()
		return inspection.Report{}, ErrNoGDTSymbol
	}
	sym, ok := inspection.LookupGDTSymbol(*p.GDTSymbol)
	if !ok {
		s.mu.Unlock()
		return inspection.Report{}, ErrUnknownGDTSymbol
	}

	s.imageSeq[parameterID]++
	seq := s.imageSeq[parameterID]
	loading := inspection.GDTImageLoading
	s.report = inspection.UpdateParameter(s.report, parameterID, inspection.ParameterPatch{GDTImage: &loading})
	s.m.saveDraft(ctx, s.report)
	out := s.report
	s.mu.Unlock()

	s.m.wg.Add(1)
	go func() {
		defer s.m.wg.Done()
		img, err := s.m.images.Generate(context.Background(), sym.Name, sym.Symbol)
		s.finishImage(parameterID, seq, img, err)
	}()
	return out, nil
}

func (s *Session) finishImage(parameterID int, seq uint64, img string, genErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.imageSeq[parameterID] != seq {
		return
	}
	patch := inspection.ParameterPatch{GDTImage: &img}
	if genErr != nil {
		s.m.lg.Warnw("GD&T image generation failed", "report", s.report.ID, "parameter", parameterID, "error", genErr)
		patch = inspection.ParameterPatch{ClearGDTImage: true}
		s.notices = append(s.notices, s.m.notice(NoticeImageGenerationFailed, parameterID,
			"Sorry, the AI image generator failed. Please try again."))
	}
	s.report = inspection.UpdateParameter(s.report, parameterID, patch)
	s.m.saveDraft(context.Background(), s.report)
}

// dropPendingImages clears every GD&T image still marked loading. Used when
// no request can deliver a result anymore: on completion and when a session
// is rebuilt from a draft.
func dropPendingImages(r inspection.Report) (inspection.Report, []int) {
	var cleared []int
	for _, p := range r.Parameters {
		if p.GDTImage != nil && *p.GDTImage == inspection.GDTImageLoading {
			r = inspection.UpdateParameter(r, p.ID, inspection.ParameterPatch{ClearGDTImage: true})
			cleared = append(cleared, p.ID)
		}
	}
	return r, cleared
}
