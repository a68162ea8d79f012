package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"inspectroom/internal/auth"
	"inspectroom/internal/inspection"
	"inspectroom/internal/session"
	"inspectroom/internal/util"
)

func UpdateProduct(m *session.Manager, lg *zap.SugaredLogger) http.HandlerFunc {
	return live(m, lg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		var fields map[string]*string
		if err := decodeJSON(r, &fields); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rep, err := s.UpdateProductDetails(r.Context(), fields)
		respondReport(w, lg, rep, err)
	})
}

func AddParameter(m *session.Manager, lg *zap.SugaredLogger) http.HandlerFunc {
	return live(m, lg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		rep, err := s.AddParameter(r.Context())
		respondReport(w, lg, rep, err)
	})
}

// UpdateParameter applies a partial edit. An explicit null clears actual,
// gdtSymbol or gdtImage; omitted keys are left alone.
func UpdateParameter(m *session.Manager, lg *zap.SugaredLogger) http.HandlerFunc {
	return live(m, lg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		pid, ok := pathInt(r, "pid")
		if !ok {
			http.Error(w, "invalid parameter id", http.StatusBadRequest)
			return
		}
		var patch inspection.ParameterPatch
		if err := decodeJSON(r, &patch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rep, err := s.UpdateParameter(r.Context(), pid, patch)
		respondReport(w, lg, rep, err)
	})
}

func RemoveParameter(m *session.Manager, lg *zap.SugaredLogger) http.HandlerFunc {
	return live(m, lg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		pid, ok := pathInt(r, "pid")
		if !ok {
			http.Error(w, "invalid parameter id", http.StatusBadRequest)
			return
		}
		rep, err := s.RemoveParameter(r.Context(), pid)
		respondReport(w, lg, rep, err)
	})
}

type evidenceReq struct {
	ImageData string `json:"imageData"`
	Caption   string `json:"caption"`
}

func decodeEvidence(w http.ResponseWriter, r *http.Request) (inspection.Evidence, bool) {
	var req evidenceReq
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return inspection.Evidence{}, false
	}
	if _, _, err := util.ParseImageData(req.ImageData); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return inspection.Evidence{}, false
	}
	return inspection.Evidence{ImageData: req.ImageData, Caption: req.Caption}, true
}

func AddReportEvidence(m *session.Manager, lg *zap.SugaredLogger) http.HandlerFunc {
	return live(m, lg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		item, ok := decodeEvidence(w, r)
		if !ok {
			return
		}
		rep, err := s.AddReportEvidence(r.Context(), item)
		respondReport(w, lg, rep, err)
	})
}

func RemoveReportEvidence(m *session.Manager, lg *zap.SugaredLogger) http.HandlerFunc {
	return live(m, lg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		idx, ok := pathInt(r, "idx")
		if !ok {
			http.Error(w, "invalid evidence index", http.StatusBadRequest)
			return
		}
		rep, err := s.RemoveReportEvidence(r.Context(), idx)
		respondReport(w, lg, rep, err)
	})
}

func AddParameterEvidence(m *session.Manager, lg *zap.SugaredLogger) http.HandlerFunc {
	return live(m, lg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		pid, ok := pathInt(r, "pid")
		if !ok {
			http.Error(w, "invalid parameter id", http.StatusBadRequest)
			return
		}
		item, ok := decodeEvidence(w, r)
		if !ok {
			return
		}
		rep, err := s.AddParameterEvidence(r.Context(), pid, item)
		respondReport(w, lg, rep, err)
	})
}

func RemoveParameterEvidence(m *session.Manager, lg *zap.SugaredLogger) http.HandlerFunc {
	return live(m, lg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		pid, okP := pathInt(r, "pid")
		idx, okI := pathInt(r, "idx")
		if !okP || !okI {
			http.Error(w, "invalid parameter id or evidence index", http.StatusBadRequest)
			return
		}
		rep, err := s.RemoveParameterEvidence(r.Context(), pid, idx)
		respondReport(w, lg, rep, err)
	})
}

// GenerateGDTImage answers immediately with the parameter marked loading;
// the illustration lands in the session when the image service replies.
func GenerateGDTImage(m *session.Manager, lg *zap.SugaredLogger) http.HandlerFunc {
	return live(m, lg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		pid, ok := pathInt(r, "pid")
		if !ok {
			http.Error(w, "invalid parameter id", http.StatusBadRequest)
			return
		}
		rep, err := s.GenerateImage(r.Context(), pid)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondStatus(w, http.StatusAccepted, rep)
	})
}

// Sign records the caller's signature under their own role.
func Sign(m *session.Manager, au Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return live(m, lg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		var req struct {
			Comment string `json:"comment"`
		}
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		c := auth.FromContext(r.Context())
		rep, err := s.SignOff(r.Context(), c.Role, req.Comment)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r.Context(), au, lg, c.Subject, rep.ID, "inspection.sign", map[string]any{"role": c.Role})
		respondJSON(w, rep)
	})
}

func Complete(m *session.Manager, au Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return live(m, lg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		var req struct {
			FinalStatus inspection.InspectionStatus `json:"finalStatus"`
		}
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rep, err := s.Complete(r.Context(), req.FinalStatus)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		audit(r.Context(), au, lg, auth.Subject(r.Context()), rep.ID, "inspection.complete", map[string]any{"finalStatus": req.FinalStatus})
		respondJSON(w, rep)
	})
}
