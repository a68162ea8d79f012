package inspection

// Summary is the results-dashboard view of a report.
type Summary struct {
	ReportID          string            `json:"reportId"`
	Total             int               `json:"total"`
	Passed            int               `json:"passed"`
	Failed            int               `json:"failed"`
	Pending           int               `json:"pending"`
	SuggestedStatus   InspectionStatus  `json:"suggestedStatus"`
	PendingSignatures []Role            `json:"pendingSignatures"`
	IsComplete        bool              `json:"isComplete"`
	FinalStatus       *InspectionStatus `json:"finalStatus,omitempty"`
}

// Summarize counts parameter outcomes. The suggested status is FAIL when any
// parameter failed, CONDITIONAL while measurements are outstanding, else PASS.
func Summarize(r Report, requiredSigners []Role) Summary {
	s := Summary{
		ReportID:          r.ID,
		Total:             len(r.Parameters),
		PendingSignatures: PendingSignatures(r, requiredSigners),
		IsComplete:        r.IsComplete,
		FinalStatus:       r.FinalStatus,
	}
	for _, p := range r.Parameters {
		switch p.Status {
		case StatusPass:
			s.Passed++
		case StatusFail:
			s.Failed++
		default:
			s.Pending++
		}
	}
	switch {
	case s.Failed > 0:
		s.SuggestedStatus = InspectionFail
	case s.Pending > 0:
		s.SuggestedStatus = InspectionConditional
	default:
		s.SuggestedStatus = InspectionPass
	}
	return s
}
