package inspection

func AddReportEvidence(r Report, item Evidence) Report {
	r.Evidence = appendEvidence(r.Evidence, item)
	return r
}

// RemoveReportEvidence removes the report-level item at index; out of range is a no-op.
func RemoveReportEvidence(r Report, index int) Report {
	if index < 0 || index >= len(r.Evidence) {
		return r
	}
	r.Evidence = removeEvidence(r.Evidence, index)
	return r
}

// AddParameterEvidence appends item to a parameter's evidence. Unknown ids are a no-op.
func AddParameterEvidence(r Report, parameterID int, item Evidence) Report {
	i := r.indexOf(parameterID)
	if i < 0 {
		return r
	}
	p := r.Parameters[i]
	p.Evidence = appendEvidence(p.Evidence, item)
	return r.withParameter(i, p)
}

// RemoveParameterEvidence removes the item at index from a parameter's
// evidence. Unknown ids and out of range indexes are a no-op.
func RemoveParameterEvidence(r Report, parameterID, index int) Report {
	i := r.indexOf(parameterID)
	if i < 0 {
		return r
	}
	p := r.Parameters[i]
	if index < 0 || index >= len(p.Evidence) {
		return r
	}
	p.Evidence = removeEvidence(p.Evidence, index)
	return r.withParameter(i, p)
}

func appendEvidence(items []Evidence, item Evidence) []Evidence {
	out := make([]Evidence, 0, len(items)+1)
	out = append(out, items...)
	return append(out, item)
}

func removeEvidence(items []Evidence, index int) []Evidence {
	out := make([]Evidence, 0, len(items)-1)
	out = append(out, items[:index]...)
	return append(out, items[index+1:]...)
}
