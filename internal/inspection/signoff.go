package inspection

import "time"

type SignatureState string

const (
	Unsigned SignatureState = "UNSIGNED"
	Signed   SignatureState = "SIGNED"
)

// SignOff records role's signature, replacing any earlier one.
func SignOff(r Report, role Role, comment string, at time.Time) Report {
	sigs := make(map[Role]Signature, len(r.Signatures)+1)
	for k, v := range r.Signatures {
		sigs[k] = v
	}
	sigs[role] = Signature{Signed: true, Comment: comment, Timestamp: at}
	r.Signatures = sigs
	return r
}

func SignatureStateOf(r Report, role Role) SignatureState {
	if sig, ok := r.Signatures[role]; ok && sig.Signed {
		return Signed
	}
	return Unsigned
}

// PendingSignatures returns the roles in required that have not signed yet,
// in the order given.
func PendingSignatures(r Report, required []Role) []Role {
	var pending []Role
	for _, role := range required {
		if SignatureStateOf(r, role) == Unsigned {
			pending = append(pending, role)
		}
	}
	return pending
}

// CompleteInspection marks the report terminal with the given disposition.
// Signatures are not checked. A report that is already complete is returned
// unchanged so that its final status never changes.
func CompleteInspection(r Report, status InspectionStatus) Report {
	if r.IsComplete {
		return r
	}
	s := status
	r.IsComplete = true
	r.FinalStatus = &s
	return r
}
