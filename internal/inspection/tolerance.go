package inspection

// ResolveLimits maps a nominal value and tolerance specification to the
// upper and lower tolerance limits. Unknown tolerance types resolve as
// bilateral.
func ResolveLimits(nominal float64, tt ToleranceType, value float64) (utl, ltl float64) {
	switch tt {
	case TolerancePlus:
		return nominal + value, nominal
	case ToleranceMinus:
		return nominal, nominal - value
	default:
		return nominal + value, nominal - value
	}
}

// Evaluate re-derives deviation and status from the parameter's actual
// value and its current limits. Limits must already be resolved.
func Evaluate(p InspectionParameter) InspectionParameter {
	if p.Actual == nil {
		p.Deviation = nil
		p.Status = StatusPending
		return p
	}
	actual := *p.Actual
	p.Deviation = float(actual - p.Nominal)
	if actual >= p.LTL && actual <= p.UTL {
		p.Status = StatusPass
	} else {
		p.Status = StatusFail
	}
	return p
}
