package inspection

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidToleranceType = errors.New("tolerance type must be one of +/-, +, -")
	ErrNegativeTolerance    = errors.New("tolerance value must not be negative")
)

// ParameterPatch is a partial update of an InspectionParameter. A nil field
// is left untouched. The Clear flags distinguish "set to absent" from
// "not mentioned" for the optional fields.
type ParameterPatch struct {
	Description    *string
	Nominal        *float64
	ToleranceType  *ToleranceType
	ToleranceValue *float64
	Actual         *float64
	ClearActual    bool
	GDTSymbol      *string
	ClearGDTSymbol bool
	GDTImage       *string
	ClearGDTImage  bool
}

// TouchesTolerance reports whether the patch changes any input of ResolveLimits.
func (p ParameterPatch) TouchesTolerance() bool {
	return p.Nominal != nil || p.ToleranceType != nil || p.ToleranceValue != nil
}

func (p ParameterPatch) Validate() error {
	if p.ToleranceType != nil && !p.ToleranceType.IsValid() {
		return ErrInvalidToleranceType
	}
	if p.ToleranceValue != nil && *p.ToleranceValue < 0 {
		return ErrNegativeTolerance
	}
	return nil
}

// UnmarshalJSON decodes a patch so that an explicit null clears an optional
// field while an omitted key leaves it alone. Derived fields (utl, ltl,
// deviation, status) are ignored.
func (p *ParameterPatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = ParameterPatch{}
	for key, val := range raw {
		isNull := string(val) == "null"
		var err error
		switch key {
		case "description":
			if !isNull {
				err = decodeInto(val, &p.Description)
			}
		case "nominal":
			if !isNull {
				err = decodeInto(val, &p.Nominal)
			}
		case "toleranceType":
			if !isNull {
				err = decodeInto(val, &p.ToleranceType)
			}
		case "toleranceValue":
			if !isNull {
				err = decodeInto(val, &p.ToleranceValue)
			}
		case "actual":
			if isNull {
				p.ClearActual = true
			} else {
				err = decodeInto(val, &p.Actual)
			}
		case "gdtSymbol":
			if isNull {
				p.ClearGDTSymbol = true
			} else {
				err = decodeInto(val, &p.GDTSymbol)
			}
		case "gdtImage":
			if isNull {
				p.ClearGDTImage = true
			} else {
				err = decodeInto(val, &p.GDTImage)
			}
		}
		if err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
	}
	return nil
}

func decodeInto[T any](val json.RawMessage, dst **T) error {
	var v T
	if err := json.Unmarshal(val, &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}

func (p ParameterPatch) apply(param InspectionParameter) InspectionParameter {
	if p.Description != nil {
		param.Description = *p.Description
	}
	if p.Nominal != nil {
		param.Nominal = *p.Nominal
	}
	if p.ToleranceType != nil {
		param.ToleranceType = *p.ToleranceType
	}
	if p.ToleranceValue != nil {
		param.ToleranceValue = *p.ToleranceValue
	}
	switch {
	case p.ClearActual:
		param.Actual = nil
	case p.Actual != nil:
		param.Actual = float(*p.Actual)
	}
	switch {
	case p.ClearGDTSymbol:
		param.GDTSymbol = nil
	case p.GDTSymbol != nil:
		s := *p.GDTSymbol
		param.GDTSymbol = &s
	}
	switch {
	case p.ClearGDTImage:
		param.GDTImage = nil
	case p.GDTImage != nil:
		s := *p.GDTImage
		param.GDTImage = &s
	}
	return param
}
