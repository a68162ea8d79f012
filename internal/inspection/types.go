// Package inspection holds the inspection report aggregate and the pure
// operations that evaluate and edit it. Every operation takes a Report by
// value and returns a new Report; nothing in this package mutates its input.
package inspection

import "time"

type Role string

const (
	RoleAdmin           Role = "ADMIN"
	RoleInspector       Role = "INSPECTOR"
	RoleSupervisor      Role = "SUPERVISOR"
	RoleCustomer        Role = "CUSTOMER"
	RoleQualityEngineer Role = "QUALITY_ENGINEER"
)

// Roles lists every known role in display order.
var Roles = []Role{RoleAdmin, RoleInspector, RoleSupervisor, RoleCustomer, RoleQualityEngineer}

func (r Role) IsValid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

type ToleranceType string

const (
	ToleranceBilateral ToleranceType = "+/-"
	TolerancePlus      ToleranceType = "+"
	ToleranceMinus     ToleranceType = "-"
)

func (t ToleranceType) IsValid() bool {
	switch t {
	case ToleranceBilateral, TolerancePlus, ToleranceMinus:
		return true
	}
	return false
}

// ParameterStatus is the derived pass/fail state of a single measurement.
type ParameterStatus string

const (
	StatusPending ParameterStatus = "PENDING"
	StatusPass    ParameterStatus = "PASS"
	StatusFail    ParameterStatus = "FAIL"
)

// InspectionStatus is the final disposition recorded when an inspection completes.
type InspectionStatus string

const (
	InspectionPass        InspectionStatus = "PASS"
	InspectionFail        InspectionStatus = "FAIL"
	InspectionConditional InspectionStatus = "CONDITIONAL"
)

func (s InspectionStatus) IsValid() bool {
	switch s {
	case InspectionPass, InspectionFail, InspectionConditional:
		return true
	}
	return false
}

// GDTImageLoading marks a parameter whose GD&T illustration is being generated.
const GDTImageLoading = "loading"

type ProductDetails struct {
	ProductName   string `json:"productName"`
	PartNumber    string `json:"partNumber"`
	SerialNumber  string `json:"serialNumber"`
	DrawingNumber string `json:"drawingNumber"`
	Revision      string `json:"revision"`
	Supplier      string `json:"supplier"`
	Quantity      string `json:"quantity"`
}

type Evidence struct {
	CapturedAt time.Time `json:"capturedAt"`
	ImageData  string    `json:"imageData"`
	Caption    string    `json:"caption,omitempty"`
}

// InspectionParameter is one evaluable characteristic. UTL, LTL, Deviation
// and Status are derived and only ever written by ResolveLimits and Evaluate.
type InspectionParameter struct {
	ID             int             `json:"id"`
	Description    string          `json:"description"`
	Nominal        float64         `json:"nominal"`
	ToleranceType  ToleranceType   `json:"toleranceType"`
	ToleranceValue float64         `json:"toleranceValue"`
	UTL            float64         `json:"utl"`
	LTL            float64         `json:"ltl"`
	Actual         *float64        `json:"actual,omitempty"`
	Deviation      *float64        `json:"deviation,omitempty"`
	Status         ParameterStatus `json:"status"`
	GDTSymbol      *string         `json:"gdtSymbol,omitempty"`
	GDTImage       *string         `json:"gdtImage,omitempty"`
	Evidence       []Evidence      `json:"evidence"`
}

type Signature struct {
	Signed    bool      `json:"signed"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
}

// Report is the aggregate root of an inspection session.
type Report struct {
	ID             string                `json:"id"`
	Title          string                `json:"title"`
	ScheduledByID  string                `json:"scheduledById"`
	ProductDetails ProductDetails        `json:"productDetails"`
	Parameters     []InspectionParameter `json:"parameters"`
	Evidence       []Evidence            `json:"evidence"`
	Signatures     map[Role]Signature    `json:"signatures"`
	IsComplete     bool                  `json:"isComplete"`
	FinalStatus    *InspectionStatus     `json:"finalStatus,omitempty"`
}

// NewReport returns a freshly scheduled report with no parameters and no signatures.
func NewReport(id, title, inspectorID string) Report {
	return Report{
		ID:            id,
		Title:         title,
		ScheduledByID: inspectorID,
		Parameters:    []InspectionParameter{},
		Evidence:      []Evidence{},
		Signatures:    map[Role]Signature{},
	}
}

// Parameter returns the parameter with the given id.
func (r Report) Parameter(id int) (InspectionParameter, bool) {
	for _, p := range r.Parameters {
		if p.ID == id {
			return p, true
		}
	}
	return InspectionParameter{}, false
}

func (r Report) indexOf(id int) int {
	for i, p := range r.Parameters {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// withParameter returns a copy of r whose parameter at index i is replaced.
func (r Report) withParameter(i int, p InspectionParameter) Report {
	params := make([]InspectionParameter, len(r.Parameters))
	copy(params, r.Parameters)
	params[i] = p
	r.Parameters = params
	return r
}

func float(v float64) *float64 { return &v }
