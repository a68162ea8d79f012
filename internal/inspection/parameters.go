package inspection

const defaultParameterDescription = "New Parameter"

// NextParameterID is one greater than the largest id in the collection, or
// 1 for an empty collection. Ids freed by removal below the maximum are not
// reused, but removing the maximum makes its id available again.
func NextParameterID(params []InspectionParameter) int {
	next := 1
	for _, p := range params {
		if p.ID >= next {
			next = p.ID + 1
		}
	}
	return next
}

func AddParameter(r Report) Report {
	p := InspectionParameter{
		ID:            NextParameterID(r.Parameters),
		Description:   defaultParameterDescription,
		ToleranceType: ToleranceBilateral,
		Status:        StatusPending,
		Evidence:      []Evidence{},
	}
	params := make([]InspectionParameter, 0, len(r.Parameters)+1)
	params = append(params, r.Parameters...)
	r.Parameters = append(params, p)
	return r
}

// RemoveParameter drops the parameter with the given id. Unknown ids are a no-op.
func RemoveParameter(r Report, id int) Report {
	if r.indexOf(id) < 0 {
		return r
	}
	params := make([]InspectionParameter, 0, len(r.Parameters)-1)
	for _, p := range r.Parameters {
		if p.ID != id {
			params = append(params, p)
		}
	}
	r.Parameters = params
	return r
}

// UpdateParameter merges patch into the parameter with the given id, re-resolves
// its limits when a tolerance input changed, then re-evaluates it. Unknown ids
// are a no-op. The patch is assumed to have passed Validate.
func UpdateParameter(r Report, id int, patch ParameterPatch) Report {
	i := r.indexOf(id)
	if i < 0 {
		return r
	}
	p := patch.apply(r.Parameters[i])
	if patch.TouchesTolerance() {
		p.UTL, p.LTL = ResolveLimits(p.Nominal, p.ToleranceType, p.ToleranceValue)
	}
	return r.withParameter(i, Evaluate(p))
}

// UpdateProductDetails merges the non-nil entries of fields into the product details.
func UpdateProductDetails(r Report, fields map[string]*string) Report {
	d := r.ProductDetails
	for key, val := range fields {
		if val == nil {
			continue
		}
		switch key {
		case "productName":
			d.ProductName = *val
		case "partNumber":
			d.PartNumber = *val
		case "serialNumber":
			d.SerialNumber = *val
		case "drawingNumber":
			d.DrawingNumber = *val
		case "revision":
			d.Revision = *val
		case "supplier":
			d.Supplier = *val
		case "quantity":
			d.Quantity = *val
		}
	}
	r.ProductDetails = d
	return r
}
