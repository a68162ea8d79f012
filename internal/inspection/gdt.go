package inspection

// GDTSymbol is one geometric dimensioning and tolerancing characteristic.
type GDTSymbol struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

var GDTSymbols = []GDTSymbol{
	{Symbol: "⏤", Name: "Straightness", Category: "Form"},
	{Symbol: "⏥", Name: "Flatness", Category: "Form"},
	{Symbol: "○", Name: "Circularity", Category: "Form"},
	{Symbol: "⌭", Name: "Cylindricity", Category: "Form"},
	{Symbol: "⌒", Name: "Profile of a Line", Category: "Profile"},
	{Symbol: "⌓", Name: "Profile of a Surface", Category: "Profile"},
	{Symbol: "∠", Name: "Angularity", Category: "Orientation"},
	{Symbol: "⟂", Name: "Perpendicularity", Category: "Orientation"},
	{Symbol: "∥", Name: "Parallelism", Category: "Orientation"},
	{Symbol: "⌖", Name: "Position", Category: "Location"},
	{Symbol: "◎", Name: "Concentricity", Category: "Location"},
	{Symbol: "⌯", Name: "Symmetry", Category: "Location"},
	{Symbol: "↗", Name: "Circular Runout", Category: "Runout"},
	{Symbol: "⌰", Name: "Total Runout", Category: "Runout"},
}

func LookupGDTSymbol(symbol string) (GDTSymbol, bool) {
	for _, s := range GDTSymbols {
		if s.Symbol == symbol {
			return s, true
		}
	}
	return GDTSymbol{}, false
}
