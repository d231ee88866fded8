package telemetry

// VariableSelector picks one channel plus the metadata used to present it.
// Only Name is interpreted; the rest is carried through to renderers.
type VariableSelector struct {
	Name  string `json:"name" yaml:"name"`
	Label string `json:"label" yaml:"label"`
	Unit  string `json:"unit,omitempty" yaml:"unit,omitempty"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Channel resolves the selector name.
func (v VariableSelector) Channel() (Channel, error) {
	return ParseChannel(v.Name)
}

// IsArcStatus reports whether the selector triggers arc duration accumulation.
func (v VariableSelector) IsArcStatus() bool {
	ch, err := v.Channel()
	return err == nil && ch == ArcStatus
}

var catalog = map[Channel]VariableSelector{
	VoltageL1:      {Name: string(VoltageL1), Label: "Tensão L1", Unit: "V", Color: "#4D9261"},
	VoltageL2:      {Name: string(VoltageL2), Label: "Tensão L2", Unit: "V", Color: "#0085D3"},
	VoltageL3:      {Name: string(VoltageL3), Label: "Tensão L3", Unit: "V", Color: "#46BBC5"},
	CurrentL1:      {Name: string(CurrentL1), Label: "Corrente L1", Unit: "A", Color: "#14E545"},
	CurrentL2:      {Name: string(CurrentL2), Label: "Corrente L2", Unit: "A", Color: "#1F74BC"},
	CurrentL3:      {Name: string(CurrentL3), Label: "Corrente L3", Unit: "A", Color: "#f8e809"},
	InputPower:     {Name: string(InputPower), Label: "Potência de Entrada", Unit: "Kva/h", Color: "#1A1818"},
	GasFlow:        {Name: string(GasFlow), Label: "Fluxo de Gás", Unit: "m³", Color: "#E56B14"},
	ArcStatus:      {Name: string(ArcStatus), Label: "Status do Arco", Color: "#000"},
	WeldingCurrent: {Name: string(WeldingCurrent), Label: "Corrente de Solda", Unit: "A", Color: "#E4003F"},
	WeldingVoltage: {Name: string(WeldingVoltage), Label: "Tensão de Solda", Unit: "V", Color: "#987757"},
	WireSpeed:      {Name: string(WireSpeed), Label: "Velocidade do Arame", Unit: "%", Color: "#6E0095"},
}

// Catalog returns the default selectors in dashboard order.
func Catalog() []VariableSelector {
	out := make([]VariableSelector, 0, len(Channels))
	for _, ch := range Channels {
		out = append(out, catalog[ch])
	}
	return out
}

// LookupVariable returns the catalog selector for a channel name.
func LookupVariable(name string) (VariableSelector, error) {
	ch, err := ParseChannel(name)
	if err != nil {
		return VariableSelector{}, err
	}
	return catalog[ch], nil
}

// WithDefaults fills empty display fields from the catalog. Unknown names are
// returned untouched so the failure surfaces on the report entry.
func (v VariableSelector) WithDefaults() VariableSelector {
	def, err := LookupVariable(v.Name)
	if err != nil {
		return v
	}
	if v.Label == "" {
		v.Label = def.Label
	}
	if v.Unit == "" {
		v.Unit = def.Unit
	}
	if v.Color == "" {
		v.Color = def.Color
	}
	return v
}
