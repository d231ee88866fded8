package telemetry

import "strings"

// Channel names one measured variable of a ReadingRecord.
type Channel string

const (
	WeldingCurrent Channel = "weldingCurrent"
	WeldingVoltage Channel = "weldingVoltage"
	ArcStatus      Channel = "arcStatus"
	WireSpeed      Channel = "wireSpeed"
	VoltageL1      Channel = "voltageL1"
	VoltageL2      Channel = "voltageL2"
	VoltageL3      Channel = "voltageL3"
	CurrentL1      Channel = "currentL1"
	CurrentL2      Channel = "currentL2"
	CurrentL3      Channel = "currentL3"
	InputPower     Channel = "inputPower"
	GasFlow        Channel = "gasFlow"
)

// Channels lists every channel in dashboard order.
var Channels = []Channel{
	VoltageL1, VoltageL2, VoltageL3,
	CurrentL1, CurrentL2, CurrentL3,
	InputPower, GasFlow, ArcStatus,
	WeldingCurrent, WeldingVoltage, WireSpeed,
}

// upstream services spell some channels in snake case
var channelAliases = map[string]Channel{
	"welding_current": WeldingCurrent,
	"welding_voltage": WeldingVoltage,
	"arc_status":      ArcStatus,
	"wire_speed":      WireSpeed,
	"voltage_l1":      VoltageL1,
	"voltage_l2":      VoltageL2,
	"voltage_l3":      VoltageL3,
	"current_l1":      CurrentL1,
	"current_l2":      CurrentL2,
	"current_l3":      CurrentL3,
	"input_power":     InputPower,
	"gas_flow":        GasFlow,
}

// ParseChannel resolves a channel from its camel or snake case name.
func ParseChannel(name string) (Channel, error) {
	trimmed := strings.TrimSpace(name)
	for _, ch := range Channels {
		if strings.EqualFold(string(ch), trimmed) {
			return ch, nil
		}
	}
	if ch, ok := channelAliases[strings.ToLower(trimmed)]; ok {
		return ch, nil
	}
	return "", &UnknownVariableError{Name: name}
}

// IsBoolean reports whether the channel carries on/off samples.
func (c Channel) IsBoolean() bool {
	return c == ArcStatus
}

func (c Channel) Valid() bool {
	_, err := ParseChannel(string(c))
	return err == nil
}
