package security

import "regexp"

var machineIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:-]{0,127}$`)

// IsSafeMachineID accepts uuids, codes and other opaque ids that are safe to
// forward to upstream services and SQL placeholders.
func IsSafeMachineID(value string) bool {
	return machineIDRegex.MatchString(value)
}
