package natdisc

// LegacyNATType maps a mapping/filtering pair onto the RFC 3489 era
// classification names. The two-axis RFC 5780 view is strictly more
// precise; the old names survive because most tooling still speaks them.
//
//	Full Cone NAT            EI mapping + EI filtering
//	Restricted Cone NAT      EI mapping + AD filtering
//	Port Restricted Cone NAT EI mapping + APD filtering
//	Symmetric NAT            AD or APD mapping, any filtering
func LegacyNATType(m MappingBehavior, f FilteringBehavior) string {
	switch {
	case m == NoNAT:
		return "Open Internet"
	case m == MappingEndpointIndependent && f == FilteringEndpointIndependent:
		return "Full Cone NAT"
	case m == MappingEndpointIndependent && f == FilteringAddressDependent:
		return "Restricted Cone NAT"
	case m == MappingEndpointIndependent && f == FilteringAddressAndPortDependent:
		return "Port Restricted Cone NAT"
	case m == MappingAddressDependent || m == MappingAddressAndPortDependent:
		return "Symmetric NAT"
	default:
		return "Unknown"
	}
}
