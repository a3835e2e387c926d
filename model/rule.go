// model/rule.go
package model

import (
	"sort"
	"strings"
)

// PortRange is a contiguous span of ports, ordered by (startPort, endPort).
type PortRange struct {
	StartPort int64 `json:"startPort"`
	EndPort   int64 `json:"endPort"`
}

// AddressRange is a CIDR block split into the network address and the
// "/prefixLength" suffix; ipv4 and ipv6 forms share this shape.
type AddressRange struct {
	IP   string `json:"ip"`
	CIDR string `json:"cidr"`
}

// InboundRule is the polymorphic access rule of a reconstructed security
// group. Exactly two variants exist: RangeRule for CIDR sources and
// ReferenceRule for security-group sources. The unexported identity method
// both seals the variant set and drives the total ordering shared by the two.
type InboundRule interface {
	RuleProtocol() string
	RulePortRanges() []PortRange
	identity() (primary, secondary string)
}

// RangeRule allows traffic from an address range.
type RangeRule struct {
	Protocol   string       `json:"protocol"`
	PortRanges []PortRange  `json:"portRanges"`
	Range      AddressRange `json:"range"`
}

func (r RangeRule) RuleProtocol() string        { return r.Protocol }
func (r RangeRule) RulePortRanges() []PortRange { return r.PortRanges }
func (r RangeRule) identity() (string, string)  { return r.Range.IP, r.Range.CIDR }

// ReferenceRule allows traffic from another security group, carried by value
// as a partially-resolved summary rather than a link into the object graph.
type ReferenceRule struct {
	Protocol        string               `json:"protocol"`
	PortRanges      []PortRange          `json:"portRanges"`
	ReferencedGroup SecurityGroupSummary `json:"referencedGroup"`
}

func (r ReferenceRule) RuleProtocol() string        { return r.Protocol }
func (r ReferenceRule) RulePortRanges() []PortRange { return r.PortRanges }

func (r ReferenceRule) identity() (string, string) {
	// References without an id (name-only permissions) fall back to the name
	// so the rule still occupies a stable position in the ordering.
	if r.ReferencedGroup.ID != "" {
		return r.ReferencedGroup.ID, ""
	}
	return r.ReferencedGroup.Name, ""
}

// CompareRules defines the single total ordering across both rule variants:
// the variant-specific identity first, protocol as the tie-break.
func CompareRules(a, b InboundRule) int {
	ap, as := a.identity()
	bp, bs := b.identity()
	if c := strings.Compare(ap, bp); c != 0 {
		return c
	}
	if c := strings.Compare(as, bs); c != 0 {
		return c
	}
	return strings.Compare(a.RuleProtocol(), b.RuleProtocol())
}

// SortRules orders a rule set by CompareRules.
func SortRules(rules []InboundRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return CompareRules(rules[i], rules[j]) < 0
	})
}

// ComparePortRanges orders port ranges by (startPort, endPort).
func ComparePortRanges(a, b PortRange) int {
	switch {
	case a.StartPort < b.StartPort:
		return -1
	case a.StartPort > b.StartPort:
		return 1
	case a.EndPort < b.EndPort:
		return -1
	case a.EndPort > b.EndPort:
		return 1
	default:
		return 0
	}
}

// SortPortRanges orders a port range set by (startPort, endPort).
func SortPortRanges(ranges []PortRange) {
	sort.Slice(ranges, func(i, j int) bool {
		return ComparePortRanges(ranges[i], ranges[j]) < 0
	})
}
