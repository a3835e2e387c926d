// model/permission.go
package model

// IngressPermission is one raw access-control record as flattened into the
// cache by the population path, prior to any grouping or deduplication.
// Field names mirror the provider-native attribute layout.
type IngressPermission struct {
	Protocol        string            `json:"protocol"`
	FromPort        *int64            `json:"fromPort,omitempty"`
	ToPort          *int64            `json:"toPort,omitempty"`
	IPv4Ranges      []AddressRangeRef `json:"ipv4Ranges,omitempty"`
	IPv6Ranges      []AddressRangeRef `json:"ipv6Ranges,omitempty"`
	CrossReferences []CrossReference  `json:"crossReferences,omitempty"`
}

// AddressRangeRef carries a raw CIDR block ("10.0.0.0/8", "::/0") exactly as
// the provider reported it.
type AddressRangeRef struct {
	CIDR string `json:"cidr"`
}

// CrossReference names another security group as the allowed source of an
// ingress permission. groupId and groupName are each optional; ownerId is the
// provider-native id of the account owning the referenced group.
type CrossReference struct {
	OwnerID   string `json:"ownerId"`
	GroupID   string `json:"groupId,omitempty"`
	GroupName string `json:"groupName,omitempty"`
}
