// reconstructor/rule_reconstructor.go

// Package reconstructor turns the raw ingress permissions of one cached
// security group into its deduplicated, grouped, and totally ordered inbound
// rule set. Cross-references to other groups are resolved against the cache
// and the account registry by value; the result never links back into the
// reconstructed object graph.
package reconstructor

import (
	"context"
	"strings"

	"github.com/sepulvedablanco/clouddriver/dao"
	"github.com/sepulvedablanco/clouddriver/model"
	"github.com/sepulvedablanco/clouddriver/resolver"
)

type RuleReconstructor struct {
	sgDAO    *dao.SecurityGroupDAO
	accounts *resolver.AccountResolver
}

func NewRuleReconstructor(sgDAO *dao.SecurityGroupDAO, accounts *resolver.AccountResolver) *RuleReconstructor {
	return &RuleReconstructor{sgDAO: sgDAO, accounts: accounts}
}

// rangeKey groups expanded address tuples: one rule per protocol and range.
type rangeKey struct {
	protocol string
	ip       string
	cidr     string
}

// refKey groups expanded reference tuples: one rule per protocol and
// referenced group. The group component is the referenced id, or the name
// for references whose id never became known.
type refKey struct {
	protocol string
	group    string
}

type referenceGroup struct {
	summary model.SecurityGroupSummary
	ports   map[model.PortRange]struct{}
}

// Reconstruct builds the inbound rule set for one cached group. The output
// is deterministic regardless of permission order. Only a failing cache
// store aborts reconstruction; unresolved references degrade to partial
// summaries instead.
func (rc *RuleReconstructor) Reconstruct(ctx context.Context, group *model.CachedSecurityGroup) ([]model.InboundRule, error) {
	rangeGroups := make(map[rangeKey]map[model.PortRange]struct{})
	refGroups := make(map[refKey]*referenceGroup)
	lookups := make(map[string]*model.CachedSecurityGroup)

	for _, perm := range group.Permissions {
		ports := permissionPortRange(perm)

		for _, r := range perm.IPv4Ranges {
			addRangePort(rangeGroups, perm.Protocol, r.CIDR, ports)
		}
		for _, r := range perm.IPv6Ranges {
			addRangePort(rangeGroups, perm.Protocol, r.CIDR, ports)
		}

		for _, ref := range perm.CrossReferences {
			summary, err := rc.resolveReference(ctx, group, ref, lookups)
			if err != nil {
				return nil, err
			}

			key := refKey{protocol: perm.Protocol, group: summary.ID}
			if key.group == "" {
				key.group = summary.Name
			}
			rg, ok := refGroups[key]
			if !ok {
				rg = &referenceGroup{summary: summary, ports: make(map[model.PortRange]struct{})}
				refGroups[key] = rg
			} else {
				rg.summary = fillSummary(rg.summary, summary)
			}
			rg.ports[ports] = struct{}{}
		}
	}

	rules := make([]model.InboundRule, 0, len(rangeGroups)+len(refGroups))
	for key, ports := range rangeGroups {
		rules = append(rules, model.RangeRule{
			Protocol:   key.protocol,
			PortRanges: sortedPortRanges(ports),
			Range:      model.AddressRange{IP: key.ip, CIDR: key.cidr},
		})
	}
	for key, rg := range refGroups {
		rules = append(rules, model.ReferenceRule{
			Protocol:        key.protocol,
			PortRanges:      sortedPortRanges(rg.ports),
			ReferencedGroup: rg.summary,
		})
	}

	model.SortRules(rules)
	return rules, nil
}

// resolveReference completes one cross-reference into a summary. Same-account
// references carrying a name are answered without touching the cache; every
// other shape costs at most one memoized cache lookup, and a lookup miss
// degrades to whatever the raw reference carried.
func (rc *RuleReconstructor) resolveReference(ctx context.Context, resource *model.CachedSecurityGroup, ref model.CrossReference, lookups map[string]*model.CachedSecurityGroup) (model.SecurityGroupSummary, error) {
	summary := model.SecurityGroupSummary{
		ID:        ref.GroupID,
		Name:      ref.GroupName,
		AccountID: ref.OwnerID,
		Region:    resource.Key.Region,
	}

	// An unknown owner keeps accountName absent and scopes the lookup to any
	// account.
	account := ""
	if resolved := rc.accounts.ResolveByAccountID(ref.OwnerID); resolved != nil {
		summary.AccountName = resolved.Name
		account = resolved.Name
	}

	if ref.GroupName != "" && summary.AccountName == resource.Key.Account {
		return summary, nil
	}

	cached, err := rc.lookup(ctx, lookups, account, resource.Key.Region, ref.GroupID, ref.GroupName)
	if err != nil {
		return model.SecurityGroupSummary{}, err
	}
	if cached == nil {
		return summary, nil
	}

	if summary.ID == "" {
		summary.ID = cached.Key.ID
	}
	if summary.Name == "" {
		summary.Name = cached.Key.Name
	}
	summary.VpcID = cached.Key.VpcID
	return summary, nil
}

func (rc *RuleReconstructor) lookup(ctx context.Context, lookups map[string]*model.CachedSecurityGroup, account, region, groupID, groupName string) (*model.CachedSecurityGroup, error) {
	key := strings.Join([]string{account, region, groupID, groupName}, "|")
	if cached, ok := lookups[key]; ok {
		return cached, nil
	}

	group, err := rc.sgDAO.LookupGroup(ctx, account, region, groupID, groupName)
	if err != nil {
		return nil, err
	}
	lookups[key] = group
	return group, nil
}

// permissionPortRange reads the permission's port span; absent bounds mean
// zero, as for all-protocol permissions that carry no ports.
func permissionPortRange(perm model.IngressPermission) model.PortRange {
	ports := model.PortRange{}
	if perm.FromPort != nil {
		ports.StartPort = *perm.FromPort
	}
	if perm.ToPort != nil {
		ports.EndPort = *perm.ToPort
	}
	return ports
}

func addRangePort(groups map[rangeKey]map[model.PortRange]struct{}, protocol, cidr string, ports model.PortRange) {
	ip, suffix := splitAddressRange(cidr)
	key := rangeKey{protocol: protocol, ip: ip, cidr: suffix}
	set, ok := groups[key]
	if !ok {
		set = make(map[model.PortRange]struct{})
		groups[key] = set
	}
	set[ports] = struct{}{}
}

// splitAddressRange separates "10.0.0.0/8" into "10.0.0.0" and "/8". The
// prefix length keeps its slash so the parts re-join losslessly; a value
// without one stays whole with an empty suffix.
func splitAddressRange(cidr string) (ip, suffix string) {
	if idx := strings.LastIndex(cidr, "/"); idx >= 0 {
		return cidr[:idx], cidr[idx:]
	}
	return cidr, ""
}

// fillSummary completes blank fields of a reference summary from another
// sighting of the same group, keeping already-known values. Duplicate
// references differ in completeness, not content, so the merge is
// insensitive to permission order.
func fillSummary(base, other model.SecurityGroupSummary) model.SecurityGroupSummary {
	if base.ID == "" {
		base.ID = other.ID
	}
	if base.Name == "" {
		base.Name = other.Name
	}
	if base.AccountName == "" {
		base.AccountName = other.AccountName
	}
	if base.AccountID == "" {
		base.AccountID = other.AccountID
	}
	if base.VpcID == "" {
		base.VpcID = other.VpcID
	}
	return base
}

func sortedPortRanges(set map[model.PortRange]struct{}) []model.PortRange {
	ranges := make([]model.PortRange, 0, len(set))
	for ports := range set {
		ranges = append(ranges, ports)
	}
	model.SortPortRanges(ranges)
	return ranges
}
