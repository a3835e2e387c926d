// reconstructor/rule_reconstructor_test.go
package reconstructor_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sepulvedablanco/clouddriver/cache"
	"github.com/sepulvedablanco/clouddriver/dao"
	"github.com/sepulvedablanco/clouddriver/keys"
	logger "github.com/sepulvedablanco/clouddriver/logging"
	"github.com/sepulvedablanco/clouddriver/model"
	"github.com/sepulvedablanco/clouddriver/reconstructor"
	"github.com/sepulvedablanco/clouddriver/resolver"
)

func TestMain(m *testing.M) {
	logDir, err := os.MkdirTemp("", "reconstructor-test-logs")
	if err != nil {
		panic(err)
	}
	logger.InitLogger(logDir)

	code := m.Run()
	os.RemoveAll(logDir)
	os.Exit(code)
}

// countingStore tracks how many filtered scans the reconstruction performed.
type countingStore struct {
	cache.Store
	filterCalls int
}

func (s *countingStore) Filter(ctx context.Context, namespace, pattern string) ([]*cache.Entry, error) {
	s.filterCalls++
	return s.Store.Filter(ctx, namespace, pattern)
}

var testAccounts = []model.Account{
	{Name: "prod", AccountID: "100000000001"},
	{Name: "test", AccountID: "100000000002"},
}

func newReconstructor(store cache.Store) *reconstructor.RuleReconstructor {
	return reconstructor.NewRuleReconstructor(
		dao.NewSecurityGroupDAO(store),
		resolver.NewAccountResolver(testAccounts),
	)
}

func seedGroup(t *testing.T, store cache.Store, account, region, name, id, vpc string) {
	t.Helper()
	key := keys.Encode(keys.ResourceKey{
		Type: keys.TypeSecurityGroup, Account: account, Region: region,
		Name: name, ID: id, VpcID: vpc,
	})
	entry := &cache.Entry{Key: key, Attributes: map[string]interface{}{
		"groupId": id, "groupName": name, "vpcId": vpc,
	}}
	require.NoError(t, store.Merge(context.Background(), keys.NamespaceSecurityGroups, entry))
}

func cachedGroup(account, region, name, id, vpc string, perms ...model.IngressPermission) *model.CachedSecurityGroup {
	return &model.CachedSecurityGroup{
		Key: keys.ResourceKey{
			Type: keys.TypeSecurityGroup, Account: account, Region: region,
			Name: name, ID: id, VpcID: vpc,
		},
		Permissions: perms,
	}
}

func port(v int64) *int64 { return &v }

func ipv4Permission(protocol string, from, to int64, cidrs ...string) model.IngressPermission {
	perm := model.IngressPermission{Protocol: protocol, FromPort: port(from), ToPort: port(to)}
	for _, cidr := range cidrs {
		perm.IPv4Ranges = append(perm.IPv4Ranges, model.AddressRangeRef{CIDR: cidr})
	}
	return perm
}

func refPermission(protocol string, from, to int64, refs ...model.CrossReference) model.IngressPermission {
	return model.IngressPermission{
		Protocol: protocol, FromPort: port(from), ToPort: port(to),
		CrossReferences: refs,
	}
}

func TestGroupsByRangeAndProtocol(t *testing.T) {
	rc := newReconstructor(cache.NewInMemoryStore())
	group := cachedGroup("prod", "us-east-1", "web", "sg-1", "vpc-1",
		ipv4Permission("tcp", 7001, 8080, "0.0.0.0/32"),
		ipv4Permission("tcp", 7000, 8000, "0.0.0.0/32", "0.0.0.1/31"),
	)

	rules, err := rc.Reconstruct(context.Background(), group)
	require.NoError(t, err)

	expected := []model.InboundRule{
		model.RangeRule{
			Protocol: "tcp",
			PortRanges: []model.PortRange{
				{StartPort: 7000, EndPort: 8000},
				{StartPort: 7001, EndPort: 8080},
			},
			Range: model.AddressRange{IP: "0.0.0.0", CIDR: "/32"},
		},
		model.RangeRule{
			Protocol:   "tcp",
			PortRanges: []model.PortRange{{StartPort: 7000, EndPort: 8000}},
			Range:      model.AddressRange{IP: "0.0.0.1", CIDR: "/31"},
		},
	}
	assert.Equal(t, expected, rules)
}

func TestProtocolSeparatesGroupsSharingARange(t *testing.T) {
	rc := newReconstructor(cache.NewInMemoryStore())
	group := cachedGroup("prod", "us-east-1", "web", "sg-1", "vpc-1",
		ipv4Permission("udp", 7001, 8080, "0.0.0.0/32"),
		ipv4Permission("tcp", 7001, 8080, "0.0.0.0/32"),
		ipv4Permission("tcp", 7001, 8080, "0.0.0.1/31"),
	)

	rules, err := rc.Reconstruct(context.Background(), group)
	require.NoError(t, err)
	require.Len(t, rules, 3)

	assert.Equal(t, "tcp", rules[0].RuleProtocol())
	assert.Equal(t, "0.0.0.0", rules[0].(model.RangeRule).Range.IP)
	assert.Equal(t, "udp", rules[1].RuleProtocol())
	assert.Equal(t, "0.0.0.0", rules[1].(model.RangeRule).Range.IP)
	assert.Equal(t, "tcp", rules[2].RuleProtocol())
	assert.Equal(t, "0.0.0.1", rules[2].(model.RangeRule).Range.IP)
}

func TestMixedRangesAndReferenceInterleave(t *testing.T) {
	rc := newReconstructor(cache.NewInMemoryStore())
	perm := ipv4Permission("tcp", 80, 80, "0.0.0.0/32", "0.0.0.1/31")
	perm.IPv6Ranges = []model.AddressRangeRef{{CIDR: "::/0"}}
	perm.CrossReferences = []model.CrossReference{
		{OwnerID: "100000000001", GroupID: "sg-9", GroupName: "peer"},
	}
	group := cachedGroup("prod", "us-east-1", "web", "sg-1", "vpc-1", perm)

	rules, err := rc.Reconstruct(context.Background(), group)
	require.NoError(t, err)
	require.Len(t, rules, 4)

	// Addresses sort before the reference: "0.0.0.0", "0.0.0.1", "::", "sg-9".
	assert.Equal(t, "0.0.0.0", rules[0].(model.RangeRule).Range.IP)
	assert.Equal(t, "0.0.0.1", rules[1].(model.RangeRule).Range.IP)
	assert.Equal(t, "::", rules[2].(model.RangeRule).Range.IP)
	assert.Equal(t, "sg-9", rules[3].(model.ReferenceRule).ReferencedGroup.ID)
}

func TestSameAccountReferenceNeedsNoCacheRead(t *testing.T) {
	store := &countingStore{Store: cache.NewInMemoryStore()}
	rc := newReconstructor(store)
	group := cachedGroup("prod", "us-east-1", "web", "sg-1", "vpc-1",
		refPermission("tcp", 80, 80, model.CrossReference{
			OwnerID: "100000000001", GroupID: "sg-9", GroupName: "peer",
		}),
	)

	rules, err := rc.Reconstruct(context.Background(), group)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	summary := rules[0].(model.ReferenceRule).ReferencedGroup
	assert.Equal(t, "sg-9", summary.ID)
	assert.Equal(t, "peer", summary.Name)
	assert.Equal(t, "prod", summary.AccountName)
	assert.Equal(t, "100000000001", summary.AccountID)
	assert.Equal(t, "us-east-1", summary.Region)
	assert.Empty(t, summary.VpcID)

	assert.Zero(t, store.filterCalls)
}

func TestCrossAccountReferenceRecoversVpcIDFromCache(t *testing.T) {
	store := &countingStore{Store: cache.NewInMemoryStore()}
	seedGroup(t, store, "test", "us-east-1", "peer", "sg-9", "vpc-ref")
	rc := newReconstructor(store)

	group := cachedGroup("prod", "us-east-1", "web", "sg-1", "vpc-1",
		refPermission("tcp", 80, 80, model.CrossReference{
			OwnerID: "100000000002", GroupID: "sg-9", GroupName: "peer",
		}),
	)

	rules, err := rc.Reconstruct(context.Background(), group)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	summary := rules[0].(model.ReferenceRule).ReferencedGroup
	assert.Equal(t, "test", summary.AccountName)
	assert.Equal(t, "100000000002", summary.AccountID)
	assert.Equal(t, "vpc-ref", summary.VpcID)

	assert.Equal(t, 1, store.filterCalls)
}

func TestMissingNameRecoveredFromCache(t *testing.T) {
	store := cache.NewInMemoryStore()
	seedGroup(t, store, "prod", "us-east-1", "peer", "sg-9", "vpc-1")
	rc := newReconstructor(store)

	group := cachedGroup("prod", "us-east-1", "web", "sg-1", "vpc-1",
		refPermission("tcp", 80, 80, model.CrossReference{
			OwnerID: "100000000001", GroupID: "sg-9",
		}),
	)

	rules, err := rc.Reconstruct(context.Background(), group)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	summary := rules[0].(model.ReferenceRule).ReferencedGroup
	assert.Equal(t, "peer", summary.Name)
	assert.Equal(t, "vpc-1", summary.VpcID)
}

func TestLookupMissDegradesToPartialSummary(t *testing.T) {
	rc := newReconstructor(cache.NewInMemoryStore())
	group := cachedGroup("prod", "us-east-1", "web", "sg-1", "vpc-1",
		refPermission("tcp", 80, 80, model.CrossReference{
			OwnerID: "100000000002", GroupID: "sg-404",
		}),
	)

	rules, err := rc.Reconstruct(context.Background(), group)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	summary := rules[0].(model.ReferenceRule).ReferencedGroup
	assert.Equal(t, "sg-404", summary.ID)
	assert.Equal(t, "test", summary.AccountName)
	assert.Equal(t, "100000000002", summary.AccountID)
	assert.Empty(t, summary.Name)
	assert.Empty(t, summary.VpcID)
}

func TestUnknownOwnerKeepsAccountIDWithoutName(t *testing.T) {
	rc := newReconstructor(cache.NewInMemoryStore())
	group := cachedGroup("prod", "us-east-1", "web", "sg-1", "vpc-1",
		refPermission("tcp", 80, 80, model.CrossReference{
			OwnerID: "999999999999", GroupID: "sg-9", GroupName: "foreign",
		}),
	)

	rules, err := rc.Reconstruct(context.Background(), group)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	summary := rules[0].(model.ReferenceRule).ReferencedGroup
	assert.Empty(t, summary.AccountName)
	assert.Equal(t, "999999999999", summary.AccountID)
	assert.Equal(t, "foreign", summary.Name)
}

func TestRepeatedReferenceLookupsAreMemoized(t *testing.T) {
	store := &countingStore{Store: cache.NewInMemoryStore()}
	seedGroup(t, store, "test", "us-east-1", "peer", "sg-9", "vpc-ref")
	rc := newReconstructor(store)

	// The same cross-account target on two protocols: two rules, one read.
	group := cachedGroup("prod", "us-east-1", "web", "sg-1", "vpc-1",
		refPermission("tcp", 80, 80, model.CrossReference{
			OwnerID: "100000000002", GroupID: "sg-9", GroupName: "peer",
		}),
		refPermission("udp", 53, 53, model.CrossReference{
			OwnerID: "100000000002", GroupID: "sg-9", GroupName: "peer",
		}),
	)

	rules, err := rc.Reconstruct(context.Background(), group)
	require.NoError(t, err)
	assert.Len(t, rules, 2)
	assert.Equal(t, 1, store.filterCalls)
}

func TestDuplicatePermissionsCollapse(t *testing.T) {
	rc := newReconstructor(cache.NewInMemoryStore())
	group := cachedGroup("prod", "us-east-1", "web", "sg-1", "vpc-1",
		ipv4Permission("tcp", 80, 80, "10.0.0.0/8"),
		ipv4Permission("tcp", 80, 80, "10.0.0.0/8"),
	)

	rules, err := rc.Reconstruct(context.Background(), group)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, []model.PortRange{{StartPort: 80, EndPort: 80}},
		rules[0].RulePortRanges())
}

func TestAdjacentPortRangesAreNotCoalesced(t *testing.T) {
	rc := newReconstructor(cache.NewInMemoryStore())
	group := cachedGroup("prod", "us-east-1", "web", "sg-1", "vpc-1",
		ipv4Permission("tcp", 80, 81, "10.0.0.0/8"),
		ipv4Permission("tcp", 82, 90, "10.0.0.0/8"),
	)

	rules, err := rc.Reconstruct(context.Background(), group)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, []model.PortRange{
		{StartPort: 80, EndPort: 81},
		{StartPort: 82, EndPort: 90},
	}, rules[0].RulePortRanges())
}

func TestPermissionWithoutPortsUsesZeroRange(t *testing.T) {
	rc := newReconstructor(cache.NewInMemoryStore())
	group := cachedGroup("prod", "us-east-1", "web", "sg-1", "vpc-1",
		model.IngressPermission{
			Protocol:   "-1",
			IPv4Ranges: []model.AddressRangeRef{{CIDR: "0.0.0.0/0"}},
		},
	)

	rules, err := rc.Reconstruct(context.Background(), group)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, []model.PortRange{{StartPort: 0, EndPort: 0}},
		rules[0].RulePortRanges())
}

func TestReconstructionIsOrderIndependent(t *testing.T) {
	store := cache.NewInMemoryStore()
	seedGroup(t, store, "test", "us-east-1", "peer", "sg-9", "vpc-ref")
	rc := newReconstructor(store)

	perms := []model.IngressPermission{
		ipv4Permission("tcp", 7001, 8080, "0.0.0.0/32"),
		ipv4Permission("udp", 7001, 8080, "0.0.0.0/32"),
		ipv4Permission("tcp", 7000, 8000, "0.0.0.0/32", "0.0.0.1/31"),
		refPermission("tcp", 80, 80, model.CrossReference{
			OwnerID: "100000000002", GroupID: "sg-9", GroupName: "peer",
		}),
	}
	reversed := make([]model.IngressPermission, len(perms))
	for i, perm := range perms {
		reversed[len(perms)-1-i] = perm
	}

	forward, err := rc.Reconstruct(context.Background(),
		cachedGroup("prod", "us-east-1", "web", "sg-1", "vpc-1", perms...))
	require.NoError(t, err)
	backward, err := rc.Reconstruct(context.Background(),
		cachedGroup("prod", "us-east-1", "web", "sg-1", "vpc-1", reversed...))
	require.NoError(t, err)

	assert.Equal(t, forward, backward)
}

func TestEmptyPermissionsYieldEmptyRuleSet(t *testing.T) {
	rc := newReconstructor(cache.NewInMemoryStore())
	group := cachedGroup("prod", "us-east-1", "web", "sg-1", "vpc-1")

	rules, err := rc.Reconstruct(context.Background(), group)
	require.NoError(t, err)
	assert.Empty(t, rules)
}
