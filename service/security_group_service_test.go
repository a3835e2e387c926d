// service/security_group_service_test.go
package service_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sepulvedablanco/clouddriver/cache"
	clouddriver_errors "github.com/sepulvedablanco/clouddriver/errors"
	"github.com/sepulvedablanco/clouddriver/keys"
	logger "github.com/sepulvedablanco/clouddriver/logging"
	"github.com/sepulvedablanco/clouddriver/model"
	"github.com/sepulvedablanco/clouddriver/resolver"
	"github.com/sepulvedablanco/clouddriver/service"
	"github.com/sepulvedablanco/clouddriver/telemetry"
	mocks "github.com/sepulvedablanco/clouddriver/test/mock"
	"github.com/sepulvedablanco/clouddriver/util"
)

func TestMain(m *testing.M) {
	logDir, err := os.MkdirTemp("", "service-test-logs")
	if err != nil {
		panic(err)
	}
	logger.InitLogger(logDir)

	code := m.Run()
	os.RemoveAll(logDir)
	os.Exit(code)
}

var testAccounts = []model.Account{
	{Name: "prod", AccountID: "100000000001"},
	{Name: "test", AccountID: "100000000002"},
}

func newServices(t *testing.T, entries ...*cache.Entry) (*service.Services, *telemetry.MemoryRepository) {
	t.Helper()
	store := cache.NewInMemoryStore()
	if len(entries) > 0 {
		require.NoError(t, store.MergeAll(context.Background(), keys.NamespaceSecurityGroups, entries))
	}

	repo := telemetry.NewMemoryRepository(16)
	services, err := service.InitializeServices(
		store,
		resolver.NewAccountResolver(testAccounts),
		telemetry.NewReporter(repo),
		util.NewValidationUtil(),
		util.NewEventBus(),
	)
	require.NoError(t, err)
	return services, repo
}

func sgEntry(account, region, name, id, vpc string, extra map[string]interface{}) *cache.Entry {
	attrs := map[string]interface{}{"groupId": id, "groupName": name}
	if vpc != "" {
		attrs["vpcId"] = vpc
	}
	for k, v := range extra {
		attrs[k] = v
	}
	key := keys.Encode(keys.ResourceKey{
		Type: keys.TypeSecurityGroup, Account: account, Region: region,
		Name: name, ID: id, VpcID: vpc,
	})
	return &cache.Entry{Key: key, Attributes: attrs}
}

func strPtr(s string) *string { return &s }

func TestGetAllReturnsSortedSummaries(t *testing.T) {
	services, _ := newServices(t,
		sgEntry("test", "us-east-1", "api", "sg-3", "", nil),
		sgEntry("prod", "us-west-2", "web", "sg-2", "vpc-2", nil),
		sgEntry("prod", "us-east-1", "web", "sg-1", "vpc-1", nil),
	)

	groups, err := services.SecurityGroup.GetAll(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, groups, 3)

	assert.Equal(t, "sg-1", groups[0].ID)
	assert.Equal(t, "sg-2", groups[1].ID)
	assert.Equal(t, "sg-3", groups[2].ID)

	for _, group := range groups {
		assert.NotNil(t, group.InboundRules)
		assert.Empty(t, group.InboundRules)
	}
}

func TestGetAllByRegionFilters(t *testing.T) {
	services, _ := newServices(t,
		sgEntry("prod", "us-west-1", "web", "sg-1", "vpc-1", nil),
		sgEntry("prod", "us-east-1", "web", "sg-2", "vpc-2", nil),
		sgEntry("test", "us-west-1", "api", "sg-3", "", nil),
	)

	groups, err := services.SecurityGroup.GetAllByRegion(context.Background(), false, "us-west-1")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "sg-1", groups[0].ID)
	assert.Equal(t, "sg-3", groups[1].ID)
}

func TestGetAllByAccountFilters(t *testing.T) {
	services, _ := newServices(t,
		sgEntry("prod", "us-east-1", "web", "sg-1", "vpc-1", nil),
		sgEntry("test", "us-east-1", "web", "sg-2", "vpc-2", nil),
	)

	groups, err := services.SecurityGroup.GetAllByAccount(context.Background(), false, "prod")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "sg-1", groups[0].ID)
}

func TestGetAllByAccountAndNameFilters(t *testing.T) {
	services, _ := newServices(t,
		sgEntry("prod", "us-east-1", "a", "sg-1", "vpc-1", nil),
		sgEntry("prod", "us-east-1", "a", "sg-2", "", nil),
		sgEntry("prod", "us-east-1", "b", "sg-3", "", nil),
		sgEntry("test", "us-east-1", "a", "sg-4", "", nil),
	)

	groups, err := services.SecurityGroup.GetAllByAccountAndName(context.Background(), false, "prod", "a")
	require.NoError(t, err)

	// The VPC-scoped and non-VPC group sharing the name both match.
	require.Len(t, groups, 2)
	assert.Equal(t, "sg-1", groups[0].ID)
	assert.Equal(t, "sg-2", groups[1].ID)
}

func TestListingSkipsMalformedEntries(t *testing.T) {
	broken := &cache.Entry{
		Key:        "security-group:prod:us-east-1:bad:sg-9:",
		Attributes: map[string]interface{}{"ingressPermissions": "not-a-list"},
	}
	services, repo := newServices(t,
		sgEntry("prod", "us-east-1", "web", "sg-1", "vpc-1", nil),
		broken,
	)

	groups, err := services.SecurityGroup.GetAll(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "sg-1", groups[0].ID)

	failures, err := repo.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, broken.Key, failures[0].Key)
}

func TestListingReconstructsRulesWhenAsked(t *testing.T) {
	services, _ := newServices(t,
		sgEntry("prod", "us-east-1", "web", "sg-1", "vpc-1", map[string]interface{}{
			"ownerId": "100000000001",
			"ingressPermissions": []interface{}{
				map[string]interface{}{
					"protocol": "tcp",
					"fromPort": 80,
					"toPort":   80,
					"ipv4Ranges": []interface{}{
						map[string]interface{}{"cidr": "10.0.0.0/8"},
					},
				},
			},
		}),
	)

	groups, err := services.SecurityGroup.GetAllByAccountAndRegion(context.Background(), true, "prod", "us-east-1")
	require.NoError(t, err)
	require.Len(t, groups, 1)

	group := groups[0]
	assert.Equal(t, "100000000001", group.AccountID)
	require.Len(t, group.InboundRules, 1)
	rule, ok := group.InboundRules[0].(model.RangeRule)
	require.True(t, ok)
	assert.Equal(t, "tcp", rule.Protocol)
	assert.Equal(t, model.AddressRange{IP: "10.0.0.0", CIDR: "/8"}, rule.Range)
	assert.Equal(t, []model.PortRange{{StartPort: 80, EndPort: 80}}, rule.PortRanges)
}

func TestAccountIDFallsBackToConfiguredAccounts(t *testing.T) {
	services, _ := newServices(t,
		sgEntry("prod", "us-east-1", "web", "sg-1", "vpc-1", nil),
	)

	groups, err := services.SecurityGroup.GetAll(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "100000000001", groups[0].AccountID)
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	services, _ := newServices(t,
		sgEntry("prod", "us-east-1", "web", "sg-2", "vpc-2", nil),
		sgEntry("prod", "us-east-1", "web", "sg-1", "vpc-1", nil),
		sgEntry("prod", "us-east-1", "api", "sg-3", "", nil),
		sgEntry("prod", "us-east-1", "api", "sg-4", "vpc-1", nil),
	)

	t.Run("ExactVpcMatch", func(t *testing.T) {
		group, err := services.SecurityGroup.Get(ctx, "prod", "us-east-1", "web", strPtr("vpc-2"))
		require.NoError(t, err)
		require.NotNil(t, group)
		assert.Equal(t, "sg-2", group.ID)
	})

	t.Run("ExplicitEmptyVpcMatchesNonVpcGroup", func(t *testing.T) {
		group, err := services.SecurityGroup.Get(ctx, "prod", "us-east-1", "api", strPtr(""))
		require.NoError(t, err)
		require.NotNil(t, group)
		assert.Equal(t, "sg-3", group.ID)
	})

	t.Run("UnsetVpcPrefersNonVpcGroup", func(t *testing.T) {
		group, err := services.SecurityGroup.Get(ctx, "prod", "us-east-1", "api", nil)
		require.NoError(t, err)
		require.NotNil(t, group)
		assert.Equal(t, "sg-3", group.ID)
	})

	t.Run("UnsetVpcFallsBackToSmallestVpcID", func(t *testing.T) {
		group, err := services.SecurityGroup.Get(ctx, "prod", "us-east-1", "web", nil)
		require.NoError(t, err)
		require.NotNil(t, group)
		assert.Equal(t, "sg-1", group.ID)
	})

	t.Run("VpcMismatchIsAMiss", func(t *testing.T) {
		group, err := services.SecurityGroup.Get(ctx, "prod", "us-east-1", "web", strPtr("vpc-404"))
		require.NoError(t, err)
		assert.Nil(t, group)
	})

	t.Run("UnknownNameIsAMiss", func(t *testing.T) {
		group, err := services.SecurityGroup.Get(ctx, "prod", "us-east-1", "missing", nil)
		require.NoError(t, err)
		assert.Nil(t, group)
	})
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	services, _ := newServices(t,
		sgEntry("prod", "us-east-1", "web", "sg-1", "vpc-1", nil),
		sgEntry("prod", "us-east-1", "api", "sg-2", "", nil),
	)

	t.Run("FindsGroupByID", func(t *testing.T) {
		group, err := services.SecurityGroup.GetByID(ctx, "prod", "us-east-1", "sg-1", nil)
		require.NoError(t, err)
		require.NotNil(t, group)
		assert.Equal(t, "web", group.Name)
	})

	t.Run("VpcScopedMiss", func(t *testing.T) {
		group, err := services.SecurityGroup.GetByID(ctx, "prod", "us-east-1", "sg-2", strPtr("vpc-1"))
		require.NoError(t, err)
		assert.Nil(t, group)
	})
}

func TestGetAlwaysReconstructsRules(t *testing.T) {
	services, _ := newServices(t,
		sgEntry("prod", "us-east-1", "web", "sg-1", "vpc-1", map[string]interface{}{
			"ingressPermissions": []interface{}{
				map[string]interface{}{
					"protocol": "tcp",
					"fromPort": 443,
					"toPort":   443,
					"ipv4Ranges": []interface{}{
						map[string]interface{}{"cidr": "0.0.0.0/0"},
					},
				},
			},
		}),
	)

	group, err := services.SecurityGroup.Get(context.Background(), "prod", "us-east-1", "web", nil)
	require.NoError(t, err)
	require.NotNil(t, group)
	require.Len(t, group.InboundRules, 1)
}

func TestListingPropagatesStoreFailures(t *testing.T) {
	store := new(mocks.MockStore)
	store.On("GetAll", mock.Anything, keys.NamespaceSecurityGroups).Return(nil, errors.New("connection reset"))

	reporter := new(mocks.MockReporter)
	reporter.On("RecordQuery", "getAll", mock.Anything).Return()

	services, err := service.InitializeServices(
		store,
		resolver.NewAccountResolver(testAccounts),
		reporter,
		util.NewValidationUtil(),
		util.NewEventBus(),
	)
	require.NoError(t, err)

	groups, err := services.SecurityGroup.GetAll(context.Background(), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, clouddriver_errors.ErrCacheUnavailable)
	assert.Nil(t, groups)

	// A failing store is not a per-entry defect.
	reporter.AssertNotCalled(t, "ReportReconstructionFailure", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}
