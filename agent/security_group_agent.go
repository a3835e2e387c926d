// agent/security_group_agent.go

// Package agent holds the optional population path: a one-shot poller that
// describes a provider account's security groups and merges them into the
// cache through the same validated ingestion used by the REST surface. The
// query layer never depends on it.
package agent

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"go.uber.org/zap"

	"github.com/sepulvedablanco/clouddriver/cache"
	"github.com/sepulvedablanco/clouddriver/keys"
	logger "github.com/sepulvedablanco/clouddriver/logging"
	"github.com/sepulvedablanco/clouddriver/model"
	"github.com/sepulvedablanco/clouddriver/service"
)

// SecurityGroupAgent flattens one account/region's security groups into
// cache entries.
type SecurityGroupAgent struct {
	client       EC2DescribeSecurityGroupsAPI
	cacheService service.ICacheService
	account      model.Account
	region       string
}

func NewSecurityGroupAgent(client EC2DescribeSecurityGroupsAPI, cacheService service.ICacheService, account model.Account, region string) *SecurityGroupAgent {
	return &SecurityGroupAgent{
		client:       client,
		cacheService: cacheService,
		account:      account,
		region:       region,
	}
}

// LoadSecurityGroups runs one full describe-and-merge cycle and returns how
// many entries the cache accepted.
func (a *SecurityGroupAgent) LoadSecurityGroups(ctx context.Context) (int, error) {
	var entries []*cache.Entry

	paginator := ec2.NewDescribeSecurityGroupsPaginator(a.client, &ec2.DescribeSecurityGroupsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			logger.Error("Error describing security groups",
				zap.Error(err),
				zap.String("account", a.account.Name),
				zap.String("region", a.region))
			return 0, fmt.Errorf("failed to describe security groups: %w", err)
		}
		for _, group := range page.SecurityGroups {
			entries = append(entries, a.buildEntry(group))
		}
	}

	accepted, err := a.cacheService.MergeAll(ctx, keys.NamespaceSecurityGroups, entries)
	if err != nil {
		return 0, fmt.Errorf("failed to merge security groups: %w", err)
	}

	logger.Info("Security groups loaded",
		zap.String("account", a.account.Name),
		zap.String("region", a.region),
		zap.Int("described", len(entries)),
		zap.Int("accepted", accepted))
	return accepted, nil
}

// buildEntry flattens one provider group into the attribute layout the
// security-groups namespace stores.
func (a *SecurityGroupAgent) buildEntry(group types.SecurityGroup) *cache.Entry {
	key := keys.Encode(keys.ResourceKey{
		Type:    keys.TypeSecurityGroup,
		Account: a.account.Name,
		Region:  a.region,
		Name:    aws.ToString(group.GroupName),
		ID:      aws.ToString(group.GroupId),
		VpcID:   aws.ToString(group.VpcId),
	})

	attributes := map[string]interface{}{
		"groupId":            aws.ToString(group.GroupId),
		"groupName":          aws.ToString(group.GroupName),
		"description":        aws.ToString(group.Description),
		"vpcId":              aws.ToString(group.VpcId),
		"ownerId":            aws.ToString(group.OwnerId),
		"ingressPermissions": flattenPermissions(group.IpPermissions),
	}
	if tags := flattenTags(group.Tags); len(tags) > 0 {
		attributes["tags"] = tags
	}

	return &cache.Entry{Key: key, Attributes: attributes}
}

func flattenPermissions(permissions []types.IpPermission) []map[string]interface{} {
	flattened := make([]map[string]interface{}, 0, len(permissions))
	for _, perm := range permissions {
		flat := map[string]interface{}{
			"protocol": aws.ToString(perm.IpProtocol),
		}
		if perm.FromPort != nil {
			flat["fromPort"] = int64(*perm.FromPort)
		}
		if perm.ToPort != nil {
			flat["toPort"] = int64(*perm.ToPort)
		}
		if ranges := flattenIPv4Ranges(perm.IpRanges); len(ranges) > 0 {
			flat["ipv4Ranges"] = ranges
		}
		if ranges := flattenIPv6Ranges(perm.Ipv6Ranges); len(ranges) > 0 {
			flat["ipv6Ranges"] = ranges
		}
		if refs := flattenGroupPairs(perm.UserIdGroupPairs); len(refs) > 0 {
			flat["crossReferences"] = refs
		}
		flattened = append(flattened, flat)
	}
	return flattened
}

func flattenIPv4Ranges(ranges []types.IpRange) []map[string]interface{} {
	flattened := make([]map[string]interface{}, 0, len(ranges))
	for _, r := range ranges {
		flattened = append(flattened, map[string]interface{}{
			"cidr": aws.ToString(r.CidrIp),
		})
	}
	return flattened
}

func flattenIPv6Ranges(ranges []types.Ipv6Range) []map[string]interface{} {
	flattened := make([]map[string]interface{}, 0, len(ranges))
	for _, r := range ranges {
		flattened = append(flattened, map[string]interface{}{
			"cidr": aws.ToString(r.CidrIpv6),
		})
	}
	return flattened
}

func flattenGroupPairs(pairs []types.UserIdGroupPair) []map[string]interface{} {
	flattened := make([]map[string]interface{}, 0, len(pairs))
	for _, pair := range pairs {
		ref := map[string]interface{}{
			"ownerId": aws.ToString(pair.UserId),
		}
		if id := aws.ToString(pair.GroupId); id != "" {
			ref["groupId"] = id
		}
		if name := aws.ToString(pair.GroupName); name != "" {
			ref["groupName"] = name
		}
		flattened = append(flattened, ref)
	}
	return flattened
}

func flattenTags(tags []types.Tag) []map[string]interface{} {
	flattened := make([]map[string]interface{}, 0, len(tags))
	for _, tag := range tags {
		flattened = append(flattened, map[string]interface{}{
			"key":   aws.ToString(tag.Key),
			"value": aws.ToString(tag.Value),
		})
	}
	return flattened
}
