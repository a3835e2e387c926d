// service/security_group_service.go
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sepulvedablanco/clouddriver/cache"
	"github.com/sepulvedablanco/clouddriver/dao"
	"github.com/sepulvedablanco/clouddriver/keys"
	logger "github.com/sepulvedablanco/clouddriver/logging"
	"github.com/sepulvedablanco/clouddriver/model"
	"github.com/sepulvedablanco/clouddriver/reconstructor"
	"github.com/sepulvedablanco/clouddriver/resolver"
	"github.com/sepulvedablanco/clouddriver/telemetry"
	"github.com/sepulvedablanco/clouddriver/util"
)

// ISecurityGroupService defines the interface for security group queries
type ISecurityGroupService interface {
	GetAll(ctx context.Context, includeRules bool) ([]*model.SecurityGroup, error)
	GetAllByRegion(ctx context.Context, includeRules bool, region string) ([]*model.SecurityGroup, error)
	GetAllByAccount(ctx context.Context, includeRules bool, account string) ([]*model.SecurityGroup, error)
	GetAllByAccountAndRegion(ctx context.Context, includeRules bool, account, region string) ([]*model.SecurityGroup, error)
	GetAllByAccountAndName(ctx context.Context, includeRules bool, account, name string) ([]*model.SecurityGroup, error)
	Get(ctx context.Context, account, region, name string, vpcID *string) (*model.SecurityGroup, error)
	GetByID(ctx context.Context, account, region, id string, vpcID *string) (*model.SecurityGroup, error)
}

// SecurityGroupService reconstructs domain views from cached entries. All
// reads are served from the cache; nothing here calls the cloud provider.
type SecurityGroupService struct {
	sgDAO    *dao.SecurityGroupDAO
	rules    *reconstructor.RuleReconstructor
	accounts *resolver.AccountResolver
	reporter telemetry.Reporter
	eventBus *util.EventBus
}

var _ ISecurityGroupService = &SecurityGroupService{}

// NewSecurityGroupService creates a new instance of SecurityGroupService
func NewSecurityGroupService(sgDAO *dao.SecurityGroupDAO, rules *reconstructor.RuleReconstructor, accounts *resolver.AccountResolver, reporter telemetry.Reporter, eventBus *util.EventBus) *SecurityGroupService {
	service := &SecurityGroupService{
		sgDAO:    sgDAO,
		rules:    rules,
		accounts: accounts,
		reporter: reporter,
		eventBus: eventBus,
	}

	// Set up event subscriptions
	eventBus.Subscribe(util.EventCacheUpdated, service.handleCacheUpdated)

	return service
}

func (s *SecurityGroupService) handleCacheUpdated(ctx context.Context, event util.Event) error {
	payload, ok := event.Payload.(util.CacheUpdatePayload)
	if !ok {
		logger.Error("Invalid event payload type", zap.Any("payload", event.Payload))
		return fmt.Errorf("invalid event payload type: %T", event.Payload)
	}

	logger.Info("Cache updated event received",
		zap.String("namespace", payload.Namespace),
		zap.Int("accepted", payload.Accepted),
		zap.Int("rejected", payload.Rejected))

	s.reporter.RecordCachePopulation(payload.Namespace, payload.Accepted, payload.Rejected)
	return nil
}

// GetAll returns every cached security group across all accounts and regions
func (s *SecurityGroupService) GetAll(ctx context.Context, includeRules bool) ([]*model.SecurityGroup, error) {
	defer s.reporter.RecordQuery("getAll", time.Now())

	entries, err := s.sgDAO.AllEntries(ctx)
	if err != nil {
		logger.Error("Error listing security group entries", zap.Error(err))
		return nil, fmt.Errorf("failed to list security groups: %w", err)
	}
	return s.assemble(ctx, includeRules, entries)
}

// GetAllByRegion returns the cached security groups of one region
func (s *SecurityGroupService) GetAllByRegion(ctx context.Context, includeRules bool, region string) ([]*model.SecurityGroup, error) {
	defer s.reporter.RecordQuery("getAllByRegion", time.Now())
	return s.list(ctx, includeRules, keys.ResourceKey{Region: region})
}

// GetAllByAccount returns the cached security groups of one account
func (s *SecurityGroupService) GetAllByAccount(ctx context.Context, includeRules bool, account string) ([]*model.SecurityGroup, error) {
	defer s.reporter.RecordQuery("getAllByAccount", time.Now())
	return s.list(ctx, includeRules, keys.ResourceKey{Account: account})
}

// GetAllByAccountAndRegion returns one account's groups within one region
func (s *SecurityGroupService) GetAllByAccountAndRegion(ctx context.Context, includeRules bool, account, region string) ([]*model.SecurityGroup, error) {
	defer s.reporter.RecordQuery("getAllByAccountAndRegion", time.Now())
	return s.list(ctx, includeRules, keys.ResourceKey{Account: account, Region: region})
}

// GetAllByAccountAndName returns one account's groups carrying the given
// name. More than one result is possible when a VPC-scoped and a non-VPC
// group share a name.
func (s *SecurityGroupService) GetAllByAccountAndName(ctx context.Context, includeRules bool, account, name string) ([]*model.SecurityGroup, error) {
	defer s.reporter.RecordQuery("getAllByAccountAndName", time.Now())
	return s.list(ctx, includeRules, keys.ResourceKey{Account: account, Name: name})
}

// Get returns the group exactly matching account, region, name, and VPC.
// Rules are always reconstructed; a miss is nil, nil.
func (s *SecurityGroupService) Get(ctx context.Context, account, region, name string, vpcID *string) (*model.SecurityGroup, error) {
	defer s.reporter.RecordQuery("get", time.Now())

	cached, err := s.pickGroup(ctx, keys.ResourceKey{Account: account, Region: region, Name: name}, vpcID)
	if err != nil || cached == nil {
		return nil, err
	}
	return s.buildView(ctx, true, cached)
}

// GetByID is Get keyed by the provider group id instead of the name.
func (s *SecurityGroupService) GetByID(ctx context.Context, account, region, id string, vpcID *string) (*model.SecurityGroup, error) {
	defer s.reporter.RecordQuery("getById", time.Now())

	cached, err := s.pickGroup(ctx, keys.ResourceKey{Account: account, Region: region, ID: id}, vpcID)
	if err != nil || cached == nil {
		return nil, err
	}
	return s.buildView(ctx, true, cached)
}

// list runs one filtered scan and assembles the matches.
func (s *SecurityGroupService) list(ctx context.Context, includeRules bool, partial keys.ResourceKey) ([]*model.SecurityGroup, error) {
	partial.Type = keys.TypeSecurityGroup

	entries, err := s.sgDAO.FilterEntries(ctx, keys.BuildPattern(partial))
	if err != nil {
		logger.Error("Error filtering security group entries", zap.Error(err), zap.Any("partial", partial))
		return nil, fmt.Errorf("failed to list security groups: %w", err)
	}
	return s.assemble(ctx, includeRules, entries)
}

// assemble builds the view for each entry in parallel. Malformed entries are
// skipped and reported; a failing cache store aborts the whole listing.
func (s *SecurityGroupService) assemble(ctx context.Context, includeRules bool, entries []*cache.Entry) ([]*model.SecurityGroup, error) {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]*model.SecurityGroup, len(entries))

	// Limit concurrency to avoid overwhelming the system
	semaphore := make(chan struct{}, 10)

	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			cached, err := s.sgDAO.DecodeEntry(entry)
			if err != nil {
				s.reporter.ReportReconstructionFailure(ctx, keys.NamespaceSecurityGroups, entry.Key, err)
				return nil
			}

			view, err := s.buildView(ctx, includeRules, cached)
			if err != nil {
				return err
			}
			results[i] = view
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Error assembling security group views", zap.Error(err))
		return nil, fmt.Errorf("failed to assemble security groups: %w", err)
	}

	groups := make([]*model.SecurityGroup, 0, len(results))
	for _, view := range results {
		if view != nil {
			groups = append(groups, view)
		}
	}
	sortSecurityGroups(groups)
	return groups, nil
}

// buildView turns one decoded entry into the outward view, reconstructing
// the rule set when asked for.
func (s *SecurityGroupService) buildView(ctx context.Context, includeRules bool, cached *model.CachedSecurityGroup) (*model.SecurityGroup, error) {
	view := &model.SecurityGroup{
		ID:           cached.Key.ID,
		Name:         cached.Key.Name,
		Description:  cached.Description,
		AccountName:  cached.Key.Account,
		AccountID:    cached.OwnerID,
		Region:       cached.Key.Region,
		VpcID:        cached.Key.VpcID,
		InboundRules: []model.InboundRule{},
		Tags:         cached.Tags,
	}
	if view.AccountID == "" {
		if account := s.accounts.ResolveByName(cached.Key.Account); account != nil {
			view.AccountID = account.AccountID
		}
	}

	if includeRules {
		rules, err := s.rules.Reconstruct(ctx, cached)
		if err != nil {
			logger.Error("Error reconstructing inbound rules",
				zap.Error(err),
				zap.String("groupID", cached.Key.ID))
			return nil, fmt.Errorf("failed to reconstruct security group %q: %w", cached.Key.ID, err)
		}
		view.InboundRules = rules
	}
	return view, nil
}

// pickGroup narrows an exact get to a single cached group. With a concrete
// vpcID only an exact VPC match counts, and an explicitly empty vpcID means
// the non-VPC group. When vpcID is unset the non-VPC group wins if present,
// then the smallest VPC id, then the smallest group id.
func (s *SecurityGroupService) pickGroup(ctx context.Context, partial keys.ResourceKey, vpcID *string) (*model.CachedSecurityGroup, error) {
	partial.Type = keys.TypeSecurityGroup

	entries, err := s.sgDAO.FilterEntries(ctx, keys.BuildPattern(partial))
	if err != nil {
		logger.Error("Error filtering security group entries", zap.Error(err), zap.Any("partial", partial))
		return nil, fmt.Errorf("failed to look up security group: %w", err)
	}

	candidates := make([]*model.CachedSecurityGroup, 0, len(entries))
	for _, entry := range entries {
		cached, err := s.sgDAO.DecodeEntry(entry)
		if err != nil {
			s.reporter.ReportReconstructionFailure(ctx, keys.NamespaceSecurityGroups, entry.Key, err)
			continue
		}
		candidates = append(candidates, cached)
	}

	if vpcID != nil {
		for _, cached := range candidates {
			if cached.Key.VpcID == *vpcID {
				return cached, nil
			}
		}
		return nil, nil
	}

	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Key.VpcID != candidates[j].Key.VpcID {
			return candidates[i].Key.VpcID < candidates[j].Key.VpcID
		}
		return candidates[i].Key.ID < candidates[j].Key.ID
	})
	return candidates[0], nil
}

func sortSecurityGroups(groups []*model.SecurityGroup) {
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.AccountName != b.AccountName {
			return a.AccountName < b.AccountName
		}
		if a.Region != b.Region {
			return a.Region < b.Region
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.VpcID < b.VpcID
	})
}
