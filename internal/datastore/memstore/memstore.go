// Package memstore keeps the whole persistence contract in process memory.
// Unique indexes and counter increments are applied under one mutex, which
// gives the same observable guarantees as the postgres constraints.
package memstore

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/Maheshwickramage/S3learnUID/internal/models"

	"github.com/google/uuid"
)

type badgeKey struct {
	creatorID int64
	kind      models.BadgeKind
}

type rewardKey struct {
	creatorID int64
	milestone int
}

type downloadKey struct {
	componentID uuid.UUID
	identityKey string
}

type Store struct {
	mu sync.Mutex

	creators   map[int64]models.Creator
	components map[uuid.UUID]models.Component
	downloads  map[downloadKey]models.DownloadEvent
	badges     map[badgeKey]models.CreatorBadge
	rewards    map[uuid.UUID]models.Reward
	rewardKeys map[rewardKey]uuid.UUID
	configs    map[string]models.Config

	// FailWith, when set, is returned by every call.
	FailWith error
}

func New() *Store {
	return &Store{
		creators:   map[int64]models.Creator{},
		components: map[uuid.UUID]models.Component{},
		downloads:  map[downloadKey]models.DownloadEvent{},
		badges:     map[badgeKey]models.CreatorBadge{},
		rewards:    map[uuid.UUID]models.Reward{},
		rewardKeys: map[rewardKey]uuid.UUID{},
		configs:    map[string]models.Config{},
	}
}

func (store *Store) InsertCreator(ctx context.Context, creator *models.Creator) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.FailWith != nil {
		return store.FailWith
	}

	if _, ok := store.creators[creator.ID]; ok {
		return nil
	}
	if creator.CreatedAt.IsZero() {
		creator.CreatedAt = time.Now()
	}
	store.creators[creator.ID] = *creator
	return nil
}

func (store *Store) FindCreatorByID(ctx context.Context, creatorID int64) (*models.Creator, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.FailWith != nil {
		return nil, store.FailWith
	}

	creator, ok := store.creators[creatorID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &creator, nil
}

func (store *Store) FindCreatorByUsername(ctx context.Context, username string) (*models.Creator, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.FailWith != nil {
		return nil, store.FailWith
	}

	var found *models.Creator
	for _, creator := range store.creators {
		if creator.Username != username {
			continue
		}
		if found == nil || creator.ID < found.ID {
			creator := creator
			found = &creator
		}
	}
	if found == nil {
		return nil, sql.ErrNoRows
	}
	return found, nil
}

func (store *Store) UpdateCreatorProfile(ctx context.Context, creator *models.Creator) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.FailWith != nil {
		return store.FailWith
	}

	current, ok := store.creators[creator.ID]
	if !ok {
		return nil
	}
	current.Username = creator.Username
	current.DisplayName = creator.DisplayName
	current.UpdatedAt = time.Now()
	store.creators[creator.ID] = current
	return nil
}

func (store *Store) ListCreatorIDs(ctx context.Context, limit, offset int) ([]int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.FailWith != nil {
		return nil, store.FailWith
	}

	ids := make([]int64, 0, len(store.creators))
	for id := range store.creators {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return page(ids, limit, offset), nil
}

func (store *Store) RaiseCreatorDownloads(ctx context.Context, creatorID int64, total int64) (*models.Creator, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.FailWith != nil {
		return nil, store.FailWith
	}

	creator, ok := store.creators[creatorID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if total > creator.TotalDownloads {
		creator.TotalDownloads = total
		creator.UpdatedAt = time.Now()
		store.creators[creatorID] = creator
	}
	return &creator, nil
}

func (store *Store) RegisterUpload(ctx context.Context, component *models.Component, points int64) (*models.Creator, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.FailWith != nil {
		return nil, store.FailWith
	}

	var owner *models.Creator
	if component.CreatorID != nil {
		creator, ok := store.creators[*component.CreatorID]
		if !ok {
			return nil, sql.ErrNoRows
		}
		creator.TotalUploads++
		creator.Points += points
		creator.UpdatedAt = time.Now()
		store.creators[creator.ID] = creator
		owner = &creator
	}

	if component.CreatedAt.IsZero() {
		component.CreatedAt = time.Now()
	}
	store.components[component.ID] = *component
	return owner, nil
}

func (store *Store) FindComponentByID(ctx context.Context, componentID uuid.UUID) (*models.Component, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.FailWith != nil {
		return nil, store.FailWith
	}

	component, ok := store.components[componentID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &component, nil
}

func (store *Store) ListComponentsByCreator(ctx context.Context, creatorID int64, limit int) ([]models.Component, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.FailWith != nil {
		return nil, store.FailWith
	}

	components := []models.Component{}
	for _, component := range store.components {
		if component.CreatorID != nil && *component.CreatorID == creatorID {
			components = append(components, component)
		}
	}
	sort.Slice(components, func(i, j int) bool {
		if !components[i].CreatedAt.Equal(components[j].CreatedAt) {
			return components[i].CreatedAt.After(components[j].CreatedAt)
		}
		return components[i].ID.String() < components[j].ID.String()
	})

	return page(components, limit, 0), nil
}

func (store *Store) CreditDownload(ctx context.Context, event *models.DownloadEvent) (*models.CreditResult, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.FailWith != nil {
		return nil, store.FailWith
	}

	component, ok := store.components[event.ComponentID]
	if !ok {
		return nil, sql.ErrNoRows
	}

	key := downloadKey{event.ComponentID, event.IdentityKey}
	if _, exists := store.downloads[key]; exists {
		return &models.CreditResult{Component: &component}, nil
	}

	if event.DownloadedAt.IsZero() {
		event.DownloadedAt = time.Now()
	}
	store.downloads[key] = *event

	component.Downloads++
	store.components[component.ID] = component
	result := &models.CreditResult{Credited: true, Component: &component}

	if component.CreatorID != nil {
		if creator, ok := store.creators[*component.CreatorID]; ok {
			creator.TotalDownloads++
			creator.Points++
			creator.UpdatedAt = time.Now()
			store.creators[creator.ID] = creator
			result.Owner = &creator
		}
	}

	return result, nil
}

func (store *Store) CountCreditedDownloadsByOwner(ctx context.Context, creatorID int64) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.FailWith != nil {
		return 0, store.FailWith
	}

	var count int64
	for key := range store.downloads {
		component := store.components[key.componentID]
		if component.CreatorID != nil && *component.CreatorID == creatorID {
			count++
		}
	}
	return count, nil
}

func (store *Store) ListDownloadCountsFromTime(ctx context.Context, from time.Time, limit, offset int) ([]*models.CreatorDownloadCount, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.FailWith != nil {
		return nil, store.FailWith
	}

	byCreator := map[int64]int64{}
	for key, event := range store.downloads {
		component := store.components[key.componentID]
		if component.CreatorID == nil || event.DownloadedAt.Before(from) {
			continue
		}
		byCreator[*component.CreatorID]++
	}

	counts := make([]*models.CreatorDownloadCount, 0, len(byCreator))
	for creatorID, downloads := range byCreator {
		counts = append(counts, &models.CreatorDownloadCount{CreatorID: creatorID, Downloads: downloads})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Downloads == counts[j].Downloads {
			return counts[i].CreatorID < counts[j].CreatorID
		}
		return counts[i].Downloads > counts[j].Downloads
	})
	return page(counts, limit, offset), nil
}

func (store *Store) InsertBadge(ctx context.Context, badge *models.CreatorBadge) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.FailWith != nil {
		return false, store.FailWith
	}

	key := badgeKey{badge.CreatorID, badge.Kind}
	if _, ok := store.badges[key]; ok {
		return false, nil
	}
	if badge.EarnedAt.IsZero() {
		badge.EarnedAt = time.Now()
	}
	store.badges[key] = *badge
	return true, nil
}

func (store *Store) ListBadges(ctx context.Context, creatorID int64) ([]models.CreatorBadge, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.FailWith != nil {
		return nil, store.FailWith
	}

	var badges []models.CreatorBadge
	for key, badge := range store.badges {
		if key.creatorID == creatorID {
			badges = append(badges, badge)
		}
	}
	sort.Slice(badges, func(i, j int) bool {
		if badges[i].EarnedAt.Equal(badges[j].EarnedAt) {
			return badges[i].Kind < badges[j].Kind
		}
		return badges[i].EarnedAt.Before(badges[j].EarnedAt)
	})
	return badges, nil
}

func (store *Store) InsertReward(ctx context.Context, reward *models.Reward) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.FailWith != nil {
		return false, store.FailWith
	}

	key := rewardKey{reward.CreatorID, reward.Milestone}
	if _, ok := store.rewardKeys[key]; ok {
		return false, nil
	}
	if reward.CreatedAt.IsZero() {
		reward.CreatedAt = time.Now()
	}
	store.rewardKeys[key] = reward.ID
	store.rewards[reward.ID] = cloneReward(*reward)
	return true, nil
}

func (store *Store) FindRewardByID(ctx context.Context, rewardID uuid.UUID) (*models.Reward, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.FailWith != nil {
		return nil, store.FailWith
	}

	reward, ok := store.rewards[rewardID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	reward = cloneReward(reward)
	return &reward, nil
}

func (store *Store) ListRewardsByCreator(ctx context.Context, creatorID int64) ([]models.Reward, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.FailWith != nil {
		return nil, store.FailWith
	}

	var rewards []models.Reward
	for _, reward := range store.rewards {
		if reward.CreatorID == creatorID {
			rewards = append(rewards, cloneReward(reward))
		}
	}
	sort.Slice(rewards, func(i, j int) bool { return rewards[i].Milestone < rewards[j].Milestone })
	return rewards, nil
}

func (store *Store) ListRewards(ctx context.Context, status models.RewardStatus, limit, offset int) ([]models.Reward, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.FailWith != nil {
		return nil, store.FailWith
	}

	var rewards []models.Reward
	for _, reward := range store.rewards {
		if status == "" || reward.Status == status {
			rewards = append(rewards, cloneReward(reward))
		}
	}
	sort.Slice(rewards, func(i, j int) bool {
		if rewards[i].CreatedAt.Equal(rewards[j].CreatedAt) {
			return rewards[i].ID.String() < rewards[j].ID.String()
		}
		return rewards[i].CreatedAt.After(rewards[j].CreatedAt)
	})
	return page(rewards, limit, offset), nil
}

func (store *Store) RewardedMilestones(ctx context.Context, creatorID int64) ([]int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.FailWith != nil {
		return nil, store.FailWith
	}

	var milestones []int
	for key := range store.rewardKeys {
		if key.creatorID == creatorID {
			milestones = append(milestones, key.milestone)
		}
	}
	sort.Ints(milestones)
	return milestones, nil
}

func (store *Store) UpdateRewardState(ctx context.Context, reward *models.Reward, from models.RewardStatus) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.FailWith != nil {
		return false, store.FailWith
	}

	current, ok := store.rewards[reward.ID]
	if !ok || current.Status != from {
		return false, nil
	}

	current.Status = reward.Status
	current.ShippingInfo = reward.ShippingInfo
	current.TrackingNumber = reward.TrackingNumber
	current.Notes = reward.Notes
	current.ClaimedAt = reward.ClaimedAt
	current.ShippedAt = reward.ShippedAt
	current.DeliveredAt = reward.DeliveredAt
	current.UpdatedAt = reward.UpdatedAt
	store.rewards[reward.ID] = cloneReward(current)
	return true, nil
}

func (store *Store) GetConfigByKey(ctx context.Context, key string) (*models.Config, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.FailWith != nil {
		return nil, store.FailWith
	}

	config, ok := store.configs[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &config, nil
}

func (store *Store) EditConfig(ctx context.Context, config *models.Config) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.FailWith != nil {
		return store.FailWith
	}

	store.configs[config.Key] = *config
	return nil
}

// PutComponent stores component as given, without checking or touching its owner.
func (store *Store) PutComponent(component models.Component) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.components[component.ID] = component
}

func (store *Store) SetConfig(key string, value string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.configs[key] = models.Config{Key: key, Value: value}
}

func cloneReward(reward models.Reward) models.Reward {
	if reward.ShippingInfo != nil {
		info := *reward.ShippingInfo
		reward.ShippingInfo = &info
	}
	return reward
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
