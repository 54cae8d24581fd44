package insights

import (
	"fmt"
	"time"

	"github.com/dukerupert/homestock/internal/model"
)

// ItemLister supplies the inventory snapshot.
type ItemLister interface {
	List() ([]model.InventoryItem, error)
}

// Attention groups the item sets the insights screen highlights.
type Attention struct {
	NeedingAttention        []model.InventoryItem `json:"needing_attention"`
	Expired                 []model.InventoryItem `json:"expired"`
	NearExpiry              []model.InventoryItem `json:"near_expiry"`
	Urgent                  []model.InventoryItem `json:"urgent"`
	MostFrequentlyRestocked *model.InventoryItem  `json:"most_frequently_restocked"`
	LeastRecentlyUpdated    *model.InventoryItem  `json:"least_recently_updated"`
}

// Service evaluates insights against the live inventory.
type Service struct {
	items ItemLister
	now   func() time.Time
}

func NewService(items ItemLister) *Service {
	return &Service{items: items, now: func() time.Time { return time.Now().UTC() }}
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

func (s *Service) snapshot() ([]model.InventoryItem, error) {
	items, err := s.items.List()
	if err != nil {
		return nil, fmt.Errorf("load inventory snapshot: %w", err)
	}
	return items, nil
}

func (s *Service) Recommendations() ([]model.SmartRecommendation, error) {
	items, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return Recommendations(items, s.now()), nil
}

func (s *Service) Stats() (model.InventoryStats, error) {
	items, err := s.snapshot()
	if err != nil {
		return model.InventoryStats{}, err
	}
	return Stats(items), nil
}

func (s *Service) Attention() (Attention, error) {
	items, err := s.snapshot()
	if err != nil {
		return Attention{}, err
	}
	now := s.now()
	return Attention{
		NeedingAttention:        ItemsNeedingAttention(items),
		Expired:                 ExpiredItems(items, now),
		NearExpiry:              NearExpiryItems(items, now),
		Urgent:                  UrgentAttentionItems(items, now),
		MostFrequentlyRestocked: MostFrequentlyRestocked(items),
		LeastRecentlyUpdated:    LeastRecentlyUpdated(items),
	}, nil
}
