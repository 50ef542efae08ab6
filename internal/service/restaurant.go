// 文件路径: internal/service/restaurant.go
// 模块说明: 餐厅基础信息、配送区域与预订时段。
package service

import (
	"fmt"
	"strings"
	"time"
)

// Zone is a delivery place offered at checkout.
type Zone struct {
	Code          string `json:"code"`
	Label         string `json:"label"`
	RequiresProof bool   `json:"requires_proof"`
}

// RestaurantOptions 由 bootstrap 从配置转换而来。
type RestaurantOptions struct {
	Name         string
	Phone        string
	FirstSlot    string
	LastSlot     string
	SlotMinutes  int
	MaxPartySize int
	Zones        []Zone
	Location     *time.Location
}

// RestaurantInfo is the public description returned by the API.
type RestaurantInfo struct {
	Name         string   `json:"name"`
	Phone        string   `json:"phone,omitempty"`
	Zones        []Zone   `json:"zones"`
	Slots        []string `json:"slots"`
	MaxPartySize int      `json:"max_party_size"`
	Timezone     string   `json:"timezone"`
}

// RestaurantService 提供静态营业信息。
type RestaurantService interface {
	Info() RestaurantInfo
	Zones() []Zone
	Zone(code string) (Zone, bool)
	Slots() []string
	ValidSlot(slot string) bool
	MaxPartySize() int
	Location() *time.Location
}

type restaurantService struct {
	info     RestaurantInfo
	zones    map[string]Zone
	slots    map[string]struct{}
	location *time.Location
}

var defaultZones = []Zone{
	{Code: "restaurant", Label: "Sur place (restaurant)"},
	{Code: "dekounge", Label: "Dékoungbé"},
	{Code: "abomey", Label: "Abomey-Calavi"},
	{Code: "hors_zone", Label: "Hors zone", RequiresProof: true},
}

// NewRestaurantService validates the opening hours and zone list.
func NewRestaurantService(opts RestaurantOptions) (RestaurantService, error) {
	if opts.FirstSlot == "" {
		opts.FirstSlot = "13:00"
	}
	if opts.LastSlot == "" {
		opts.LastSlot = "23:30"
	}
	if opts.SlotMinutes <= 0 {
		opts.SlotMinutes = 30
	}
	if opts.MaxPartySize <= 0 {
		opts.MaxPartySize = 10
	}
	if len(opts.Zones) == 0 {
		opts.Zones = defaultZones
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	slots, err := buildSlots(opts.FirstSlot, opts.LastSlot, opts.SlotMinutes)
	if err != nil {
		return nil, err
	}

	svc := &restaurantService{
		zones:    make(map[string]Zone, len(opts.Zones)),
		slots:    make(map[string]struct{}, len(slots)),
		location: opts.Location,
	}
	zones := make([]Zone, 0, len(opts.Zones))
	for _, z := range opts.Zones {
		z.Code = strings.ToLower(strings.TrimSpace(z.Code))
		if z.Code == "" {
			return nil, fmt.Errorf("restaurant zone without code / 配送区域缺少编码")
		}
		if _, dup := svc.zones[z.Code]; dup {
			return nil, fmt.Errorf("duplicate restaurant zone %q / 配送区域重复", z.Code)
		}
		if z.Label == "" {
			z.Label = z.Code
		}
		svc.zones[z.Code] = z
		zones = append(zones, z)
	}
	for _, s := range slots {
		svc.slots[s] = struct{}{}
	}
	svc.info = RestaurantInfo{
		Name:         opts.Name,
		Phone:        opts.Phone,
		Zones:        zones,
		Slots:        slots,
		MaxPartySize: opts.MaxPartySize,
		Timezone:     opts.Location.String(),
	}
	return svc, nil
}

func (s *restaurantService) Info() RestaurantInfo {
	info := s.info
	info.Zones = s.Zones()
	info.Slots = s.Slots()
	return info
}

func (s *restaurantService) Zones() []Zone {
	return append([]Zone(nil), s.info.Zones...)
}

func (s *restaurantService) Zone(code string) (Zone, bool) {
	z, ok := s.zones[strings.ToLower(strings.TrimSpace(code))]
	return z, ok
}

func (s *restaurantService) Slots() []string {
	return append([]string(nil), s.info.Slots...)
}

func (s *restaurantService) ValidSlot(slot string) bool {
	_, ok := s.slots[strings.TrimSpace(slot)]
	return ok
}

func (s *restaurantService) MaxPartySize() int { return s.info.MaxPartySize }

func (s *restaurantService) Location() *time.Location { return s.location }

func buildSlots(first, last string, step int) ([]string, error) {
	start, err := time.Parse("15:04", first)
	if err != nil {
		return nil, fmt.Errorf("parse first slot %q: %w", first, err)
	}
	end, err := time.Parse("15:04", last)
	if err != nil {
		return nil, fmt.Errorf("parse last slot %q: %w", last, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("last slot %s before first slot %s / 时段配置错误", last, first)
	}
	var slots []string
	for t := start; !t.After(end); t = t.Add(time.Duration(step) * time.Minute) {
		slots = append(slots, t.Format("15:04"))
	}
	return slots, nil
}
