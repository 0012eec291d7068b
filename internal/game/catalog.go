package game

import "fmt"

// RoomSize is the size class of a rented room.
type RoomSize string

const (
	RoomSmall  RoomSize = "small"
	RoomMedium RoomSize = "medium"
	RoomLarge  RoomSize = "large"
	RoomXLarge RoomSize = "xlarge"
)

// RoomSizes lists every size class in ascending order.
var RoomSizes = []RoomSize{RoomSmall, RoomMedium, RoomLarge, RoomXLarge}

// RoomSpec holds the fixed figures of a size class.
type RoomSpec struct {
	Capacity int `json:"capacity"`
	MaxItems int `json:"maxItems"`
	Rent     int `json:"rent"`
}

// Spec returns the capacity, item slots and daily rent of the size class.
func (s RoomSize) Spec() (RoomSpec, error) {
	switch s {
	case RoomSmall:
		return RoomSpec{Capacity: 3, MaxItems: 8, Rent: 500}, nil
	case RoomMedium:
		return RoomSpec{Capacity: 6, MaxItems: 15, Rent: 1000}, nil
	case RoomLarge:
		return RoomSpec{Capacity: 12, MaxItems: 25, Rent: 2000}, nil
	case RoomXLarge:
		return RoomSpec{Capacity: 20, MaxItems: 35, Rent: 3500}, nil
	}
	return RoomSpec{}, fmt.Errorf("room size %q: %w", s, ErrUnknownKind)
}

// Label returns the display label of the size class.
func (s RoomSize) Label() string {
	switch s {
	case RoomSmall:
		return "小房間"
	case RoomMedium:
		return "中房間"
	case RoomLarge:
		return "大房間"
	case RoomXLarge:
		return "超大房間"
	}
	return string(s)
}

// ItemType groups catalog items.
type ItemType string

const (
	ItemGame          ItemType = "game"
	ItemEntertainment ItemType = "entertainment"
	ItemDecoration    ItemType = "decoration"
)

// ItemTypes lists every item type.
var ItemTypes = []ItemType{ItemGame, ItemEntertainment, ItemDecoration}

func (t ItemType) Icon() string {
	switch t {
	case ItemGame:
		return "🎮"
	case ItemEntertainment:
		return "🎤"
	case ItemDecoration:
		return "🎨"
	}
	return "📦"
}

func (t ItemType) Label() string {
	switch t {
	case ItemGame:
		return "遊戲設備"
	case ItemEntertainment:
		return "娛樂設備"
	case ItemDecoration:
		return "裝飾物品"
	}
	return string(t)
}

// CatalogItem is an item that can be bought in the shop.
type CatalogItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        ItemType `json:"type"`
	Attraction  int      `json:"attraction"`
	Price       int      `json:"price"`
	InstallTime int      `json:"installTime"` // hours
}

// Catalog is the shop's fixed stock list.
var Catalog = []CatalogItem{
	{ID: "ps5", Name: "PlayStation 5", Type: ItemGame, Attraction: 80, Price: 5000, InstallTime: 2},
	{ID: "switch", Name: "Nintendo Switch", Type: ItemGame, Attraction: 70, Price: 3000, InstallTime: 1},
	{ID: "boardgame1", Name: "狼人殺", Type: ItemGame, Attraction: 40, Price: 300, InstallTime: 1},
	{ID: "ktv-basic", Name: "基礎 KTV", Type: ItemEntertainment, Attraction: 60, Price: 2000, InstallTime: 3},
	{ID: "ktv-pro", Name: "專業 KTV", Type: ItemEntertainment, Attraction: 90, Price: 5000, InstallTime: 4},
	{ID: "led-lights", Name: "LED 燈帶", Type: ItemDecoration, Attraction: 30, Price: 500, InstallTime: 2},
	{ID: "birthday-deco", Name: "生日裝飾", Type: ItemDecoration, Attraction: 40, Price: 800, InstallTime: 1},
}

// LookupCatalogItem finds a shop item by id.
func LookupCatalogItem(id string) (CatalogItem, bool) {
	for _, it := range Catalog {
		if it.ID == id {
			return it, true
		}
	}
	return CatalogItem{}, false
}

// CustomerType is the category of a generated booking.
type CustomerType string

const (
	CustomerBirthday CustomerType = "birthday"
	CustomerFriends  CustomerType = "friends"
	CustomerCompany  CustomerType = "company"
	CustomerCouple   CustomerType = "couple"
	CustomerGaming   CustomerType = "gaming"
)

// CustomerTypes lists every customer type in generation order.
var CustomerTypes = []CustomerType{CustomerBirthday, CustomerFriends, CustomerCompany, CustomerCouple, CustomerGaming}

// Requirements holds the tags a customer type asks for.
type Requirements struct {
	Required []string `json:"required"`
	Wanted   []string `json:"wanted"`
}

// All returns required tags followed by wanted tags.
func (r Requirements) All() []string {
	out := make([]string, 0, len(r.Required)+len(r.Wanted))
	out = append(out, r.Required...)
	return append(out, r.Wanted...)
}

func (c CustomerType) Requirements() Requirements {
	switch c {
	case CustomerBirthday:
		return Requirements{Required: []string{"ktv", "decoration"}, Wanted: []string{"photo"}}
	case CustomerFriends:
		return Requirements{Required: []string{"game"}, Wanted: []string{"boardgame", "sound"}}
	case CustomerCompany:
		return Requirements{Required: []string{"large-space"}, Wanted: []string{"boardgame", "ktv"}}
	case CustomerCouple:
		return Requirements{Required: []string{"decoration"}, Wanted: []string{"ktv", "small-space"}}
	case CustomerGaming:
		return Requirements{Required: []string{"game-console"}, Wanted: []string{"comfortable-seats"}}
	}
	return Requirements{}
}

func (c CustomerType) Icon() string {
	switch c {
	case CustomerBirthday:
		return "🎂"
	case CustomerFriends:
		return "👥"
	case CustomerCompany:
		return "🏢"
	case CustomerCouple:
		return "💕"
	case CustomerGaming:
		return "🎮"
	}
	return "👤"
}

func (c CustomerType) Label() string {
	switch c {
	case CustomerBirthday:
		return "生日派對"
	case CustomerFriends:
		return "朋友聚會"
	case CustomerCompany:
		return "公司團建"
	case CustomerCouple:
		return "情侶約會"
	case CustomerGaming:
		return "遊戲聚會"
	}
	return string(c)
}

// RequirementLabel returns the display label of a requirement tag.
func RequirementLabel(tag string) string {
	switch tag {
	case "ktv":
		return "KTV"
	case "decoration":
		return "裝飾"
	case "photo":
		return "拍照"
	case "game":
		return "遊戲"
	case "boardgame":
		return "桌遊"
	case "sound":
		return "音響"
	case "large-space":
		return "大空間"
	case "small-space":
		return "小空間"
	case "game-console":
		return "遊戲機"
	case "comfortable-seats":
		return "舒適座椅"
	}
	return tag
}

// TimeSlots are the bookable block labels of a day, in order.
var TimeSlots = []string{
	"09:00-13:00",
	"13:30-17:30",
	"18:00-22:00",
	"22:30-02:30",
}

// IsTimeSlot reports whether label is one of TimeSlots.
func IsTimeSlot(label string) bool {
	for _, s := range TimeSlots {
		if s == label {
			return true
		}
	}
	return false
}

// Activity is what occupies a schedule slot.
type Activity string

const (
	ActivityCleaning    Activity = "cleaning"
	ActivityInstallItem Activity = "install_item"
	ActivityBooking     Activity = "booking"
	ActivityFree        Activity = "free"
)

func (a Activity) Label() string {
	switch a {
	case ActivityCleaning:
		return "清潔"
	case ActivityInstallItem:
		return "安裝物品"
	case ActivityBooking:
		return "客戶預約"
	case ActivityFree:
		return "空閒"
	}
	return string(a)
}

// Valid reports whether a is a known activity.
func (a Activity) Valid() bool {
	switch a {
	case ActivityCleaning, ActivityInstallItem, ActivityBooking, ActivityFree:
		return true
	}
	return false
}
