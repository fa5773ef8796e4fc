package domain

import "github.com/shopspring/decimal"

type RoomType string

const (
	RoomTypeStandard RoomType = "standard"
	RoomTypeLarge    RoomType = "large"
	RoomTypePremium  RoomType = "premium"
)

func (t RoomType) Valid() bool {
	switch t {
	case RoomTypeStandard, RoomTypeLarge, RoomTypePremium:
		return true
	}
	return false
}

type Hotel struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	City  string `json:"city"`
	Stars int    `json:"stars"`
}

// Room is a catalog record. HotelName and City are denormalized from the owning hotel.
type Room struct {
	ID            int64           `json:"id"`
	HotelID       int64           `json:"hotel_id"`
	HotelName     string          `json:"hotel_name"`
	City          string          `json:"city"`
	Number        string          `json:"room_number"`
	Type          RoomType        `json:"room_type"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	Capacity      int             `json:"capacity"`
}

// RoomFilter narrows the room catalog. Zero values leave a criterion unset.
type RoomFilter struct {
	HotelID     int64
	City        string
	Type        RoomType
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	MinCapacity int
}
