package repository

import (
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/shopspring/decimal"
)

// CatalogRoom places a room in the hotel at index Hotel of Catalog.Hotels.
type CatalogRoom struct {
	Hotel int
	Room  domain.Room
}

// Catalog is a self-contained set of hotels, rooms and flights used to
// populate an empty store.
type Catalog struct {
	Hotels  []domain.Hotel
	Rooms   []CatalogRoom
	Flights []domain.Flight
}

// Load inserts the catalog into the memory store.
func (m *Memory) Load(c Catalog) error {
	ids := make(map[int]int64, len(c.Hotels))
	for i, h := range c.Hotels {
		ids[i] = m.AddHotel(h).ID
	}
	for _, r := range c.Rooms {
		room := r.Room
		room.HotelID = ids[r.Hotel]
		if _, err := m.AddRoom(room); err != nil {
			return err
		}
	}
	for _, f := range c.Flights {
		m.AddFlight(f)
	}
	return nil
}

func SampleCatalog() Catalog {
	day := domain.Date(2024, time.January, 15)
	at := func(hour, minute int) time.Time {
		return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	}
	room := func(number string, t domain.RoomType, price int64, capacity int) domain.Room {
		return domain.Room{Number: number, Type: t, PricePerNight: decimal.NewFromInt(price), Capacity: capacity}
	}
	flight := func(number, from, to string, departure time.Time, minutes int, price int64) domain.Flight {
		return domain.Flight{
			Number:        number,
			Airline:       "Aeroflot",
			DepartureCity: from,
			ArrivalCity:   to,
			DepartureTime: departure,
			Duration:      time.Duration(minutes) * time.Minute,
			TotalSeats:    180,
			Price:         decimal.NewFromInt(price),
		}
	}

	return Catalog{
		Hotels: []domain.Hotel{
			{Name: "Grand Hotel Moscow", City: "Moscow", Stars: 5},
			{Name: "Comfort Inn", City: "Moscow", Stars: 3},
			{Name: "Seaside Resort", City: "Sochi", Stars: 4},
			{Name: "Business Hotel SPB", City: "St. Petersburg", Stars: 4},
		},
		Rooms: []CatalogRoom{
			{Hotel: 0, Room: room("101", domain.RoomTypePremium, 200, 2)},
			{Hotel: 0, Room: room("102", domain.RoomTypeStandard, 120, 2)},
			{Hotel: 1, Room: room("201", domain.RoomTypeStandard, 80, 2)},
			{Hotel: 1, Room: room("202", domain.RoomTypeLarge, 120, 4)},
			{Hotel: 2, Room: room("301", domain.RoomTypePremium, 180, 2)},
			{Hotel: 3, Room: room("401", domain.RoomTypePremium, 150, 2)},
		},
		Flights: []domain.Flight{
			flight("SU100", "Moscow", "St. Petersburg", at(8, 0), 90, 80),
			flight("SU200", "St. Petersburg", "Sochi", at(11, 0), 180, 100),
			flight("SU300", "Moscow", "Sochi", at(9, 0), 150, 150),
			flight("SU150", "Moscow", "St. Petersburg", at(9, 0), 60, 80),
			flight("SU250", "St. Petersburg", "Sochi", at(12, 0), 180, 100),
			flight("SU310", "Moscow", "Sochi", at(14, 0), 150, 150),
		},
	}
}
