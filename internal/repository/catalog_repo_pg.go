package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGCatalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) *PGCatalogRepository {
	return &PGCatalogRepository{db: db}
}

const roomColumns = `r.id, r.hotel_id, h.name, h.city, r.room_number, r.room_type, r.price_per_night_cents, r.capacity`

func scanRoom(row pgx.Row) (domain.Room, error) {
	var (
		r     domain.Room
		cents int64
	)
	if err := row.Scan(&r.ID, &r.HotelID, &r.HotelName, &r.City, &r.Number, &r.Type, &cents, &r.Capacity); err != nil {
		return domain.Room{}, err
	}
	r.PricePerNight = fromCents(cents)
	return r, nil
}

func (r *PGCatalogRepository) ListRooms(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error) {
	var w where
	if filter.HotelID != 0 {
		w.add("r.hotel_id = $%d", filter.HotelID)
	}
	if filter.City != "" {
		w.add("h.city ILIKE '%%' || $%d || '%%'", filter.City)
	}
	if filter.Type != "" {
		w.add("r.room_type = $%d", string(filter.Type))
	}
	if filter.MinPrice != nil {
		w.add("r.price_per_night_cents >= $%d", toCents(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		w.add("r.price_per_night_cents <= $%d", toCents(*filter.MaxPrice))
	}
	if filter.MinCapacity > 0 {
		w.add("r.capacity >= $%d", filter.MinCapacity)
	}

	rows, err := r.db.Query(ctx, `SELECT `+roomColumns+` FROM rooms r JOIN hotels h ON h.id = r.hotel_id`+w.String()+` ORDER BY r.id`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := make([]domain.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *PGCatalogRepository) GetRoom(ctx context.Context, id int64) (*domain.Room, error) {
	row := r.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms r JOIN hotels h ON h.id = r.hotel_id WHERE r.id=$1`, id)
	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("room", id)
		}
		return nil, err
	}
	return &room, nil
}

const flightColumns = `id, flight_number, airline, departure_city, arrival_city, departure_time, duration_minutes, total_seats, price_cents`

func scanFlight(row pgx.Row) (domain.Flight, error) {
	var (
		f       domain.Flight
		minutes int
		cents   int64
	)
	if err := row.Scan(&f.ID, &f.Number, &f.Airline, &f.DepartureCity, &f.ArrivalCity, &f.DepartureTime, &minutes, &f.TotalSeats, &cents); err != nil {
		return domain.Flight{}, err
	}
	f.DepartureTime = f.DepartureTime.UTC()
	f.Duration = time.Duration(minutes) * time.Minute
	f.Price = fromCents(cents)
	return f, nil
}

func (r *PGCatalogRepository) ListFlights(ctx context.Context, filter domain.FlightFilter) ([]domain.Flight, error) {
	var w where
	if filter.DepartureCity != "" {
		w.add("lower(departure_city) = lower($%d)", filter.DepartureCity)
	}
	if filter.ArrivalCity != "" {
		w.add("lower(arrival_city) = lower($%d)", filter.ArrivalCity)
	}
	if !filter.DepartureFrom.IsZero() {
		w.add("departure_time >= $%d", filter.DepartureFrom)
	}
	if !filter.DepartureTo.IsZero() {
		w.add("departure_time < $%d", filter.DepartureTo)
	}

	order := " ORDER BY departure_time, id"
	if filter.SortBy == domain.FlightSortPrice {
		order = " ORDER BY price_cents, departure_time, id"
	}

	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights`+w.String()+order, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *PGCatalogRepository) GetFlight(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("flight", id)
		}
		return nil, err
	}
	return &f, nil
}

// Seed inserts the catalog when the hotels table is empty.
func (r *PGCatalogRepository) Seed(ctx context.Context, catalog Catalog) (bool, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM hotels`).Scan(&count); err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	hotelIDs := make(map[int]int64, len(catalog.Hotels))
	for i, h := range catalog.Hotels {
		var id int64
		if err := tx.QueryRow(ctx, `INSERT INTO hotels (name, city, stars) VALUES ($1, $2, $3) RETURNING id`, h.Name, h.City, h.Stars).Scan(&id); err != nil {
			return false, err
		}
		hotelIDs[i] = id
	}
	for _, room := range catalog.Rooms {
		if _, err := tx.Exec(ctx, `INSERT INTO rooms (hotel_id, room_number, room_type, price_per_night_cents, capacity) VALUES ($1, $2, $3, $4, $5)`,
			hotelIDs[room.Hotel], room.Room.Number, string(room.Room.Type), toCents(room.Room.PricePerNight), room.Room.Capacity); err != nil {
			return false, err
		}
	}
	for _, f := range catalog.Flights {
		if _, err := tx.Exec(ctx, `INSERT INTO flights (flight_number, airline, departure_city, arrival_city, departure_time, duration_minutes, total_seats, price_cents) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			f.Number, f.Airline, f.DepartureCity, f.ArrivalCity, f.DepartureTime, int(f.Duration/time.Minute), f.TotalSeats, toCents(f.Price)); err != nil {
			return false, err
		}
	}
	return true, tx.Commit(ctx)
}

var _ CatalogRepository = (*PGCatalogRepository)(nil)
