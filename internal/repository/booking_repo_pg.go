package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgExclusionViolation  = "23P01"
	pgForeignKeyViolation = "23503"
)

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) *PGBookingRepository {
	return &PGBookingRepository{db: db}
}

const hotelBookingColumns = `id, room_id, user_id, check_in, check_out, guest_count, total_price_cents, status, created_at, updated_at`

func scanHotelBooking(row pgx.Row) (domain.HotelBooking, error) {
	var (
		b     domain.HotelBooking
		cents int64
	)
	if err := row.Scan(&b.ID, &b.RoomID, &b.UserID, &b.Stay.CheckIn, &b.Stay.CheckOut, &b.GuestCount, &cents, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return domain.HotelBooking{}, err
	}
	b.Stay = domain.NewStay(b.Stay.CheckIn, b.Stay.CheckOut)
	b.TotalPrice = fromCents(cents)
	return b, nil
}

const flightBookingQuery = `SELECT b.id, b.user_id, b.passenger_count, b.total_price_cents, b.status, COALESCE(b.reference, ''), b.created_at, b.updated_at,
	ARRAY(SELECT s.flight_id FROM flight_booking_segments s WHERE s.booking_id = b.id ORDER BY s.position)
FROM flight_bookings b`

func scanFlightBooking(row pgx.Row) (domain.FlightBooking, error) {
	var (
		b     domain.FlightBooking
		cents int64
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.PassengerCount, &cents, &b.Status, &b.Reference, &b.CreatedAt, &b.UpdatedAt, &b.FlightIDs); err != nil {
		return domain.FlightBooking{}, err
	}
	b.TotalPrice = fromCents(cents)
	return b, nil
}

func collectHotelBookings(rows pgx.Rows) ([]domain.HotelBooking, error) {
	defer rows.Close()
	bookings := make([]domain.HotelBooking, 0)
	for rows.Next() {
		b, err := scanHotelBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func collectFlightBookings(rows pgx.Rows) ([]domain.FlightBooking, error) {
	defer rows.Close()
	bookings := make([]domain.FlightBooking, 0)
	for rows.Next() {
		b, err := scanFlightBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) RoomBookings(ctx context.Context, roomID int64) ([]domain.HotelBooking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+hotelBookingColumns+` FROM hotel_bookings WHERE room_id=$1 ORDER BY id`, roomID)
	if err != nil {
		return nil, err
	}
	return collectHotelBookings(rows)
}

func (r *PGBookingRepository) FlightBookings(ctx context.Context, flightID int64) ([]domain.FlightBooking, error) {
	rows, err := r.db.Query(ctx, flightBookingQuery+` WHERE b.id IN (SELECT booking_id FROM flight_booking_segments WHERE flight_id=$1) ORDER BY b.id`, flightID)
	if err != nil {
		return nil, err
	}
	return collectFlightBookings(rows)
}

func (r *PGBookingRepository) CreateHotelBooking(ctx context.Context, booking *domain.HotelBooking) error {
	err := r.db.QueryRow(ctx, `INSERT INTO hotel_bookings (room_id, user_id, check_in, check_out, guest_count, total_price_cents, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		booking.RoomID, booking.UserID, booking.Stay.CheckIn, booking.Stay.CheckOut, booking.GuestCount, toCents(booking.TotalPrice), booking.Status).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgExclusionViolation:
				return &domain.CapacityError{Kind: "room", ID: booking.RoomID, Requested: 1}
			case pgForeignKeyViolation:
				return notFound("room", booking.RoomID)
			}
		}
		return err
	}
	return nil
}

func (r *PGBookingRepository) CreateFlightBooking(ctx context.Context, booking *domain.FlightBooking, reference ReferenceFunc) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO flight_bookings (user_id, passenger_count, total_price_cents, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		booking.UserID, booking.PassengerCount, toCents(booking.TotalPrice), booking.Status).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	for i, flightID := range booking.FlightIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO flight_booking_segments (booking_id, position, flight_id) VALUES ($1, $2, $3)`, booking.ID, i, flightID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
				return notFound("flight", flightID)
			}
			return err
		}
	}

	if reference != nil {
		booking.Reference = reference(booking.ID, booking.CreatedAt)
		if _, err := tx.Exec(ctx, `UPDATE flight_bookings SET reference=$1 WHERE id=$2`, booking.Reference, booking.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetHotelBooking(ctx context.Context, id int64) (*domain.HotelBooking, error) {
	b, err := scanHotelBooking(r.db.QueryRow(ctx, `SELECT `+hotelBookingColumns+` FROM hotel_bookings WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("hotel_booking", id)
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) GetFlightBooking(ctx context.Context, id int64) (*domain.FlightBooking, error) {
	b, err := scanFlightBooking(r.db.QueryRow(ctx, flightBookingQuery+` WHERE b.id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("flight_booking", id)
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) UpdateHotelBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.HotelBooking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := checkTransition(ctx, tx, `SELECT status FROM hotel_bookings WHERE id=$1 FOR UPDATE`, "hotel_booking", id, status); err != nil {
		return nil, err
	}
	b, err := scanHotelBooking(tx.QueryRow(ctx, `UPDATE hotel_bookings SET status=$1, updated_at=now() WHERE id=$2 RETURNING `+hotelBookingColumns, status, id))
	if err != nil {
		return nil, err
	}
	return &b, tx.Commit(ctx)
}

func (r *PGBookingRepository) UpdateFlightBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.FlightBooking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := checkTransition(ctx, tx, `SELECT status FROM flight_bookings WHERE id=$1 FOR UPDATE`, "flight_booking", id, status); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `UPDATE flight_bookings SET status=$1, updated_at=now() WHERE id=$2`, status, id); err != nil {
		return nil, err
	}
	b, err := scanFlightBooking(tx.QueryRow(ctx, flightBookingQuery+` WHERE b.id=$1`, id))
	if err != nil {
		return nil, err
	}
	return &b, tx.Commit(ctx)
}

func checkTransition(ctx context.Context, tx pgx.Tx, query, kind string, id int64, next domain.BookingStatus) error {
	var current domain.BookingStatus
	if err := tx.QueryRow(ctx, query, id).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound(kind, id)
		}
		return err
	}
	if current != next && !current.CanTransitionTo(next) {
		return invalidTransition(kind, id, current, next)
	}
	return nil
}

func bookingWhere(filter domain.BookingFilter, prefix string) *where {
	w := &where{}
	if filter.UserID != nil {
		w.add(prefix+"user_id = $%d", *filter.UserID)
	}
	if filter.Status != "" {
		w.add(prefix+"status = $%d", string(filter.Status))
	}
	return w
}

func (r *PGBookingRepository) ListHotelBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.HotelBooking, error) {
	w := bookingWhere(filter, "")
	query := `SELECT ` + hotelBookingColumns + ` FROM hotel_bookings` + w.String() + ` ORDER BY id DESC`
	query += w.page(filter.Offset, filter.Limit)

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	return collectHotelBookings(rows)
}

func (r *PGBookingRepository) ListFlightBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.FlightBooking, error) {
	w := bookingWhere(filter, "b.")
	query := flightBookingQuery + w.String() + ` ORDER BY b.id DESC`
	query += w.page(filter.Offset, filter.Limit)

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	return collectFlightBookings(rows)
}

var _ BookingRepository = (*PGBookingRepository)(nil)
