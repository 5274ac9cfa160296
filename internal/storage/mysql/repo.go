package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"event_hotels/internal/adapters/observability"
	"event_hotels/internal/domain"
)

func valTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// observe records the query outcome; a missing row is not a failure.
func observe(op string, start time.Time, err error) {
	status := "ok"
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = "no_rows"
	case err != nil:
		status = "error"
	}
	observability.ObserveDB(op, status, time.Since(start))
}

func (r *Repo) FindEnrollmentByUserID(ctx context.Context, userID int64) (e domain.Enrollment, err error) {
	defer func(start time.Time) { observe("find_enrollment", start, err) }(time.Now())

	var birthday sql.NullTime
	err = r.db.QueryRowContext(ctx, findEnrollmentByUserSQL, userID).Scan(
		&e.ID, &e.UserID, &e.Name, &e.CPF, &birthday, &e.Phone, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Enrollment{}, domain.ErrNotFound
		}
		return domain.Enrollment{}, err
	}
	if birthday.Valid {
		e.Birthday = birthday.Time
	}
	return e, nil
}

func (r *Repo) FindTicketByEnrollmentID(ctx context.Context, enrollmentID int64) (t domain.Ticket, err error) {
	defer func(start time.Time) { observe("find_ticket", start, err) }(time.Now())

	var status string
	tt := &t.TicketType
	err = r.db.QueryRowContext(ctx, findTicketByEnrollmentSQL, enrollmentID).Scan(
		&t.ID, &t.EnrollmentID, &t.TicketTypeID, &status, &t.CreatedAt, &t.UpdatedAt,
		&tt.ID, &tt.Name, &tt.Price, &tt.IsRemote, &tt.IncludesHotel, &tt.CreatedAt, &tt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Ticket{}, domain.ErrNotFound
		}
		return domain.Ticket{}, err
	}
	t.Status = domain.TicketStatus(status)
	return t, nil
}

func (r *Repo) FindAllHotels(ctx context.Context) (out []domain.Hotel, err error) {
	defer func(start time.Time) { observe("find_hotels", start, err) }(time.Now())

	rows, err := r.db.QueryContext(ctx, findAllHotelsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var h domain.Hotel
		if err := rows.Scan(&h.ID, &h.Name, &h.Image, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) FindHotelWithRooms(ctx context.Context, hotelID int64) (hw domain.HotelWithRooms, err error) {
	defer func(start time.Time) { observe("find_hotel_rooms", start, err) }(time.Now())

	h := &hw.Hotel
	if err := r.db.QueryRowContext(ctx, findHotelSQL, hotelID).Scan(
		&h.ID, &h.Name, &h.Image, &h.CreatedAt, &h.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.HotelWithRooms{}, domain.ErrNotFound
		}
		return domain.HotelWithRooms{}, err
	}

	rows, err := r.db.QueryContext(ctx, findRoomsByHotelSQL, hotelID)
	if err != nil {
		return domain.HotelWithRooms{}, err
	}
	defer rows.Close()

	// always an array in the payload, even for a hotel with no rooms
	hw.Rooms = []domain.Room{}
	for rows.Next() {
		var rm domain.Room
		if err := rows.Scan(&rm.ID, &rm.Name, &rm.Capacity, &rm.HotelID, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
			return domain.HotelWithRooms{}, err
		}
		hw.Rooms = append(hw.Rooms, rm)
	}
	if err := rows.Err(); err != nil {
		return domain.HotelWithRooms{}, err
	}
	return hw, nil
}

/********** seed writes **********/

func (r *Repo) UpsertHotel(ctx context.Context, h domain.Hotel) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if h.ID > 0 {
		res, err = r.db.ExecContext(ctx, upsertHotelWithIDSQL, h.ID, h.Name, h.Image)
	} else {
		res, err = r.db.ExecContext(ctx, upsertHotelSQL, h.Name, h.Image)
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) UpsertRooms(ctx context.Context, hotelID int64, rooms []domain.Room) error {
	if len(rooms) == 0 {
		return nil
	}
	values := make([]string, 0, len(rooms))
	args := make([]any, 0, len(rooms)*3)
	for _, rm := range rooms {
		values = append(values, "(?,?,?)")
		args = append(args, hotelID, rm.Name, rm.Capacity)
	}
	sqlStr := insertRoomsPrefix + strings.Join(values, ",") + insertRoomsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) UpsertUser(ctx context.Context, email string) (int64, error) {
	return r.execID(ctx, upsertUserSQL, email)
}

func (r *Repo) UpsertEnrollment(ctx context.Context, e domain.Enrollment) (int64, error) {
	return r.execID(ctx, upsertEnrollmentSQL, e.UserID, e.Name, e.CPF, valTime(e.Birthday), e.Phone)
}

func (r *Repo) UpsertTicketType(ctx context.Context, tt domain.TicketType) (int64, error) {
	return r.execID(ctx, upsertTicketTypeSQL, tt.Name, tt.Price, tt.IsRemote, tt.IncludesHotel)
}

func (r *Repo) UpsertTicket(ctx context.Context, t domain.Ticket) (int64, error) {
	return r.execID(ctx, upsertTicketSQL, t.EnrollmentID, t.TicketTypeID, string(t.Status))
}

func (r *Repo) execID(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}
