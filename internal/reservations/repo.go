package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperr "github.com/ariefcatur/go-restaurant-reservations/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the PostgreSQL Store. Every method is a single statement, so it
// relies on the database's statement atomicity and opens no transactions.
type Repo struct{ DB *pgxpool.Pool }

const selectColumns = `id, customer_name, COALESCE(customer_email, ''), COALESCE(customer_phone, ''),
	reservation_date, reservation_time, party_size, COALESCE(special_requests, ''),
	status, created_at, updated_at`

const uniqueViolation = "23505"

func (r *Repo) Create(ctx context.Context, res Reservation) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO reservations(id, customer_name, customer_email, customer_phone,
			reservation_date, reservation_time, party_size, special_requests,
			status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		res.ID, res.CustomerName, res.CustomerEmail, nullText(res.CustomerPhone),
		pgDate(res.Date), pgTime(res.Time), res.PartySize, nullText(res.SpecialRequests),
		string(res.Status), res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return alreadyExists(res.ID)
		}
		return internal("insert reservation", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (Reservation, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+selectColumns+` FROM reservations WHERE id=$1`, id)
	res, err := scanReservation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Reservation{}, notFound(id)
	}
	if err != nil {
		return Reservation{}, internal("get reservation", err)
	}
	return res, nil
}

func (r *Repo) List(ctx context.Context) ([]Reservation, error) {
	return r.Find(ctx, Query{Sort: SortSchedule})
}

func (r *Repo) Update(ctx context.Context, res Reservation) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE reservations SET
			customer_name=$2, customer_email=$3, customer_phone=$4,
			reservation_date=$5, reservation_time=$6, party_size=$7,
			special_requests=$8, status=$9, updated_at=$10
		WHERE id=$1`,
		res.ID, res.CustomerName, res.CustomerEmail, nullText(res.CustomerPhone),
		pgDate(res.Date), pgTime(res.Time), res.PartySize, nullText(res.SpecialRequests),
		string(res.Status), res.UpdatedAt,
	)
	if err != nil {
		return internal("update reservation", err)
	}
	if ct.RowsAffected() != 1 {
		return notFound(res.ID)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM reservations WHERE id=$1`, id)
	if err != nil {
		return internal("delete reservation", err)
	}
	if ct.RowsAffected() != 1 {
		return notFound(id)
	}
	return nil
}

func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := r.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reservations WHERE id=$1)`, id).Scan(&ok)
	if err != nil {
		return false, internal("check reservation", err)
	}
	return ok, nil
}

func (r *Repo) Find(ctx context.Context, q Query) ([]Reservation, error) {
	sql, args := buildFind(q)
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, internal("query reservations", err)
	}
	defer rows.Close()

	out := []Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, internal("scan reservation", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, internal("iterate reservations", err)
	}
	return out, nil
}

func (r *Repo) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := r.DB.Query(ctx, `SELECT status, COUNT(*) FROM reservations GROUP BY status`)
	if err != nil {
		return nil, internal("count reservations", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, internal("scan count", err)
		}
		counts[Status(s)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, internal("iterate counts", err)
	}
	return counts, nil
}

// buildFind turns q into a SELECT with positional args. Ordering mirrors
// SortReservations; id uses the C collation so ties sort byte-wise like Go
// strings do.
func buildFind(q Query) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Status != "" {
		where = append(where, "status = "+arg(string(q.Status)))
	}
	if q.On != nil {
		where = append(where, "reservation_date = "+arg(pgDate(*q.On)))
	}
	if q.From != nil {
		where = append(where, "reservation_date >= "+arg(pgDate(*q.From)))
	}
	if q.To != nil {
		where = append(where, "reservation_date <= "+arg(pgDate(*q.To)))
	}
	if q.Email != "" {
		where = append(where, "LOWER(customer_email) = LOWER("+arg(q.Email)+")")
	}
	if q.NameContains != "" {
		where = append(where, "STRPOS(LOWER(customer_name), LOWER("+arg(q.NameContains)+")) > 0")
	}
	if q.MinPartySize > 0 {
		where = append(where, "party_size >= "+arg(q.MinPartySize))
	}

	var b strings.Builder
	b.WriteString("SELECT " + selectColumns + " FROM reservations")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	switch q.Sort {
	case SortRecentFirst:
		b.WriteString(` ORDER BY reservation_date DESC, id COLLATE "C" ASC`)
	case SortLatestFirst:
		b.WriteString(` ORDER BY reservation_date DESC, reservation_time DESC, id COLLATE "C" ASC`)
	default:
		b.WriteString(` ORDER BY reservation_date ASC, reservation_time ASC, id COLLATE "C" ASC`)
	}
	return b.String(), args
}

func scanReservation(row pgx.Row) (Reservation, error) {
	var (
		res    Reservation
		date   pgtype.Date
		clock  pgtype.Time
		status string
	)
	err := row.Scan(&res.ID, &res.CustomerName, &res.CustomerEmail, &res.CustomerPhone,
		&date, &clock, &res.PartySize, &res.SpecialRequests,
		&status, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return Reservation{}, err
	}
	res.Date = DateOf(date.Time)
	res.Time = TimeOfDayFromSeconds(int(clock.Microseconds / int64(time.Second/time.Microsecond)))
	res.Status = Status(status)
	return res, nil
}

func pgDate(d Date) pgtype.Date { return pgtype.Date{Time: d.Time(), Valid: true} }

func pgTime(t TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: int64(t.Seconds()) * int64(time.Second/time.Microsecond), Valid: true}
}

func nullText(s string) pgtype.Text { return pgtype.Text{String: s, Valid: s != ""} }

func internal(op string, err error) error {
	return apperr.Wrap(apperr.ErrCodeInternal, op, err)
}
