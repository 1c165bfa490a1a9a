package redisx

import "time"

const (
	// Idempotent create: idem:reservation:create:{idempotency_key} -> reservation_id
	KeyIdemReservationCreate = "idem:reservation:create:%s"

	// Cached reservation JSON: reservation:{id}
	KeyReservation = "reservation:%s"

	// Dedup of consumed events: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

// IdemPending marks an idempotency key whose create has not finished yet.
const IdemPending = "pending"

var (
	TTLIdempotency        = 24 * time.Hour
	TTLIdempotencyPending = 30 * time.Second
	TTLReservationCache   = 5 * time.Minute
	TTLDedup              = 48 * time.Hour
)
