package reservations

// TopicReservationEvents carries every lifecycle event.
const TopicReservationEvents = "reservation.events"

// Partition key = reservation id, so events for one reservation stay ordered.
func PartitionKey(reservationID string) []byte { return []byte(reservationID) }
