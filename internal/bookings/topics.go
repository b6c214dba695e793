package bookings

const TopicBookingEvents = "bookings.events"

// Partition key = booking id, so every event of one booking keeps its order.
func PartitionKey(bookingID string) []byte { return []byte(bookingID) }
