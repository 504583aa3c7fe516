package domain

// Subject is an authenticated user identity. The users table is owned by the
// auth service; this gateway only ever confirms existence by primary key, so
// the record carries nothing beyond the ID.
type Subject struct {
	ID int64
}
