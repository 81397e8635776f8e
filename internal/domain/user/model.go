package user

// Principal identifies the authenticated caller. AccountID is the
// linked Dota account id, 0 when the user has not linked one yet.
type Principal struct {
	UserID    string
	Email     string
	AccountID int64
}
