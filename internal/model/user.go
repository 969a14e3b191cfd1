package model

// User is the slice of the account record the order and commission cores
// consume: identity, SDR attribution source, and the running points balance.
type User struct {
	ID       int64   `json:"id" db:"id"`
	Phone    string  `json:"phone" db:"phone"`
	Nickname *string `json:"nickname,omitempty" db:"nickname"`
	Source   *string `json:"source,omitempty" db:"user_source"`
	Points   int     `json:"points" db:"points"`
}
