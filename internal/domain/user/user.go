package user

type User struct {
	ID   int64
	Name string
}

// Claims is what the identity provider vouches for in a bearer token.
type Claims struct {
	UserID int64
	Name   string
}
