package program

// Program is a catalog offering (bootcamp, course) that can be put in a cart.
type Program struct {
	ID    int64
	Title string
	Price int64
}
