package domain

// Caller is the already-authenticated identity every core operation
// receives. The core never reads ambient session state; whoever invokes it
// must say who is acting.
type Caller struct {
	ID   string
	Role Role
}
