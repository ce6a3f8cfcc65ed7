package shared

// Actor is the identity the authorization collaborator resolved for a
// request: a stable occupant handle plus whether the caller may bypass
// collision checks.
type Actor struct {
	Handle     string
	Privileged bool
}
