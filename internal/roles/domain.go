package roles

// Role is a named capability set.
type Role struct {
	Name         string
	DisplayName  string
	Capabilities map[string]bool
}
