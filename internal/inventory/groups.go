package inventory

// Groups is an insertion-ordered mapping of group name to host names.
// Membership only grows: adding to an existing group appends, duplicates
// included.
type Groups struct {
	names   []string
	members map[string][]string
}

// NewGroups returns an empty Groups.
func NewGroups() *Groups {
	return &Groups{members: make(map[string][]string)}
}

// Ensure creates an empty group if it does not exist yet.
func (g *Groups) Ensure(name string) {
	if _, ok := g.members[name]; ok {
		return
	}
	g.names = append(g.names, name)
	g.members[name] = []string{}
}

// Add appends host to the named group, creating the group if needed.
func (g *Groups) Add(name, host string) {
	g.Ensure(name)
	g.members[name] = append(g.members[name], host)
}

// Names returns group names in creation order.
func (g *Groups) Names() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// Hosts returns the members of a group in insertion order, and whether the
// group exists. The returned slice is never nil for an existing group.
func (g *Groups) Hosts(name string) ([]string, bool) {
	hosts, ok := g.members[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(hosts))
	copy(out, hosts)
	return out, true
}

// Len returns the number of groups.
func (g *Groups) Len() int { return len(g.names) }
