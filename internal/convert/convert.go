package convert

import (
	"github.com/go-tangra/go-tangra-tailscale-inventory/internal/inventory"
)

// MetaKey is the top-level key Ansible reads host vars from.
const MetaKey = "_meta"

// Document is an Ansible dynamic inventory in `--list` form.
type Document map[string]any

// Group is a single group entry of a Document.
type Group struct {
	Hosts []string `json:"hosts"`
}

// Meta carries the vars of every host so Ansible skips per-host `--host` calls.
type Meta struct {
	HostVars map[string]inventory.HostVars `json:"hostvars"`
}

// ToAnsible converts an inventory to the Ansible `--list` document.
// Groups are written after _meta; nothing is filtered.
func ToAnsible(inv *inventory.Inventory) Document {
	doc := Document{
		MetaKey: Meta{HostVars: inv.HostVars},
	}
	for _, name := range inv.Groups.Names() {
		hosts, _ := inv.Groups.Hosts(name)
		doc[name] = Group{Hosts: hosts}
	}
	return doc
}

// HostVars returns the vars of a single host for the Ansible `--host` call.
// Unknown hosts get an empty object.
func HostVars(inv *inventory.Inventory, host string) any {
	if vars, ok := inv.HostVars[host]; ok {
		return vars
	}
	return map[string]any{}
}

// ToStaticYAML converts an inventory to the structure of an Ansible YAML
// inventory file: every host with its vars under all.hosts, and every other
// group as a child of all.
func ToStaticYAML(inv *inventory.Inventory) map[string]any {
	hosts := make(map[string]any)
	children := make(map[string]any)

	for _, name := range inv.Groups.Names() {
		members, _ := inv.Groups.Hosts(name)
		if name == inventory.GroupAll {
			for _, h := range members {
				hosts[h] = inv.HostVars[h]
			}
			continue
		}

		groupHosts := make(map[string]any, len(members))
		for _, h := range members {
			groupHosts[h] = map[string]any{}
		}
		children[name] = map[string]any{"hosts": groupHosts}
	}

	return map[string]any{
		inventory.GroupAll: map[string]any{
			"hosts":    hosts,
			"children": children,
		},
	}
}
