// Package inventory turns tailscale devices into Ansible groups and host vars.
package inventory

import (
	"strings"

	"github.com/go-tangra/go-tangra-tailscale-inventory/internal/collector"
)

// Reserved group names.
const (
	GroupAll     = "all"
	GroupOnline  = "online"
	GroupOffline = "offline"
	GroupSelf    = "self"
)

// FunnelIngressNode is the host name tailscale gives its Funnel ingress
// helper. It shows up as a peer but cannot be managed by Ansible.
const FunnelIngressNode = "funnel-ingress-node"

// HostVars are the per-host variables published under _meta.hostvars.
type HostVars struct {
	AnsibleHost  string   `json:"ansible_host" yaml:"ansible_host"`
	TailscaleIPs []string `json:"tailscale_ips" yaml:"tailscale_ips"`
}

// Inventory is the grouped view of a tailnet.
type Inventory struct {
	Groups   *Groups
	HostVars map[string]HostVars
}

var tagReplacer = strings.NewReplacer(":", "_", "-", "_")

// SanitizeTag turns a tailscale tag such as "tag:role-worker" into a valid
// Ansible group name ("tag_role_worker").
func SanitizeTag(tag string) string {
	return tagReplacer.Replace(tag)
}

// AllHosts returns the peers in the order tailscale reported them, followed
// by the local node.
func AllHosts(st *collector.Status) []collector.Device {
	hosts := make([]collector.Device, 0, len(st.Peer)+1)
	for _, p := range st.Peer {
		hosts = append(hosts, p.Device)
	}
	return append(hosts, st.Self)
}

// FromStatus builds the inventory for a full status record.
func FromStatus(st *collector.Status) *Inventory {
	return Assemble(AllHosts(st), st.Self.HostName)
}

// Assemble groups hosts. selfHostName is placed in the self group before any
// filtering, so it is listed there even when the host itself is skipped.
func Assemble(hosts []collector.Device, selfHostName string) *Inventory {
	inv := &Inventory{
		Groups:   NewGroups(),
		HostVars: make(map[string]HostVars),
	}
	inv.Groups.Ensure(GroupAll)
	inv.Groups.Ensure(GroupOnline)
	inv.Groups.Ensure(GroupOffline)
	inv.Groups.Add(GroupSelf, selfHostName)

	for _, h := range hosts {
		if excluded(h) {
			continue
		}

		inv.Groups.Add(GroupAll, h.HostName)
		inv.HostVars[h.HostName] = HostVars{
			AnsibleHost:  h.DNSName,
			TailscaleIPs: h.TailscaleIPs,
		}

		// Offline hosts stay in the inventory so plays can target or skip
		// them explicitly with the online/offline groups.
		if h.Online {
			inv.Groups.Add(GroupOnline, h.HostName)
		} else {
			inv.Groups.Add(GroupOffline, h.HostName)
		}

		inv.Groups.Add(h.OS, h.HostName)

		for _, tag := range h.Tags {
			inv.Groups.Add(SanitizeTag(tag), h.HostName)
		}
	}

	return inv
}

// excluded reports whether a device is left out of the inventory: the Funnel
// ingress helper, and endpoints without an OS such as Mullvad exit nodes.
func excluded(d collector.Device) bool {
	return d.HostName == FunnelIngressNode || d.OS == ""
}
