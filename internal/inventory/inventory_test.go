package inventory

import (
	"reflect"
	"testing"

	"github.com/go-tangra/go-tangra-tailscale-inventory/internal/collector"
)

func device(name, os string, online bool, tags ...string) collector.Device {
	return collector.Device{
		HostName:     name,
		DNSName:      name + ".ts.net",
		OS:           os,
		Online:       online,
		TailscaleIPs: []string{"100.64.0.1"},
		Tags:         tags,
	}
}

func hostsOf(t *testing.T, inv *Inventory, group string) []string {
	t.Helper()
	hosts, ok := inv.Groups.Hosts(group)
	if !ok {
		t.Fatalf("group %q missing; have %v", group, inv.Groups.Names())
	}
	return hosts
}

func assertHosts(t *testing.T, inv *Inventory, group string, want ...string) {
	t.Helper()
	if want == nil {
		want = []string{}
	}
	if got := hostsOf(t, inv, group); !reflect.DeepEqual(got, want) {
		t.Errorf("group %q = %v, want %v", group, got, want)
	}
}

func TestFromStatus_EndToEnd(t *testing.T) {
	st := &collector.Status{
		Self: collector.Device{
			HostName: "a", OS: "linux", Online: true,
			DNSName: "a.ts.net", TailscaleIPs: []string{"100.0.0.1"},
		},
		Peer: collector.Peers{
			{Key: "x", Device: collector.Device{
				HostName: "b", OS: "linux", Online: false,
				DNSName: "b.ts.net", TailscaleIPs: []string{"100.0.0.2"},
				Tags: []string{"tag:db"},
			}},
		},
	}

	inv := FromStatus(st)

	assertHosts(t, inv, GroupAll, "b", "a")
	assertHosts(t, inv, GroupOnline, "a")
	assertHosts(t, inv, GroupOffline, "b")
	assertHosts(t, inv, "linux", "b", "a")
	assertHosts(t, inv, "tag_db", "b")
	assertHosts(t, inv, GroupSelf, "a")

	wantNames := []string{GroupAll, GroupOnline, GroupOffline, GroupSelf, "linux", "tag_db"}
	if got := inv.Groups.Names(); !reflect.DeepEqual(got, wantNames) {
		t.Errorf("group order = %v, want %v", got, wantNames)
	}

	wantVars := map[string]HostVars{
		"a": {AnsibleHost: "a.ts.net", TailscaleIPs: []string{"100.0.0.1"}},
		"b": {AnsibleHost: "b.ts.net", TailscaleIPs: []string{"100.0.0.2"}},
	}
	if !reflect.DeepEqual(inv.HostVars, wantVars) {
		t.Errorf("HostVars = %+v, want %+v", inv.HostVars, wantVars)
	}
}

func TestAssemble_SelfOnly(t *testing.T) {
	tests := []struct {
		name    string
		self    collector.Device
		wantAll []string
	}{
		{name: "included", self: device("s", "linux", true), wantAll: []string{"s"}},
		{name: "no os", self: device("s", "", true), wantAll: nil},
		{name: "funnel", self: device(FunnelIngressNode, "linux", true), wantAll: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := FromStatus(&collector.Status{Self: tt.self})

			assertHosts(t, inv, GroupSelf, tt.self.HostName)
			assertHosts(t, inv, GroupAll, tt.wantAll...)
			if len(inv.HostVars) != len(tt.wantAll) {
				t.Errorf("HostVars has %d entries, want %d", len(inv.HostVars), len(tt.wantAll))
			}
		})
	}
}

func TestAssemble_ExcludesHostsWithoutOS(t *testing.T) {
	hosts := []collector.Device{
		device("mullvad", "", true, "tag:exit"),
		device("ok", "linux", false),
	}

	inv := Assemble(hosts, "ok")

	assertHosts(t, inv, GroupAll, "ok")
	assertHosts(t, inv, GroupOnline)
	assertHosts(t, inv, GroupOffline, "ok")
	if _, ok := inv.Groups.Hosts("tag_exit"); ok {
		t.Error("tag group created for excluded host")
	}
	if _, ok := inv.Groups.Hosts(""); ok {
		t.Error("empty OS group created")
	}
	if _, ok := inv.HostVars["mullvad"]; ok {
		t.Error("excluded host has host vars")
	}
}

func TestAssemble_ExcludesFunnelIngressNode(t *testing.T) {
	hosts := []collector.Device{
		device(FunnelIngressNode, "linux", true, "tag:funnel"),
		device(FunnelIngressNode, "linux", false),
	}

	inv := Assemble(hosts, "elsewhere")

	assertHosts(t, inv, GroupAll)
	assertHosts(t, inv, GroupOnline)
	assertHosts(t, inv, GroupOffline)
	assertHosts(t, inv, GroupSelf, "elsewhere")
	if _, ok := inv.Groups.Hosts("linux"); ok {
		t.Error("OS group created for funnel ingress node")
	}
	if len(inv.HostVars) != 0 {
		t.Errorf("HostVars = %v, want empty", inv.HostVars)
	}
}

func TestAssemble_ExcludedSelfStillInSelfGroup(t *testing.T) {
	hosts := []collector.Device{
		device("peer", "windows", true),
		device("me", "", true),
	}

	inv := Assemble(hosts, "me")

	assertHosts(t, inv, GroupSelf, "me")
	assertHosts(t, inv, GroupAll, "peer")
	if _, ok := inv.HostVars["me"]; ok {
		t.Error("excluded self host has host vars")
	}
}

func TestAssemble_TagGroupsAccumulate(t *testing.T) {
	hosts := []collector.Device{
		device("w1", "linux", true, "tag:role-worker"),
		device("w2", "linux", true, "tag:role-worker", "tag:gpu"),
		device("w3", "freebsd", false, "tag:role_worker"),
	}

	inv := Assemble(hosts, "w1")

	assertHosts(t, inv, "tag_role_worker", "w1", "w2", "w3")
	assertHosts(t, inv, "tag_gpu", "w2")
	assertHosts(t, inv, "freebsd", "w3")
}

func TestAssemble_TagCollidesWithExistingGroup(t *testing.T) {
	hosts := []collector.Device{
		device("h1", "linux", true),
		device("h2", "windows", true, "linux", "online"),
	}

	inv := Assemble(hosts, "h1")

	assertHosts(t, inv, "linux", "h1", "h2")
	assertHosts(t, inv, GroupOnline, "h1", "h2", "h2")
}

func TestAssemble_MissingAndEmptyTagsEquivalent(t *testing.T) {
	withNil := Assemble([]collector.Device{device("h", "linux", true)}, "h")
	withEmpty := Assemble([]collector.Device{{
		HostName: "h", DNSName: "h.ts.net", OS: "linux", Online: true,
		TailscaleIPs: []string{"100.64.0.1"}, Tags: []string{},
	}}, "h")

	if !reflect.DeepEqual(withNil.Groups.Names(), withEmpty.Groups.Names()) {
		t.Errorf("group names differ: %v vs %v", withNil.Groups.Names(), withEmpty.Groups.Names())
	}
}

func TestAssemble_AllAndHostVarsConsistent(t *testing.T) {
	hosts := []collector.Device{
		device("a", "linux", true, "tag:x"),
		device("b", "", true),
		device(FunnelIngressNode, "linux", true),
		device("c", "macOS", false, "tag:x"),
	}

	inv := Assemble(hosts, "a")

	all := hostsOf(t, inv, GroupAll)
	if len(all) != len(inv.HostVars) {
		t.Fatalf("all has %d hosts, HostVars has %d", len(all), len(inv.HostVars))
	}
	seen := make(map[string]int)
	for _, h := range all {
		seen[h]++
		if _, ok := inv.HostVars[h]; !ok {
			t.Errorf("host %q in all has no host vars", h)
		}
	}
	for h, n := range seen {
		if n != 1 {
			t.Errorf("host %q appears %d times in all", h, n)
		}
	}

	online := hostsOf(t, inv, GroupOnline)
	offline := hostsOf(t, inv, GroupOffline)
	if len(online)+len(offline) != len(all) {
		t.Errorf("online(%d)+offline(%d) != all(%d)", len(online), len(offline), len(all))
	}
}

func TestSanitizeTag(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"tag:role-worker", "tag_role_worker"},
		{"tag:db", "tag_db"},
		{"tag:a:b-c-d", "tag_a_b_c_d"},
		{"plain", "plain"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeTag(tt.in); got != tt.want {
			t.Errorf("SanitizeTag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAllHosts_PeersThenSelf(t *testing.T) {
	st := &collector.Status{
		Self: device("self", "linux", true),
		Peer: collector.Peers{
			{Key: "k2", Device: device("p2", "linux", true)},
			{Key: "k1", Device: device("p1", "linux", true)},
		},
	}

	var names []string
	for _, d := range AllHosts(st) {
		names = append(names, d.HostName)
	}

	want := []string{"p2", "p1", "self"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("AllHosts() = %v, want %v", names, want)
	}
}
