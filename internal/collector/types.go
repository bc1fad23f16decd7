package collector

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Status is the subset of `tailscale status --self --json` the inventory uses.
type Status struct {
	Version        string `json:"Version"`
	BackendState   string `json:"BackendState"`
	MagicDNSSuffix string `json:"MagicDNSSuffix"`
	Self           Device `json:"Self"`
	Peer           Peers  `json:"Peer"`
}

// Device is a single node of the tailnet, either the local node or a peer.
type Device struct {
	HostName     string   `json:"HostName"`
	DNSName      string   `json:"DNSName"`
	OS           string   `json:"OS"`
	Online       bool     `json:"Online"`
	TailscaleIPs []string `json:"TailscaleIPs"`
	// Tags is nil both when the field is absent and when it is null.
	Tags []string `json:"Tags,omitempty"`
}

// Peer is one entry of the status Peer object, keyed by node public key.
type Peer struct {
	Key    string
	Device Device
}

// Peers keeps the peer object in the order tailscale emitted it, so the
// inventory lists hosts in a stable encounter order.
type Peers []Peer

// UnmarshalJSON decodes a JSON object (or null) into ordered peers.
func (p *Peers) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("peer: %w", err)
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("peer: expected object, got %v", tok)
	}

	var peers Peers
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("peer key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("peer key: expected string, got %v", keyTok)
		}

		var dev Device
		if err := dec.Decode(&dev); err != nil {
			return fmt.Errorf("peer %s: %w", key, err)
		}
		peers = append(peers, Peer{Key: key, Device: dev})
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("peer: %w", err)
	}

	*p = peers
	return nil
}
