package metainfo

import (
	"encoding/binary"
	"fmt"
	"net"

	bencode "github.com/multiversx/mx-bencode-go"
)

const compactPeerSize = 6

// TrackerResponse is the dictionary an HTTP tracker returns on announce.
// A response carrying a failure reason has no other meaningful fields.
type TrackerResponse struct {
	FailureReason  string   `bencode:"failure reason,omitempty"`
	WarningMessage string   `bencode:"warning message,omitempty"`
	Interval       int64    `bencode:"interval,omitempty"`
	MinInterval    int64    `bencode:"min interval,omitempty"`
	TrackerID      string   `bencode:"tracker id,omitempty"`
	Complete       int64    `bencode:"complete,omitempty"`
	Incomplete     int64    `bencode:"incomplete,omitempty"`
	Peers          PeerList `bencode:"peers,omitempty"`
}

// DecodeResponse parses a complete tracker response document.
func DecodeResponse(data []byte) (*TrackerResponse, error) {
	decoded := &TrackerResponse{}
	err := bencode.Unmarshal(decoded, data)
	if err != nil {
		return nil, fmt.Errorf("cannot decode tracker response: %w", err)
	}

	return decoded, nil
}

// Encode serializes the response back to its canonical byte form.
func (r *TrackerResponse) Encode() ([]byte, error) {
	return bencode.Marshal(r)
}

// IsFailure returns true when the tracker rejected the announce.
func (r *TrackerResponse) IsFailure() bool {
	return r.FailureReason != ""
}

// Peer is one peer of a tracker response. ID is empty for peers received
// in the compact form.
type Peer struct {
	IP   net.IP
	Port uint16
	ID   []byte
}

// PeerList is the peers field of a tracker response. On the wire it is
// either a string of packed 6-byte IPv4 address and port pairs (the compact
// form) or a list of per-peer dictionaries.
type PeerList []Peer

// UnmarshalBencodeValue accepts both wire forms of the peers field.
func (p *PeerList) UnmarshalBencodeValue(value bencode.Value) error {
	switch {
	case value.IsString():
		return p.fromCompact(value.Bytes())
	case value.IsList():
		return p.fromDictionaries(value.Items())
	default:
		return fmt.Errorf("%w: got %s", ErrInvalidPeers, value.Kind())
	}
}

func (p *PeerList) fromCompact(content []byte) error {
	if len(content)%compactPeerSize != 0 {
		return fmt.Errorf("%w: compact form has length %d, not a multiple of %d",
			ErrInvalidPeers, len(content), compactPeerSize)
	}

	peers := make(PeerList, 0, len(content)/compactPeerSize)
	for offset := 0; offset < len(content); offset += compactPeerSize {
		chunk := content[offset : offset+compactPeerSize]
		peers = append(peers, Peer{
			IP:   net.IPv4(chunk[0], chunk[1], chunk[2], chunk[3]),
			Port: binary.BigEndian.Uint16(chunk[4:6]),
		})
	}

	*p = peers
	return nil
}

func (p *PeerList) fromDictionaries(items []bencode.Value) error {
	peers := make(PeerList, 0, len(items))
	for index, item := range items {
		var entry struct {
			IP   string `bencode:"ip"`
			Port int64  `bencode:"port"`
			ID   []byte `bencode:"peer id"`
		}

		err := bencode.FromValue(item, &entry)
		if err != nil {
			return fmt.Errorf("peer %d: %w", index, err)
		}

		ip := net.ParseIP(entry.IP)
		if ip == nil {
			return fmt.Errorf("%w: peer %d has address %q", ErrInvalidPeers, index, entry.IP)
		}
		if entry.Port < 0 || entry.Port > 65535 {
			return fmt.Errorf("%w: peer %d has port %d", ErrInvalidPeers, index, entry.Port)
		}

		peers = append(peers, Peer{IP: ip, Port: uint16(entry.Port), ID: entry.ID})
	}

	*p = peers
	return nil
}

// MarshalBencodeValue emits the compact form when every peer has an IPv4
// address and no ID, and the dictionary form otherwise.
func (p PeerList) MarshalBencodeValue() (bencode.Value, error) {
	compact := true
	for _, peer := range p {
		if peer.IP.To4() == nil || len(peer.ID) > 0 {
			compact = false
			break
		}
	}

	if compact {
		packed := make([]byte, 0, len(p)*compactPeerSize)
		for _, peer := range p {
			packed = append(packed, peer.IP.To4()...)
			packed = binary.BigEndian.AppendUint16(packed, peer.Port)
		}
		return bencode.NewBinary(packed), nil
	}

	items := make([]bencode.Value, 0, len(p))
	for _, peer := range p {
		entries := map[string]bencode.Value{
			"ip":   bencode.NewText(peer.IP.String()),
			"port": bencode.NewInteger(int64(peer.Port)),
		}
		if len(peer.ID) > 0 {
			entries["peer id"] = bencode.NewBinary(append([]byte(nil), peer.ID...))
		}
		items = append(items, bencode.NewDictionary(entries))
	}

	return bencode.NewList(items), nil
}
