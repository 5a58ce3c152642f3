package metainfo

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeResponse_CompactPeers(t *testing.T) {
	t.Parallel()

	// 192.168.1.2:6881 and 10.0.0.1:51413, packed
	document := append([]byte("d8:completei10e10:incompletei3e8:intervali1800e5:peers12:"),
		0xc0, 0xa8, 0x01, 0x02, 0x1a, 0xe1,
		0x0a, 0x00, 0x00, 0x01, 0xc8, 0xd5,
	)
	document = append(document, 'e')

	decoded, err := DecodeResponse(document)
	require.NoError(t, err)
	require.False(t, decoded.IsFailure())
	require.Equal(t, int64(1800), decoded.Interval)
	require.Equal(t, int64(10), decoded.Complete)
	require.Equal(t, int64(3), decoded.Incomplete)

	require.Len(t, decoded.Peers, 2)
	require.Equal(t, net.ParseIP("192.168.1.2"), decoded.Peers[0].IP)
	require.Equal(t, uint16(6881), decoded.Peers[0].Port)
	require.Empty(t, decoded.Peers[0].ID)
	require.Equal(t, net.ParseIP("10.0.0.1"), decoded.Peers[1].IP)
	require.Equal(t, uint16(51413), decoded.Peers[1].Port)
}

func TestDecodeResponse_DictionaryPeers(t *testing.T) {
	t.Parallel()

	document := "d8:intervali900e5:peersl" +
		"d2:ip11:192.168.1.27:peer id3:abc4:porti6881ee" +
		"d2:ip11:2001:db8::14:porti51413ee" +
		"ee"

	decoded, err := DecodeResponse([]byte(document))
	require.NoError(t, err)

	require.Len(t, decoded.Peers, 2)
	require.Equal(t, net.ParseIP("192.168.1.2"), decoded.Peers[0].IP)
	require.Equal(t, uint16(6881), decoded.Peers[0].Port)
	require.Equal(t, []byte("abc"), decoded.Peers[0].ID)
	require.Equal(t, net.ParseIP("2001:db8::1"), decoded.Peers[1].IP)
	require.Empty(t, decoded.Peers[1].ID)
}

func TestDecodeResponse_Failure(t *testing.T) {
	t.Parallel()

	decoded, err := DecodeResponse([]byte("d14:failure reason13:access deniede"))
	require.NoError(t, err)
	require.True(t, decoded.IsFailure())
	require.Equal(t, "access denied", decoded.FailureReason)
	require.Empty(t, decoded.Peers)
}

func TestDecodeResponse_InvalidPeers(t *testing.T) {
	t.Parallel()

	// compact form with a dangling half peer
	_, err := DecodeResponse([]byte("d5:peers8:aaaaaaaae"))
	require.ErrorIs(t, err, ErrInvalidPeers)

	// port outside the 16-bit range
	_, err = DecodeResponse([]byte("d5:peersld2:ip7:1.2.3.44:porti70000eeee"))
	require.ErrorIs(t, err, ErrInvalidPeers)

	// unparseable address
	_, err = DecodeResponse([]byte("d5:peersld2:ip9:not-an-ip4:porti1eeee"))
	require.ErrorIs(t, err, ErrInvalidPeers)

	// neither string nor list
	_, err = DecodeResponse([]byte("d5:peersi3ee"))
	require.ErrorIs(t, err, ErrInvalidPeers)
}

func TestTrackerResponse_EncodeCompact(t *testing.T) {
	t.Parallel()

	response := &TrackerResponse{
		Interval: 1800,
		Peers: PeerList{
			{IP: net.ParseIP("192.168.1.2"), Port: 6881},
			{IP: net.ParseIP("10.0.0.1"), Port: 51413},
		},
	}

	encoded, err := response.Encode()
	require.NoError(t, err)

	expected := append([]byte("d8:intervali1800e5:peers12:"),
		0xc0, 0xa8, 0x01, 0x02, 0x1a, 0xe1,
		0x0a, 0x00, 0x00, 0x01, 0xc8, 0xd5,
	)
	expected = append(expected, 'e')
	require.Equal(t, expected, encoded)
}

func TestTrackerResponse_EncodeDictionaryForm(t *testing.T) {
	t.Parallel()

	// a peer ID forces the dictionary form
	response := &TrackerResponse{
		Interval: 900,
		Peers: PeerList{
			{IP: net.ParseIP("192.168.1.2"), Port: 6881, ID: []byte("abc")},
		},
	}

	encoded, err := response.Encode()
	require.NoError(t, err)

	expected := "d8:intervali900e5:peersl" +
		"d2:ip11:192.168.1.27:peer id3:abc4:porti6881ee" +
		"ee"
	require.Equal(t, []byte(expected), encoded)
}

func TestTrackerResponse_RoundTrip(t *testing.T) {
	t.Parallel()

	original := &TrackerResponse{
		Interval:    1800,
		MinInterval: 900,
		TrackerID:   "tid",
		Complete:    7,
		Incomplete:  2,
		Peers: PeerList{
			{IP: net.ParseIP("192.168.1.2"), Port: 6881},
			{IP: net.ParseIP("2001:db8::1"), Port: 51413},
		},
	}

	encoded, err := original.Encode()
	require.NoError(t, err)

	decoded, err := DecodeResponse(encoded)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}
