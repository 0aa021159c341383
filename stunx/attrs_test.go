package stunx_test

import (
	"net"
	"testing"

	"github.com/pion/stun/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threatexpert/natprobe/stunx"
)

func TestChangeRequestEncoding(t *testing.T) {
	cases := []struct {
		cr   stunx.ChangeRequest
		want byte
	}{
		{stunx.ChangeRequest{}, 0x00},
		{stunx.ChangeRequest{ChangePort: true}, 0x02},
		{stunx.ChangeRequest{ChangeIP: true}, 0x04},
		{stunx.ChangeRequest{ChangeIP: true, ChangePort: true}, 0x06},
	}

	for _, c := range cases {
		m, err := stun.Build(stun.TransactionID, stun.BindingRequest, c.cr)
		require.NoError(t, err)

		v, err := m.Get(stun.AttrChangeRequest)
		require.NoError(t, err)
		require.Len(t, v, 4)
		assert.Equal(t, []byte{0, 0, 0, c.want}, v)

		var decoded stunx.ChangeRequest
		require.NoError(t, decoded.GetFrom(m))
		assert.Equal(t, c.cr, decoded)
	}
}

func TestChangeRequestGetFromMissing(t *testing.T) {
	m, err := stun.Build(stun.TransactionID, stun.BindingRequest)
	require.NoError(t, err)

	var cr stunx.ChangeRequest
	assert.Error(t, cr.GetFrom(m))
}

func TestAddrExtraction(t *testing.T) {
	mapped := &net.UDPAddr{IP: net.IPv4(198, 51, 100, 7), Port: 49152}
	other := &net.UDPAddr{IP: net.IPv4(203, 0, 113, 11), Port: 3479}

	m, err := stun.Build(stun.TransactionID, stun.BindingSuccess,
		&stun.XORMappedAddress{IP: mapped.IP, Port: mapped.Port},
		&stun.OtherAddress{IP: other.IP, Port: other.Port},
	)
	require.NoError(t, err)

	got, ok := stunx.XORMappedAddr(m)
	require.True(t, ok)
	assert.True(t, got.IP.Equal(mapped.IP))
	assert.Equal(t, mapped.Port, got.Port)

	gotOther, ok := stunx.OtherAddr(m)
	require.True(t, ok)
	assert.True(t, gotOther.IP.Equal(other.IP))
	assert.Equal(t, other.Port, gotOther.Port)
}

func TestAddrExtractionAbsent(t *testing.T) {
	m, err := stun.Build(stun.TransactionID, stun.BindingSuccess)
	require.NoError(t, err)

	_, ok := stunx.XORMappedAddr(m)
	assert.False(t, ok)
	_, ok = stunx.OtherAddr(m)
	assert.False(t, ok)
	_, ok = stunx.MappedAddr(m)
	assert.False(t, ok)
}

func TestMappedAddrFallbackOnly(t *testing.T) {
	// Legacy servers send MAPPED-ADDRESS only; the extractor sees it but
	// XORMappedAddr must not.
	mapped := &net.UDPAddr{IP: net.IPv4(198, 51, 100, 7), Port: 49152}
	m, err := stun.Build(stun.TransactionID, stun.BindingSuccess,
		&stun.MappedAddress{IP: mapped.IP, Port: mapped.Port},
	)
	require.NoError(t, err)

	_, ok := stunx.XORMappedAddr(m)
	assert.False(t, ok)

	got, ok := stunx.MappedAddr(m)
	require.True(t, ok)
	assert.Equal(t, mapped.Port, got.Port)
}
