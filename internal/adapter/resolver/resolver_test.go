package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeDNS struct {
	records map[string][]string
	calls   []string
}

func (d *fakeDNS) lookup(_ context.Context, host string) ([]string, error) {
	d.calls = append(d.calls, host)
	if addresses, ok := d.records[host]; ok {
		return addresses, nil
	}
	return nil, errors.New("no such host")
}

func TestResolveAddresses(t *testing.T) {

	assert := assert.New(t)

	dns := &fakeDNS{records: map[string][]string{
		"fan.lan":         {"fe80::1", "192.168.1.30"},
		"NK6-EU-MHA0000C": {"192.168.1.40"},
	}}
	r := NewResolverWithLookup(map[string]string{
		"nk6-eu-mha0000a": "192.168.1.20",
		"NK6-EU-MHA0000B": "fan.lan",
	}, dns.lookup, zap.NewNop())

	addresses := r.ResolveAddresses(context.Background(), []string{
		"NK6-EU-MHA0000A", "NK6-EU-MHA0000B", "NK6-EU-MHA0000C", "NK6-EU-MHA0000D",
	})

	assert.Equal(map[string]string{
		"NK6-EU-MHA0000A": "192.168.1.20",
		"NK6-EU-MHA0000B": "192.168.1.30",
		"NK6-EU-MHA0000C": "192.168.1.40",
	}, addresses, "unresolved serials are absent")
	assert.Equal([]string{"fan.lan", "NK6-EU-MHA0000C", "NK6-EU-MHA0000D"}, dns.calls, "literal addresses skip lookup")
}

func TestResolveCachesLookups(t *testing.T) {

	assert := assert.New(t)

	dns := &fakeDNS{records: map[string][]string{"NK6-EU-MHA0000C": {"192.168.1.40"}}}
	r := NewResolverWithLookup(nil, dns.lookup, zap.NewNop())

	address, ok := r.Resolve(context.Background(), "NK6-EU-MHA0000C")
	assert.True(ok)
	assert.Equal("192.168.1.40", address)

	dns.records["NK6-EU-MHA0000C"] = []string{"192.168.1.99"}
	address, ok = r.Resolve(context.Background(), "NK6-EU-MHA0000C")
	assert.True(ok)
	assert.Equal("192.168.1.40", address, "cached entries are kept")
	assert.Len(dns.calls, 1)

	// failures are not cached
	_, ok = r.Resolve(context.Background(), "NK6-EU-MHA0000D")
	assert.False(ok)
	_, ok = r.Resolve(context.Background(), "NK6-EU-MHA0000D")
	assert.False(ok)
	assert.Len(dns.calls, 3)
}
