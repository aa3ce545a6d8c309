package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/berfenger/dyson2mqtt/internal/core/domain"
	"github.com/berfenger/dyson2mqtt/internal/core/port"
	"github.com/berfenger/dyson2mqtt/pkg/dysonlink"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeLister struct {
	devices []domain.CloudDevice
	err     error
}

func (l *fakeLister) ListDevices(_ context.Context, _ domain.CloudCredentials) ([]domain.CloudDevice, error) {
	return l.devices, l.err
}

type fakeResolver struct {
	addresses map[string]string
	calls     [][]string
}

func (r *fakeResolver) ResolveAddresses(_ context.Context, serials []string) map[string]string {
	r.calls = append(r.calls, serials)
	out := map[string]string{}
	for _, serial := range serials {
		if address, ok := r.addresses[serial]; ok {
			out[serial] = address
		}
	}
	return out
}

type fakeSession struct {
	identity     dysonlink.DeviceIdentity
	connectErr   error
	mu           sync.Mutex
	connected    bool
	stopped      bool
	disconnected bool
}

func (s *fakeSession) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connectErr != nil {
		return s.connectErr
	}
	s.connected = true
	return nil
}

func (s *fakeSession) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	s.disconnected = true
	return nil
}

func (s *fakeSession) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

func (s *fakeSession) GetSerial() string {
	return s.identity.Serial
}

func (s *fakeSession) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *fakeSession) GetFeatures() dysonlink.Capabilities {
	return s.Product().Capabilities
}

func (s *fakeSession) Identity() dysonlink.DeviceIdentity {
	return s.identity
}

func (s *fakeSession) Product() dysonlink.Product {
	return dysonlink.ProductFor(s.identity.ProductType)
}

func (s *fakeSession) Snapshot() (domain.SessionStateResponse, error) {
	return domain.SessionStateResponse{Identity: s.identity, Product: s.Product(), Connected: s.IsConnected()}, nil
}

func (s *fakeSession) PID() *actor.PID {
	return nil
}

type fakeFactory struct {
	mu         sync.Mutex
	sessions   map[string]*fakeSession
	connectErr map[string]error
}

func (f *fakeFactory) New(identity dysonlink.DeviceIdentity) port.DeviceSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessions == nil {
		f.sessions = map[string]*fakeSession{}
	}
	session := &fakeSession{identity: identity, connectErr: f.connectErr[identity.Serial]}
	f.sessions[identity.Serial] = session
	return session
}

func (f *fakeFactory) session(serial string) *fakeSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[serial]
}

var credentials = &domain.CloudCredentials{Email: "user@example.com", Token: "token", Country: "US"}

func TestOrchestratorPartialSuccess(t *testing.T) {

	assert := assert.New(t)

	lister := &fakeLister{devices: []domain.CloudDevice{
		{Serial: "AAA-EU-0000001", ProductType: "438", Name: "Bedroom", Credential: "c1"},
		{Serial: "BBB-EU-0000002", ProductType: "999", Name: "Robot", Credential: "c2"},
	}}
	resolver := &fakeResolver{addresses: map[string]string{"AAA-EU-0000001": "10.0.0.5"}}
	factory := &fakeFactory{}
	o := NewOrchestrator(lister, resolver, factory.New, zap.NewNop())

	result := o.ConnectAll(context.Background(), credentials, nil)

	assert.Equal([]string{"AAA-EU-0000001"}, result.Connected)
	assert.Len(result.Unsupported, 1)
	assert.Equal("BBB-EU-0000002", result.Unsupported[0].Serial)
	assert.Equal(domain.FailureUnsupportedProduct, result.Unsupported[0].Reason)
	assert.Empty(result.Failed)
	assert.NoError(result.CloudError)

	assert.Equal([][]string{{"AAA-EU-0000001"}}, resolver.calls, "one batch resolve for supported devices")
	session, ok := o.Get("AAA-EU-0000001")
	assert.True(ok)
	assert.Equal("10.0.0.5", session.Identity().Address)
	assert.Equal("c1", session.Identity().Credential)
	assert.Nil(factory.session("BBB-EU-0000002"), "no session for unsupported devices")
}

func TestOrchestratorCloudFailureKeepsManualDevices(t *testing.T) {

	assert := assert.New(t)

	authErr := domain.NewAuthError(domain.ErrInvalidCredentials, errors.New("401"))
	factory := &fakeFactory{}
	o := NewOrchestrator(&fakeLister{err: authErr}, &fakeResolver{}, factory.New, zap.NewNop())

	manual := []dysonlink.DeviceIdentity{
		{Serial: "CCC-EU-0000003", ProductType: "527", Credential: "c3", Address: "10.0.0.7"},
	}
	result := o.ConnectAll(context.Background(), credentials, manual)

	assert.ErrorIs(result.CloudError, domain.ErrInvalidCredentials)
	assert.True(domain.IsAuthError(result.CloudError))
	assert.Equal([]string{"CCC-EU-0000003"}, result.Connected)
}

func TestOrchestratorManualNeverOverridesCloud(t *testing.T) {

	assert := assert.New(t)

	lister := &fakeLister{devices: []domain.CloudDevice{
		{Serial: "AAA-EU-0000001", ProductType: "438", Credential: "cloud"},
	}}
	resolver := &fakeResolver{addresses: map[string]string{"AAA-EU-0000001": "10.0.0.5"}}
	factory := &fakeFactory{}
	o := NewOrchestrator(lister, resolver, factory.New, zap.NewNop())

	manual := []dysonlink.DeviceIdentity{
		{Serial: "AAA-EU-0000001", ProductType: "438", Credential: "manual", Address: "10.0.0.99"},
	}
	result := o.ConnectAll(context.Background(), credentials, manual)

	assert.Equal([]string{"AAA-EU-0000001"}, result.Connected)
	session, _ := o.Get("AAA-EU-0000001")
	assert.Equal("cloud", session.Identity().Credential)
	assert.Equal("10.0.0.5", session.Identity().Address)
}

func TestOrchestratorRecordsFailures(t *testing.T) {

	assert := assert.New(t)

	refused := errors.New("connection refused")
	lister := &fakeLister{devices: []domain.CloudDevice{
		{Serial: "AAA-EU-0000001", ProductType: "438"},
		{Serial: "DDD-EU-0000004", ProductType: "358"},
		{Serial: "EEE-EU-0000005", ProductType: "475"},
	}}
	resolver := &fakeResolver{addresses: map[string]string{
		"AAA-EU-0000001": "10.0.0.5",
		"EEE-EU-0000005": "10.0.0.6",
	}}
	factory := &fakeFactory{connectErr: map[string]error{"EEE-EU-0000005": refused}}
	o := NewOrchestrator(lister, resolver, factory.New, zap.NewNop())

	result := o.ConnectAll(context.Background(), credentials, nil)

	assert.Equal([]string{"AAA-EU-0000001"}, result.Connected)
	assert.Len(result.Failed, 2)
	assert.Equal("DDD-EU-0000004", result.Failed[0].Serial)
	assert.Equal(domain.FailureNoAddress, result.Failed[0].Reason)
	assert.Equal("EEE-EU-0000005", result.Failed[1].Serial)
	assert.Equal(domain.FailureConnect, result.Failed[1].Reason)
	assert.ErrorIs(result.Failed[1].Err, refused)

	assert.True(factory.session("EEE-EU-0000005").stopped, "failed sessions are released")
	_, ok := o.Get("EEE-EU-0000005")
	assert.False(ok)
}

func TestOrchestratorListAndDisconnectAll(t *testing.T) {

	assert := assert.New(t)

	factory := &fakeFactory{}
	o := NewOrchestrator(nil, nil, factory.New, zap.NewNop())
	manual := []dysonlink.DeviceIdentity{
		{Serial: "ZZZ-EU-0000009", ProductType: "438", Address: "10.0.0.9"},
		{Serial: "AAA-EU-0000001", ProductType: "455", Address: "10.0.0.1"},
	}

	result := o.ConnectAll(context.Background(), nil, manual)
	assert.Equal([]string{"AAA-EU-0000001", "ZZZ-EU-0000009"}, result.Connected)

	sessions := o.List()
	assert.Len(sessions, 2)
	assert.Equal("AAA-EU-0000001", sessions[0].GetSerial())
	assert.Equal("ZZZ-EU-0000009", sessions[1].GetSerial())

	o.DisconnectAll()
	assert.Empty(o.List())
	for _, serial := range []string{"AAA-EU-0000001", "ZZZ-EU-0000009"} {
		session := factory.session(serial)
		assert.True(session.disconnected)
		assert.True(session.stopped)
	}
}

func TestOrchestratorCancelledContext(t *testing.T) {

	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	factory := &fakeFactory{}
	o := NewOrchestrator(nil, nil, factory.New, zap.NewNop())
	result := o.ConnectAll(ctx, nil, []dysonlink.DeviceIdentity{
		{Serial: "AAA-EU-0000001", ProductType: "438", Address: "10.0.0.1"},
	})

	assert.Empty(result.Connected)
	assert.Len(result.Failed, 1)
	assert.ErrorIs(result.Failed[0].Err, context.Canceled)
}
