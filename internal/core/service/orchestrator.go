package service

import (
	"context"
	"sort"
	"sync"

	"github.com/berfenger/dyson2mqtt/internal/core/domain"
	"github.com/berfenger/dyson2mqtt/internal/core/port"
	"github.com/berfenger/dyson2mqtt/internal/metrics"
	"github.com/berfenger/dyson2mqtt/pkg/dysonlink"

	"go.uber.org/zap"
)

// Orchestrator discovers devices, connects a session per supported device and
// keeps the connected sessions by serial.
type Orchestrator struct {
	Lister   port.DeviceLister
	Resolver port.AddressResolver
	Factory  port.SessionFactory
	Logger   *zap.Logger

	mu       sync.RWMutex
	sessions map[string]port.DeviceSession
}

func NewOrchestrator(lister port.DeviceLister, resolver port.AddressResolver, factory port.SessionFactory, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		Lister:   lister,
		Resolver: resolver,
		Factory:  factory,
		Logger:   logger.With(zap.String("component", "orchestrator")),
		sessions: map[string]port.DeviceSession{},
	}
}

// ConnectAll runs one discovery pass. Cloud failures and per-device failures
// are recorded in the result, never returned.
func (o *Orchestrator) ConnectAll(ctx context.Context, credentials *domain.CloudCredentials, manual []dysonlink.DeviceIdentity) domain.ConnectResult {
	result := domain.ConnectResult{}

	entries := o.cloudEntries(ctx, credentials, &result)
	entries = o.mergeManual(entries, manual)

	var candidates []domain.DeviceEntry
	for _, entry := range entries {
		if _, ok := dysonlink.LookupProduct(entry.Identity.ProductType); !ok {
			o.Logger.Warn("unsupported product type",
				zap.String("serial", entry.Identity.Serial), zap.String("product_type", entry.Identity.ProductType))
			result.Unsupported = append(result.Unsupported, domain.DeviceFailure{
				Serial: entry.Identity.Serial,
				Reason: domain.FailureUnsupportedProduct,
			})
			continue
		}
		candidates = append(candidates, entry)
	}

	candidates = o.resolve(ctx, candidates)

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, entry := range candidates {
		if entry.Identity.Address == "" {
			o.Logger.Warn("no address for device", zap.String("serial", entry.Identity.Serial))
			mu.Lock()
			result.Failed = append(result.Failed, domain.DeviceFailure{
				Serial: entry.Identity.Serial,
				Reason: domain.FailureNoAddress,
				Err:    domain.ErrNoAddress,
			})
			mu.Unlock()
			continue
		}
		wg.Add(1)
		go func(identity dysonlink.DeviceIdentity) {
			defer wg.Done()
			err := o.connect(ctx, identity)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				o.Logger.Error("device connect failed", zap.String("serial", identity.Serial), zap.Error(err))
				result.Failed = append(result.Failed, domain.DeviceFailure{
					Serial: identity.Serial,
					Reason: domain.FailureConnect,
					Err:    err,
				})
				return
			}
			result.Connected = append(result.Connected, identity.Serial)
		}(entry.Identity)
	}
	wg.Wait()

	sort.Strings(result.Connected)
	sortFailures(result.Unsupported)
	sortFailures(result.Failed)

	metrics.Discovery(len(result.Connected), len(result.Unsupported), len(result.Failed))
	o.Logger.Info("discovery finished",
		zap.Int("connected", len(result.Connected)),
		zap.Int("unsupported", len(result.Unsupported)),
		zap.Int("failed", len(result.Failed)))
	return result
}

func (o *Orchestrator) cloudEntries(ctx context.Context, credentials *domain.CloudCredentials, result *domain.ConnectResult) []domain.DeviceEntry {
	if credentials == nil || o.Lister == nil {
		return nil
	}
	devices, err := o.Lister.ListDevices(ctx, *credentials)
	if err != nil {
		if domain.IsAuthError(err) {
			o.Logger.Error("cloud discovery failed, continuing with manual devices", zap.Error(err))
		} else {
			o.Logger.Error("cloud discovery failed", zap.Error(err))
		}
		result.CloudError = err
		return nil
	}
	entries := make([]domain.DeviceEntry, 0, len(devices))
	for _, device := range devices {
		entries = append(entries, domain.DeviceEntry{Identity: device.Identity(), Source: domain.DeviceSourceCloud})
	}
	return entries
}

// mergeManual appends manual devices whose serial the cloud did not report.
func (o *Orchestrator) mergeManual(entries []domain.DeviceEntry, manual []dysonlink.DeviceIdentity) []domain.DeviceEntry {
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		seen[entry.Identity.Serial] = struct{}{}
	}
	for _, identity := range manual {
		if _, ok := seen[identity.Serial]; ok {
			o.Logger.Info("manual device ignored, serial reported by cloud", zap.String("serial", identity.Serial))
			continue
		}
		seen[identity.Serial] = struct{}{}
		entries = append(entries, domain.DeviceEntry{Identity: identity, Source: domain.DeviceSourceManual})
	}
	return entries
}

// resolve fills missing addresses with a single batch lookup.
func (o *Orchestrator) resolve(ctx context.Context, entries []domain.DeviceEntry) []domain.DeviceEntry {
	var serials []string
	for _, entry := range entries {
		if entry.Identity.Address == "" {
			serials = append(serials, entry.Identity.Serial)
		}
	}
	if len(serials) == 0 || o.Resolver == nil {
		return entries
	}
	addresses := o.Resolver.ResolveAddresses(ctx, serials)
	for i, entry := range entries {
		if entry.Identity.Address != "" {
			continue
		}
		if address, ok := addresses[entry.Identity.Serial]; ok {
			entries[i].Identity = entry.Identity.WithAddress(address)
		}
	}
	return entries
}

func (o *Orchestrator) connect(ctx context.Context, identity dysonlink.DeviceIdentity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	o.mu.RLock()
	existing, ok := o.sessions[identity.Serial]
	o.mu.RUnlock()
	if ok {
		return existing.Connect()
	}

	session := o.Factory(identity)
	if err := session.Connect(); err != nil {
		session.Stop()
		return err
	}

	o.mu.Lock()
	o.sessions[identity.Serial] = session
	o.mu.Unlock()
	o.Logger.Info("device connected",
		zap.String("serial", identity.Serial), zap.String("model", session.Product().Model))
	return nil
}

func (o *Orchestrator) Get(serial string) (port.DeviceSession, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	session, ok := o.sessions[serial]
	return session, ok
}

// List returns the sessions ordered by serial.
func (o *Orchestrator) List() []port.DeviceSession {
	o.mu.RLock()
	defer o.mu.RUnlock()
	sessions := make([]port.DeviceSession, 0, len(o.sessions))
	for _, session := range o.sessions {
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].GetSerial() < sessions[j].GetSerial()
	})
	return sessions
}

// DisconnectAll tears every session down. Errors are logged only.
func (o *Orchestrator) DisconnectAll() {
	o.mu.Lock()
	sessions := o.sessions
	o.sessions = map[string]port.DeviceSession{}
	o.mu.Unlock()

	for serial, session := range sessions {
		if err := session.Disconnect(); err != nil {
			o.Logger.Warn("device disconnect failed", zap.String("serial", serial), zap.Error(err))
		}
		session.Stop()
	}
}

func sortFailures(failures []domain.DeviceFailure) {
	sort.Slice(failures, func(i, j int) bool {
		return failures[i].Serial < failures[j].Serial
	})
}
