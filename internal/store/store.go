// Package store holds the donor roster, blood requests and per-group inventory,
// and is the only path through which fulfilling a request may change stock.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bloodflow/m/domain"
	"bloodflow/m/internal/kv"
	"bloodflow/m/internal/seed"
)

// Keys under which each collection is persisted.
const (
	DonorsKey    = "bloodflow_donors"
	RequestsKey  = "bloodflow_requests"
	InventoryKey = "bloodflow_inventory"
)

// BloodDataStore is safe for concurrent use; every operation holds a single
// mutex so the stock check and decrement of a fulfillment cannot interleave.
type BloodDataStore struct {
	mu     sync.Mutex
	kv     kv.Store
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	seedDonors       []domain.Donor
	initialInventory []domain.InventoryItem

	ready     bool
	donors    []domain.Donor
	requests  []domain.BloodRequest
	inventory []domain.InventoryItem
}

type Option func(*BloodDataStore)

func WithLogger(logger *zap.Logger) Option {
	return func(s *BloodDataStore) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *BloodDataStore) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *BloodDataStore) { s.newID = newID }
}

// WithSeedDonors replaces the canonical roster used on first load and on reset.
func WithSeedDonors(donors []domain.Donor) Option {
	return func(s *BloodDataStore) { s.seedDonors = cloneDonors(donors) }
}

// WithInitialInventory sets the stock used on first load and on reset.
// Without it a random stock is drawn once per store.
func WithInitialInventory(items []domain.InventoryItem) Option {
	return func(s *BloodDataStore) { s.initialInventory = cloneInventory(items) }
}

// New returns an uninitialized store backed by backend. Call Load before mutating it.
func New(backend kv.Store, opts ...Option) *BloodDataStore {
	s := &BloodDataStore{
		kv:     backend,
		logger: zap.NewNop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.seedDonors == nil {
		s.seedDonors = seed.Donors()
	}
	if s.initialInventory == nil {
		s.initialInventory = seed.RandomInventory(rand.New(rand.NewSource(time.Now().UnixNano())))
	} else {
		s.initialInventory = s.normalizeInventory(s.initialInventory)
	}
	return s
}

// Load reads the persisted collections and moves the store to the ready state.
// A missing or unreadable record falls back to its default collection.
func (s *BloodDataStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var donors []domain.Donor
	if s.read(ctx, DonorsKey, &donors) {
		s.donors = nonNilDonors(donors)
	} else {
		s.donors = cloneDonors(s.seedDonors)
	}

	var requests []domain.BloodRequest
	if s.read(ctx, RequestsKey, &requests) {
		s.requests = nonNilRequests(requests)
	} else {
		s.requests = []domain.BloodRequest{}
	}

	var inventory []domain.InventoryItem
	if s.read(ctx, InventoryKey, &inventory) {
		s.inventory = s.normalizeInventory(inventory)
	} else {
		s.inventory = cloneInventory(s.initialInventory)
	}

	s.ready = true
	s.logger.Info("blood data loaded",
		zap.Int("donors", len(s.donors)),
		zap.Int("requests", len(s.requests)),
	)
}

// Ready reports whether Load has completed.
func (s *BloodDataStore) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *BloodDataStore) Donors() []domain.Donor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return []domain.Donor{}
	}
	return cloneDonors(s.donors)
}

func (s *BloodDataStore) Requests() []domain.BloodRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return []domain.BloodRequest{}
	}
	return cloneRequests(s.requests)
}

// Request looks a request up by id.
func (s *BloodDataStore) Request(id string) (domain.BloodRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return domain.BloodRequest{}, false
	}
	if i := s.requestIndex(id); i >= 0 {
		return s.requests[i], true
	}
	return domain.BloodRequest{}, false
}

// Inventory returns one row per blood group in canonical order; all zero before Load.
func (s *BloodDataStore) Inventory() []domain.InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return seed.FixedInventory(0)
	}
	return cloneInventory(s.inventory)
}

// Snapshot copies all three collections under one lock.
func (s *BloodDataStore) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return domain.Snapshot{
			Donors:    []domain.Donor{},
			Requests:  []domain.BloodRequest{},
			Inventory: seed.FixedInventory(0),
		}
	}
	return domain.Snapshot{
		Donors:    cloneDonors(s.donors),
		Requests:  cloneRequests(s.requests),
		Inventory: cloneInventory(s.inventory),
	}
}

// AddDonor appends a donor whose last donation is today. Input is expected to be validated.
func (s *BloodDataStore) AddDonor(ctx context.Context, name, contact string, group domain.BloodGroup) (domain.Donor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return domain.Donor{}, ErrNotReady
	}

	donor := domain.Donor{
		ID:           s.newID(),
		Name:         name,
		BloodGroup:   group,
		Contact:      contact,
		LastDonation: s.today(),
	}
	s.donors = append(s.donors, donor)
	s.persist(ctx, DonorsKey, s.donors)
	return donor, nil
}

// RemoveDonor deletes the donor with the given id; an unknown id is a no-op.
func (s *BloodDataStore) RemoveDonor(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ErrNotReady
	}

	kept := s.donors[:0]
	for _, d := range s.donors {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	s.donors = kept
	s.persist(ctx, DonorsKey, s.donors)
	return nil
}

// AddRequest records a pending request. Stock is only checked at fulfillment.
func (s *BloodDataStore) AddRequest(ctx context.Context, patientName string, group domain.BloodGroup, units int64) (domain.BloodRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return domain.BloodRequest{}, ErrNotReady
	}

	req := domain.BloodRequest{
		ID:          s.newID(),
		PatientName: patientName,
		BloodGroup:  group,
		Units:       units,
		Status:      domain.RequestPending,
		RequestDate: s.today(),
	}
	s.requests = append(s.requests, req)
	s.persist(ctx, RequestsKey, s.requests)
	return req, nil
}

// UpdateRequestStatus moves a request to status.
// Fulfilling a pending request deducts its units from the matching inventory in the
// same critical section, or fails with *InsufficientStockError and changes nothing.
// Fulfilling an already fulfilled request is a no-op, and fulfilled is terminal.
// An unknown id is a no-op.
func (s *BloodDataStore) UpdateRequestStatus(ctx context.Context, id string, status domain.RequestStatus) error {
	if status != domain.RequestPending && status != domain.RequestFulfilled {
		return ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ErrNotReady
	}

	i := s.requestIndex(id)
	if i < 0 {
		return nil
	}
	req := &s.requests[i]

	if status == domain.RequestPending {
		if req.Status == domain.RequestFulfilled {
			return ErrFulfilledIsTerminal
		}
		req.Status = domain.RequestPending
		s.persist(ctx, RequestsKey, s.requests)
		return nil
	}

	if req.Status == domain.RequestFulfilled {
		return nil
	}

	j := s.inventoryIndex(req.BloodGroup)
	var available int64
	if j >= 0 {
		available = s.inventory[j].Units
	}
	if j < 0 || available < req.Units {
		s.logger.Info("fulfillment rejected",
			zap.String("request_id", req.ID),
			zap.String("blood_group", req.BloodGroup.String()),
			zap.Int64("requested", req.Units),
			zap.Int64("available", available),
		)
		return &InsufficientStockError{Group: req.BloodGroup, Requested: req.Units, Available: available}
	}

	s.inventory[j].Units -= req.Units
	req.Status = domain.RequestFulfilled
	s.persist(ctx, RequestsKey, s.requests)
	s.persist(ctx, InventoryKey, s.inventory)
	return nil
}

// UpdateInventory overrides the stock of a group, clamping negative values to zero.
func (s *BloodDataStore) UpdateInventory(ctx context.Context, group domain.BloodGroup, units int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ErrNotReady
	}

	j := s.inventoryIndex(group)
	if j < 0 {
		return nil
	}
	if units < 0 {
		units = 0
	}
	s.inventory[j].Units = units
	s.persist(ctx, InventoryKey, s.inventory)
	return nil
}

// ResetData restores the seed roster and starting inventory and drops every request.
func (s *BloodDataStore) ResetData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ErrNotReady
	}

	s.donors = cloneDonors(s.seedDonors)
	s.requests = []domain.BloodRequest{}
	s.inventory = cloneInventory(s.initialInventory)
	s.persist(ctx, DonorsKey, s.donors)
	s.persist(ctx, RequestsKey, s.requests)
	s.persist(ctx, InventoryKey, s.inventory)
	s.logger.Info("blood data reset")
	return nil
}

func (s *BloodDataStore) today() string {
	return s.now().Format(domain.DateLayout)
}

func (s *BloodDataStore) requestIndex(id string) int {
	for i := range s.requests {
		if s.requests[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *BloodDataStore) inventoryIndex(group domain.BloodGroup) int {
	for i := range s.inventory {
		if s.inventory[i].BloodGroup == group {
			return i
		}
	}
	return -1
}

// read decodes key into dest and reports whether a usable value was found.
func (s *BloodDataStore) read(ctx context.Context, key string, dest any) bool {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		s.logger.Debug("no persisted record, using defaults", zap.String("key", key))
		return false
	}
	if err != nil {
		s.logger.Error("unable to read persisted record", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		s.logger.Error("corrupted persisted record, using defaults", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// persist writes the full collection. Failures are logged and never returned;
// the in-memory state keeps the mutation.
func (s *BloodDataStore) persist(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("unable to encode record", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, key, string(payload)); err != nil {
		s.logger.Error("unable to persist record", zap.String("key", key), zap.Error(err))
	}
}

// normalizeInventory returns exactly one row per group in canonical order.
func (s *BloodDataStore) normalizeInventory(items []domain.InventoryItem) []domain.InventoryItem {
	units := make(map[domain.BloodGroup]int64, len(items))
	adjusted := len(items) != len(domain.BloodGroups)
	for _, item := range items {
		if !item.BloodGroup.Valid() {
			adjusted = true
			continue
		}
		if _, dup := units[item.BloodGroup]; dup {
			adjusted = true
			continue
		}
		if item.Units < 0 {
			adjusted = true
			item.Units = 0
		}
		units[item.BloodGroup] = item.Units
	}
	if adjusted {
		s.logger.Warn("inventory normalized to one row per blood group", zap.Int("rows", len(items)))
	}

	out := make([]domain.InventoryItem, len(domain.BloodGroups))
	for i, g := range domain.BloodGroups {
		out[i] = domain.InventoryItem{BloodGroup: g, Units: units[g]}
	}
	return out
}

func cloneDonors(in []domain.Donor) []domain.Donor {
	out := make([]domain.Donor, len(in))
	copy(out, in)
	return out
}

func cloneRequests(in []domain.BloodRequest) []domain.BloodRequest {
	out := make([]domain.BloodRequest, len(in))
	copy(out, in)
	return out
}

func cloneInventory(in []domain.InventoryItem) []domain.InventoryItem {
	out := make([]domain.InventoryItem, len(in))
	copy(out, in)
	return out
}

func nonNilDonors(in []domain.Donor) []domain.Donor {
	if in == nil {
		return []domain.Donor{}
	}
	return in
}

func nonNilRequests(in []domain.BloodRequest) []domain.BloodRequest {
	if in == nil {
		return []domain.BloodRequest{}
	}
	return in
}
