package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"portal_backend/internal/addresslookup"
)

var ErrStubNotFound = errors.New("stub: no address for account")

// StubLookup - сервис адресов в памяти. Ключ - account_name запроса (метка сайта).
type StubLookup struct {
	mu         sync.Mutex
	addresses  map[string]*addresslookup.Address
	dashboards map[string]json.RawMessage
	calls      []addresslookup.Request
	disabled   bool
}

var _ addresslookup.Lookup = (*StubLookup)(nil)

func NewStubLookup() *StubLookup {
	return &StubLookup{
		addresses:  make(map[string]*addresslookup.Address),
		dashboards: make(map[string]json.RawMessage),
	}
}

// NewDisabledLookup ведет себя как клиент без base_url
func NewDisabledLookup() *StubLookup {
	s := NewStubLookup()
	s.disabled = true
	return s
}

func (s *StubLookup) SetAddress(accountName string, addr *addresslookup.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addresses[accountName] = addr
}

func (s *StubLookup) SetDashboard(siteCode string, data json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dashboards[siteCode] = data
}

func (s *StubLookup) FetchAddress(_ context.Context, req addresslookup.Request) (*addresslookup.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled {
		return nil, addresslookup.ErrDisabled
	}
	s.calls = append(s.calls, req)
	addr, ok := s.addresses[req.AccountName]
	if !ok {
		return nil, ErrStubNotFound
	}
	cp := *addr
	return &cp, nil
}

func (s *StubLookup) Dashboard(_ context.Context, siteCode string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled {
		return nil, addresslookup.ErrDisabled
	}
	data, ok := s.dashboards[siteCode]
	if !ok {
		return nil, ErrStubNotFound
	}
	return data, nil
}

// Calls - копия запросов FetchAddress в порядке поступления
func (s *StubLookup) Calls() []addresslookup.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]addresslookup.Request, len(s.calls))
	copy(out, s.calls)
	return out
}
