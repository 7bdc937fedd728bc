package usecase

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/xavierca1/leadhub/internal/entity"
)

// memoryLeadStore é um LeadStore em memória para os testes do pipeline.
type memoryLeadStore struct {
	mu      sync.Mutex
	byEmail map[string]*entity.Lead
	calls   []string

	failCreate map[string]error // email -> erro devolvido por Create
}

func newMemoryLeadStore(existing ...*entity.Lead) *memoryLeadStore {
	s := &memoryLeadStore{byEmail: map[string]*entity.Lead{}, failCreate: map[string]error{}}
	for _, l := range existing {
		s.byEmail[entity.NormalizeEmail(l.Email)] = l
	}
	return s
}

func (s *memoryLeadStore) FindByEmails(_ context.Context, emails []string) ([]entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "FindByEmails")

	var out []entity.Lead
	for _, e := range emails {
		if l, ok := s.byEmail[entity.NormalizeEmail(e)]; ok {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (s *memoryLeadStore) FindByEmail(_ context.Context, email string) (*entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "FindByEmail:"+email)

	l, ok := s.byEmail[entity.NormalizeEmail(email)]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *memoryLeadStore) Create(_ context.Context, lead *entity.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "Create:"+lead.Email)

	if err, ok := s.failCreate[lead.Email]; ok {
		return err
	}
	if _, ok := s.byEmail[lead.Email]; ok {
		return entity.ErrEmailAlreadyExists
	}
	cp := *lead
	s.byEmail[lead.Email] = &cp
	return nil
}

func (s *memoryLeadStore) Update(_ context.Context, lead *entity.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "Update:"+lead.Email)

	cp := *lead
	s.byEmail[lead.Email] = &cp
	return nil
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishLeadEvent(ctx context.Context, event entity.LeadEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockHistoryStore struct {
	mock.Mock
}

func (m *MockHistoryStore) Append(ctx context.Context, entry entity.UploadHistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryStore) List(ctx context.Context, limit int) ([]entity.UploadHistoryEntry, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]entity.UploadHistoryEntry), args.Error(1)
}

func (m *MockHistoryStore) Stats(ctx context.Context) (entity.UploadStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(entity.UploadStats), args.Error(1)
}

func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &rows[i]))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func defaultMapping() ColumnMapping {
	return MapColumns([]string{"name", "email", "phone", "organization", "stage", "value"})
}
