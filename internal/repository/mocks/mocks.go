// Package mocks provides testify doubles for the repository contracts.
package mocks

import (
	"context"

	"github.com/partflow/partflow/internal/domain/event"
	"github.com/partflow/partflow/internal/domain/projection"
	"github.com/stretchr/testify/mock"
)

// EventStore is a mock repository.EventStore.
type EventStore struct {
	mock.Mock
}

func (m *EventStore) Append(ctx context.Context, projectID string, expectedVersion int64, events []event.Event) error {
	args := m.Called(ctx, projectID, expectedVersion, events)
	return args.Error(0)
}

func (m *EventStore) LoadByProject(ctx context.Context, projectID string) ([]event.Event, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]event.Event), args.Error(1)
}

func (m *EventStore) LoadByPart(ctx context.Context, projectID, partID string) ([]event.Event, error) {
	args := m.Called(ctx, projectID, partID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]event.Event), args.Error(1)
}

func (m *EventStore) CurrentVersion(ctx context.Context, projectID string) (int64, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *EventStore) LoadSnapshot(ctx context.Context, projectID string) (*projection.Snapshot, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*projection.Snapshot), args.Error(1)
}

func (m *EventStore) Compact(ctx context.Context, projectID string, snap projection.Snapshot) error {
	args := m.Called(ctx, projectID, snap)
	return args.Error(0)
}

func (m *EventStore) HasCommand(ctx context.Context, projectID, commandID string) (bool, error) {
	args := m.Called(ctx, projectID, commandID)
	return args.Bool(0), args.Error(1)
}
