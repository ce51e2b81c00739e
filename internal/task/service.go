package task

import (
	"context"
	"errors"
	"log"
)

const (
	opList   = "list"
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// Service implements the List, Create, Update and Delete operations over
// an injected Store.
type Service struct {
	store Store
}

// NewService creates a Service backed by store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns all tasks, newest first.
func (s *Service) List(ctx context.Context) ([]Task, error) {
	tasks, err := s.store.SelectAll(ctx)
	if err != nil {
		log.Printf("[task] Failed to retrieve tasks: %v", err)
		return nil, infrastructureError(opList, err)
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}

// Create validates in and inserts a new, incomplete task. A validation
// failure never reaches the store.
func (s *Service) Create(ctx context.Context, in CreateInput) (Task, error) {
	in, err := in.Validate()
	if err != nil {
		log.Printf("[task] Task creation rejected: %v", err)
		return Task{}, err
	}

	created, err := s.store.Insert(ctx, in.Text)
	if err != nil {
		log.Printf("[task] Task creation failed: %v", err)
		return Task{}, infrastructureError(opCreate, err)
	}
	return created, nil
}

// Update sets the completion flag of an existing task.
func (s *Service) Update(ctx context.Context, in UpdateInput) (Task, error) {
	updated, err := s.store.UpdateByID(ctx, in.ID, in.Completed)
	if errors.Is(err, ErrNotFound) {
		log.Printf("[task] Task update failed: task with id %d not found", in.ID)
		return Task{}, notFoundError(opUpdate, in.ID)
	}
	if err != nil {
		log.Printf("[task] Task update failed for id %d: %v", in.ID, err)
		return Task{}, infrastructureError(opUpdate, err)
	}
	return updated, nil
}

// Delete removes a task. Deleting a missing id succeeds.
func (s *Service) Delete(ctx context.Context, in DeleteInput) error {
	if err := s.store.DeleteByID(ctx, in.ID); err != nil {
		log.Printf("[task] Task deletion failed for id %d: %v", in.ID, err)
		return infrastructureError(opDelete, err)
	}
	return nil
}

// Ping reports whether the underlying store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return infrastructureError("ping", err)
	}
	return nil
}
