package service

import (
	"context"
	"errors"

	"tinylink/pkg/logging"
	"tinylink/pkg/storage"
	"tinylink/pkg/validation"
)

// Business outcomes are ordinary error values; the transport layer maps them
// to status codes.
var (
	ErrCodeInUse = errors.New("this custom code is already in use")
	ErrNotFound  = errors.New("link not found")
)

// ValidationError carries the user-facing reason for rejecting link input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

type LinkService struct {
	store  storage.LinkStore
	logger *logging.Logger
}

func NewLinkService(store storage.LinkStore, logger *logging.Logger) *LinkService {
	return &LinkService{
		store:  store,
		logger: logger,
	}
}

// CreateLink validates the input, normalizes the URL, and inserts the link.
// The datastore's unique constraint is the authoritative duplicate check; a
// violation comes back as ErrCodeInUse regardless of any earlier existence
// probe.
func (s *LinkService) CreateLink(ctx context.Context, rawURL, customCode string) (*storage.Link, error) {
	if ok, reason := validation.ValidateLinkInput(rawURL, customCode); !ok {
		return nil, &ValidationError{Reason: reason}
	}

	targetURL := validation.NormalizeURL(rawURL)

	link, err := s.store.Create(ctx, customCode, targetURL)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateCode) {
			s.logger.LogLinkOperation(ctx, "create", customCode, false)
			return nil, ErrCodeInUse
		}
		return nil, err
	}

	s.logger.LogLinkOperation(ctx, "create", customCode, true)
	return link, nil
}

// ListLinks returns every link, newest first.
func (s *LinkService) ListLinks(ctx context.Context) ([]storage.Link, error) {
	return s.store.GetAll(ctx)
}

// GetLink returns the link for code, or ErrNotFound.
func (s *LinkService) GetLink(ctx context.Context, code string) (*storage.Link, error) {
	link, err := s.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrNotFound
	}
	return link, nil
}

// CodeExists reports whether a link with the given code exists.
func (s *LinkService) CodeExists(ctx context.Context, code string) (bool, error) {
	link, err := s.store.GetByCode(ctx, code)
	if err != nil {
		return false, err
	}
	return link != nil, nil
}

// RecordClick bumps the click counter and last-clicked timestamp for code.
// Best-effort: a datastore failure is logged and swallowed so the caller's
// redirect is never blocked. An unknown code is a no-op.
func (s *LinkService) RecordClick(ctx context.Context, code string) {
	if err := s.store.IncrementClicks(ctx, code); err != nil {
		s.logger.Warn(ctx, "click increment failed", "code", code, "error", err.Error())
	}
}

// DeleteLink removes the link for code, or returns ErrNotFound if no row was
// removed. Deletion is unconditional and non-recoverable.
func (s *LinkService) DeleteLink(ctx context.Context, code string) error {
	removed, err := s.store.Delete(ctx, code)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	s.logger.LogLinkOperation(ctx, "delete", code, true)
	return nil
}
