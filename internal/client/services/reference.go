package services

import (
	"context"
	"encoding/json"

	"github.com/emezab/registro/internal/client/client"
	"github.com/emezab/registro/internal/client/repositories/metadata"
	"github.com/emezab/registro/internal/logging"
)

// ReferenceService serves the locality and electoral-section pick lists.
// Fresh lists come from the network and are cached locally so forms keep
// working offline.
type ReferenceService interface {
	Localities(ctx context.Context) ([]string, error)
	ElectoralSections(ctx context.Context) ([]string, error)
}

type referenceService struct {
	store  *client.Store
	remote client.Client
	log    logging.Logger
}

func NewReferenceService(store *client.Store, remote client.Client, log logging.Logger) ReferenceService {
	return &referenceService{store: store, remote: remote, log: log.With("component", "reference")}
}

func (s *referenceService) Localities(ctx context.Context) ([]string, error) {
	return s.fetch(ctx, metadata.KeyLocalities, s.remote.Localities)
}

func (s *referenceService) ElectoralSections(ctx context.Context) ([]string, error) {
	return s.fetch(ctx, metadata.KeySections, s.remote.ElectoralSections)
}

func (s *referenceService) fetch(ctx context.Context, cacheKey string, load func(context.Context) ([]string, error)) ([]string, error) {
	values, err := load(ctx)
	if err == nil {
		if data, merr := json.Marshal(values); merr == nil {
			if serr := s.store.Metadata.Set(ctx, cacheKey, data); serr != nil {
				s.log.Warn(ctx, "failed to cache reference list", "key", cacheKey, "error", serr)
			}
		}
		return values, nil
	}

	if !remoteUnavailable(err) {
		return nil, err
	}

	data, cerr := s.store.Metadata.Get(ctx, cacheKey)
	if cerr != nil {
		return nil, cerr
	}
	if data == nil {
		return nil, err
	}

	var cached []string
	if jerr := json.Unmarshal(data, &cached); jerr != nil {
		return nil, jerr
	}
	s.log.Debug(ctx, "serving reference list from cache", "key", cacheKey)
	return cached, nil
}
