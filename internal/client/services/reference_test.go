package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/emezab/registro/internal/client/repositories/metadata"
	"github.com/emezab/registro/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceService_CachesFreshLists(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	remote := &fakeRemote{
		localitiesFn: func(ctx context.Context) ([]string, error) { return []string{"Centro", "Norte"}, nil },
		sectionsFn:   func(ctx context.Context) ([]string, error) { return []string{"0101", "0102"}, nil },
	}
	svc := NewReferenceService(store, remote, testLogger())

	locs, err := svc.Localities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Centro", "Norte"}, locs)

	secs, err := svc.ElectoralSections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"0101", "0102"}, secs)

	data, err := store.Metadata.Get(ctx, metadata.KeyLocalities)
	require.NoError(t, err)
	var cached []string
	require.NoError(t, json.Unmarshal(data, &cached))
	assert.Equal(t, []string{"Centro", "Norte"}, cached)
}

func TestReferenceService_ServesCacheOffline(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	calls := 0
	remote := &fakeRemote{
		localitiesFn: func(ctx context.Context) ([]string, error) {
			calls++
			if calls == 1 {
				return []string{"Centro"}, nil
			}
			return nil, errOffline
		},
	}
	svc := NewReferenceService(store, remote, testLogger())

	_, err := svc.Localities(ctx)
	require.NoError(t, err)

	locs, err := svc.Localities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Centro"}, locs)
}

func TestReferenceService_ServesCacheOnServerError(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	calls := 0
	remote := &fakeRemote{
		localitiesFn: func(ctx context.Context) ([]string, error) {
			calls++
			if calls == 1 {
				return []string{"Centro"}, nil
			}
			return nil, errServerDown
		},
	}
	svc := NewReferenceService(store, remote, testLogger())

	_, err := svc.Localities(ctx)
	require.NoError(t, err)

	locs, err := svc.Localities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Centro"}, locs)
}

func TestReferenceService_OfflineWithoutCache(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	remote := &fakeRemote{
		sectionsFn: func(ctx context.Context) ([]string, error) { return nil, errOffline },
	}
	svc := NewReferenceService(store, remote, testLogger())

	_, err := svc.ElectoralSections(ctx)
	assert.ErrorIs(t, err, common.ErrNetworkUnreachable)
}
