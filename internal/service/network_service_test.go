package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"influence-api/pkg/logger"
)

func TestResolveNetwork(t *testing.T) {
	tests := []struct {
		name       string
		supporters map[string][]string
		leaders    map[string][]string
		root       string
		want       []string
	}{
		{
			name:       "no supporters yields root only",
			supporters: map[string][]string{},
			root:       "root",
			want:       []string{"root"},
		},
		{
			name:       "supporters lead sub-groups",
			supporters: map[string][]string{"root": {"p1", "p2"}},
			leaders: map[string][]string{
				"p1": {"sub-b"},
				"p2": {"sub-a"},
			},
			root: "root",
			want: []string{"root", "sub-a", "sub-b"},
		},
		{
			name:       "root never duplicated",
			supporters: map[string][]string{"root": {"p1"}},
			leaders:    map[string][]string{"p1": {"root", "sub-a"}},
			root:       "root",
			want:       []string{"root", "sub-a"},
		},
		{
			name:       "several supporters leading one group count once",
			supporters: map[string][]string{"root": {"p1", "p2"}},
			leaders: map[string][]string{
				"p1": {"sub-a"},
				"p2": {"sub-a"},
			},
			root: "root",
			want: []string{"root", "sub-a"},
		},
		{
			name:       "only one hop is traversed",
			supporters: map[string][]string{"root": {"p1"}, "sub-a": {"p9"}},
			leaders: map[string][]string{
				"p1": {"sub-a"},
				"p9": {"sub-of-sub"},
			},
			root: "root",
			want: []string{"root", "sub-a"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRelationRepo{supporters: tt.supporters, leaders: tt.leaders}
			svc := NewNetworkService(repo, logger.NewNop())

			got, err := svc.ResolveNetwork(context.Background(), tt.root)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveNetworkDegradesOnLookupFailure(t *testing.T) {
	repo := &fakeRelationRepo{supportersErr: errors.New("store down")}
	svc := NewNetworkService(repo, logger.NewNop())

	got, err := svc.ResolveNetwork(context.Background(), "root")
	require.NoError(t, err)
	assert.Equal(t, []string{"root"}, got, "supporter lookup failure degrades to a root-only network")

	repo = &fakeRelationRepo{
		supporters: map[string][]string{"root": {"p1"}},
		leadersErr: errors.New("store down"),
	}
	svc = NewNetworkService(repo, logger.NewNop())

	got, err = svc.ResolveNetwork(context.Background(), "root")
	require.NoError(t, err)
	assert.Equal(t, []string{"root"}, got)
}
