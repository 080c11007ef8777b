package feature_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/gabeda-io/gabeda/internal/feature"
)

func noop(args []cty.Value) (cty.Value, error) {
	return cty.NilVal, nil
}

func TestStore_Register(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		s := feature.NewStore()
		err := s.Register(&feature.Definition{Name: "a", Dependencies: []string{"price"}, Fn: noop})
		require.NoError(t, err)

		def, err := s.Get("a")
		require.NoError(t, err)
		assert.Equal(t, feature.KindFilter, def.Kind, "kind is normalized at registration")
		assert.True(t, s.Has("a"))
		assert.Equal(t, 1, s.Len())
	})

	t.Run("error cases", func(t *testing.T) {
		s := feature.NewStore()

		err := s.Register(&feature.Definition{Fn: noop})
		assert.ErrorContains(t, err, "must have a name")

		err = s.Register(&feature.Definition{Name: "a"})
		assert.ErrorContains(t, err, "no callable")

		require.NoError(t, s.Register(&feature.Definition{Name: "a", Fn: noop}))
		err = s.Register(&feature.Definition{Name: "a", Fn: noop})
		var dup *feature.DuplicateFeatureError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "a", dup.Name)
	})

	t.Run("contradictory declaration is rejected", func(t *testing.T) {
		s := feature.NewStore()
		err := s.Register(&feature.Definition{
			Name:             "bad",
			Kind:             feature.KindFilter,
			RequiresGroupKey: true,
			Fn:               noop,
		})
		var amb *feature.AmbiguityError
		require.ErrorAs(t, err, &amb)
		assert.False(t, s.Has("bad"))
	})
}

func TestStore_Get_Unknown(t *testing.T) {
	s := feature.NewStore()
	_, err := s.Get("missing")
	var unknown *feature.UnknownFeatureError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "missing", unknown.Name)
}

func TestStore_List_RegistrationOrder(t *testing.T) {
	s := feature.NewStore()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, s.Register(&feature.Definition{Name: name, Fn: noop}))
	}

	var got []string
	for _, def := range s.List() {
		got = append(got, def.Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, got)
}

func TestTypeDetector_Classify(t *testing.T) {
	testCases := []struct {
		name    string
		def     *feature.Definition
		want    feature.Kind
		wantErr bool
	}{
		{
			name: "explicit filter wins",
			def:  &feature.Definition{Name: "f", Kind: feature.KindFilter},
			want: feature.KindFilter,
		},
		{
			name: "explicit attribute wins",
			def:  &feature.Definition{Name: "a", Kind: feature.KindAttribute},
			want: feature.KindAttribute,
		},
		{
			name: "group key implies attribute",
			def:  &feature.Definition{Name: "a", RequiresGroupKey: true},
			want: feature.KindAttribute,
		},
		{
			name: "default is filter",
			def:  &feature.Definition{Name: "f"},
			want: feature.KindFilter,
		},
		{
			name:    "filter with group key is contradictory",
			def:     &feature.Definition{Name: "x", Kind: feature.KindFilter, RequiresGroupKey: true},
			wantErr: true,
		},
	}

	detector := feature.TypeDetector{}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			kind, err := detector.Classify(tc.def)
			if tc.wantErr {
				var amb *feature.AmbiguityError
				require.ErrorAs(t, err, &amb)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, kind)
		})
	}
}

func TestTypeDetector_RequiresAggregation(t *testing.T) {
	detector := feature.TypeDetector{}
	assert.True(t, detector.RequiresAggregation(&feature.Definition{RequiresGroupKey: true}))
	assert.False(t, detector.RequiresAggregation(&feature.Definition{Kind: feature.KindAttribute}))
}
