package favorites_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/glutenfree/internal/api"
	"github.com/maynagashev/glutenfree/internal/favorites"
	"github.com/maynagashev/glutenfree/models"
)

type fakeRequester struct {
	calls []api.Endpoint
	body  string
	err   map[api.Operation]error
}

func (f *fakeRequester) Do(_ context.Context, ep api.Endpoint, _, out any) error {
	f.calls = append(f.calls, ep)
	if err := f.err[ep.Operation()]; err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(f.body), out)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "Конверт favorites", body: `{"favorites":[{"id":1,"name":"A","address":"X"},{"id":2,"name":"B","address":"Y"}]}`},
		{name: "Конверт restaurants", body: `{"restaurants":[{"id":1,"name":"A","address":"X"},{"id":2,"name":"B","address":"Y"}],"total":2}`},
		{name: "Голый массив", body: `[{"id":1,"name":"A","address":"X"},{"id":2,"name":"B","address":"Y"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRequester{body: tt.body}
			ctrl := favorites.NewController(fake)

			require.NoError(t, ctrl.Load(context.Background()))
			st := ctrl.State()
			assert.Len(t, st.Restaurants, 2)
			assert.False(t, st.Loading)
			assert.True(t, ctrl.IsFavorite(2))
			assert.False(t, ctrl.IsFavorite(3))
			assert.Equal(t, "/favorites", fake.calls[0].Path())
		})
	}
}

func TestToggle(t *testing.T) {
	assert := assert.New(t)
	fake := &fakeRequester{body: `[]`}
	ctrl := favorites.NewController(fake)
	restaurant := models.Restaurant{ID: 5, Name: "Glutensiz Fırın"}

	on, err := ctrl.Toggle(context.Background(), restaurant)
	require.NoError(t, err)
	assert.True(on)
	assert.True(ctrl.IsFavorite(5))

	// Повторное добавление не дублирует запись.
	require.NoError(t, ctrl.Add(context.Background(), restaurant))
	assert.Len(ctrl.State().Restaurants, 1)

	on, err = ctrl.Toggle(context.Background(), restaurant)
	require.NoError(t, err)
	assert.False(on)
	assert.False(ctrl.IsFavorite(5))

	require.Len(t, fake.calls, 3)
	assert.Equal("POST /favorites/5", fake.calls[0].String())
	assert.Equal("DELETE /favorites/5", fake.calls[2].String())
}

func TestToggle_ErrorKeepsState(t *testing.T) {
	fake := &fakeRequester{err: map[api.Operation]error{api.OpAddFavorite: api.ErrForbidden}}
	ctrl := favorites.NewController(fake)

	on, err := ctrl.Toggle(context.Background(), models.Restaurant{ID: 7})
	require.ErrorIs(t, err, api.ErrForbidden)
	assert.False(t, on)
	assert.False(t, ctrl.IsFavorite(7))
	assert.ErrorIs(t, ctrl.State().Err, api.ErrForbidden)
}

func TestSnapshotIsolation(t *testing.T) {
	fake := &fakeRequester{body: `[{"id":1,"name":"A","address":"X"}]`}
	ctrl := favorites.NewController(fake)
	require.NoError(t, ctrl.Load(context.Background()))

	snapshot := ctrl.State()
	snapshot.Restaurants[0].Name = "changed"
	assert.Equal(t, "A", ctrl.State().Restaurants[0].Name)
}
