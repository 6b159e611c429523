package devserver_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/glutenfree/internal/api"
	"github.com/maynagashev/glutenfree/internal/devserver"
	"github.com/maynagashev/glutenfree/internal/favorites"
	"github.com/maynagashev/glutenfree/internal/listing"
	"github.com/maynagashev/glutenfree/internal/location"
	"github.com/maynagashev/glutenfree/internal/reviews"
	"github.com/maynagashev/glutenfree/internal/session"
	"github.com/maynagashev/glutenfree/internal/tokenstore"
)

func newClient(t *testing.T) (*api.Client, *tokenstore.Memory) {
	t.Helper()
	server := httptest.NewServer(devserver.New(devserver.Options{JWTSecret: "test", Seed: true}).Handler())
	t.Cleanup(server.Close)
	store := tokenstore.NewMemory()
	return api.NewClient(server.URL, store, api.WithHTTPClient(server.Client())), store
}

func register(t *testing.T, ctx context.Context, sess *session.Controller) {
	t.Helper()
	require.NoError(t, sess.Register(ctx, session.RegisterInput{
		FirstName:       "Zeynep",
		LastName:        "Kaya",
		Email:           " Zeynep@Example.com ",
		Password:        "secret1",
		PasswordConfirm: "secret1",
	}))
}

func TestClientAgainstDevServer(t *testing.T) {
	ctx := context.Background()
	client, store := newClient(t)
	sess := session.NewController(client)

	register(t, ctx, sess)
	st := sess.State()
	require.True(t, st.IsAuthenticated())
	assert.Equal(t, "zeynep@example.com", st.User.Email)
	_, saved := store.Get(api.TokenKey)
	assert.True(t, saved, "Токен сохранен в хранилище")

	t.Run("Постраничная загрузка", func(t *testing.T) {
		list := listing.NewController(client, nil)
		require.NoError(t, list.Fetch(ctx, false))
		assert.Len(t, list.State().Restaurants, listing.PageSize)
		assert.True(t, list.State().CanLoadMore)

		require.NoError(t, list.Fetch(ctx, false))
		assert.Len(t, list.State().Restaurants, 25)
		assert.False(t, list.State().CanLoadMore)
		assert.Equal(t, 2, list.State().Page)

		require.NoError(t, list.Fetch(ctx, false))
		assert.Equal(t, 2, list.State().Page, "Лишних запросов нет")
	})

	t.Run("Фильтры и поиск", func(t *testing.T) {
		list := listing.NewController(client, nil)
		city := "Ankara"
		require.NoError(t, list.ApplyFilters(ctx, api.RestaurantFilters{City: &city}))
		assert.Len(t, list.State().Restaurants, 4)
		assert.False(t, list.State().CanLoadMore)

		require.NoError(t, list.Search(ctx, "sushi"))
		require.Len(t, list.State().Restaurants, 1)
		assert.Equal(t, "Tunalı Sushi", list.State().Restaurants[0].Name)
	})

	t.Run("Рядом", func(t *testing.T) {
		here := location.NewStatic(location.Coordinate{Latitude: 38.4371, Longitude: 27.1428})
		list := listing.NewController(client, here)
		require.NoError(t, list.FetchNearby(ctx))
		items := list.State().Restaurants
		require.NotEmpty(t, items)
		assert.Equal(t, "Celiac Pizza Alsancak", items[0].Name)
		for _, r := range items {
			assert.Equal(t, "İzmir", *r.City)
		}
	})

	t.Run("Подробности", func(t *testing.T) {
		list := listing.NewController(client, nil)
		detail, err := list.FetchDetail(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Glutensiz Mutfak", detail.Restaurant.Name)
		assert.NotEmpty(t, detail.Menu)

		_, err = list.FetchDetail(ctx, 404)
		assert.ErrorIs(t, err, api.ErrNotFound)
	})

	t.Run("Избранное", func(t *testing.T) {
		list := listing.NewController(client, nil)
		require.NoError(t, list.Fetch(ctx, true))
		target := list.State().Restaurants[2]

		fav := favorites.NewController(client)
		require.NoError(t, fav.Load(ctx))
		assert.Empty(t, fav.State().Restaurants)

		added, err := fav.Toggle(ctx, target)
		require.NoError(t, err)
		assert.True(t, added)

		// Повторная загрузка видит изменения на сервере.
		reloaded := favorites.NewController(client)
		require.NoError(t, reloaded.Load(ctx))
		assert.True(t, reloaded.IsFavorite(target.ID))

		added, err = fav.Toggle(ctx, target)
		require.NoError(t, err)
		assert.False(t, added)
		require.NoError(t, reloaded.Load(ctx))
		assert.False(t, reloaded.IsFavorite(target.ID))
	})

	t.Run("Отзывы", func(t *testing.T) {
		rc := reviews.NewController(client)
		require.NoError(t, rc.Load(ctx, 7))
		assert.Zero(t, rc.State().Total)

		review, err := rc.Add(ctx, reviews.Input{Rating: 4, Comment: "Köfte harika, ayrı ızgara var."})
		require.NoError(t, err)
		assert.Equal(t, "Zeynep Kaya", review.UserName)
		assert.Equal(t, 1, rc.State().Total)
		assert.InDelta(t, 4.0, rc.State().AverageRating, 0.001)

		updated, err := rc.Update(ctx, review.ID, reviews.Input{Rating: 5, Comment: "Tekrar geldim."})
		require.NoError(t, err)
		assert.InDelta(t, 5.0, updated.Rating, 0.001)

		require.NoError(t, rc.Load(ctx, 7))
		require.Len(t, rc.State().Reviews, 1)
		assert.Equal(t, "Tekrar geldim.", rc.State().Reviews[0].Comment)

		require.NoError(t, rc.Delete(ctx, review.ID))
		assert.Empty(t, rc.State().Reviews)
	})

	t.Run("Профиль", func(t *testing.T) {
		phone := "+90 555 000 0000"
		require.NoError(t, sess.UpdateProfile(ctx, session.ProfileInput{PhoneNumber: &phone}))
		require.NotNil(t, sess.State().User.PhoneNumber)
		assert.Equal(t, phone, *sess.State().User.PhoneNumber)

		require.NoError(t, sess.ChangePassword(ctx, "secret1", "secret2", "secret2"))
		require.NoError(t, sess.RefreshToken(ctx))
		require.NoError(t, sess.RefreshProfile(ctx))
		assert.True(t, sess.State().IsAuthenticated())
	})

	t.Run("Выход", func(t *testing.T) {
		token, ok := store.Get(api.TokenKey)
		require.True(t, ok)

		sess.Logout(ctx)
		assert.False(t, sess.State().IsAuthenticated())
		_, ok = store.Get(api.TokenKey)
		assert.False(t, ok)

		// Старый токен отозван сервером.
		client.SetToken(token)
		restored := session.NewController(client)
		require.Error(t, restored.Restore(ctx))
		assert.False(t, restored.State().IsAuthenticated())
		assert.False(t, client.HasToken())

		require.NoError(t, restored.Login(ctx, "zeynep@example.com", "secret2"))
		assert.True(t, restored.State().IsAuthenticated())
	})
}

func TestProtectedRoutesRequireLogin(t *testing.T) {
	ctx := context.Background()
	client, _ := newClient(t)

	list := listing.NewController(client, nil)
	err := list.Fetch(ctx, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	sess := session.NewController(client)
	err = sess.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.False(t, client.HasToken())
}
