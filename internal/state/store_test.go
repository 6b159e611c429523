package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/glutenfree/internal/state"
)

type counter struct {
	N     int
	Items []string
}

func cloneCounter(c counter) counter {
	c.Items = append([]string(nil), c.Items...)
	return c
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := state.New(counter{Items: []string{"a"}}, cloneCounter)

	snapshot := store.Get()
	snapshot.Items[0] = "changed"

	assert.Equal(t, "a", store.Get().Items[0], "Изменение снимка не должно менять состояние")
}

func TestStore_Subscribe(t *testing.T) {
	store := state.New(counter{}, cloneCounter)

	ch, unsubscribe := store.Subscribe()
	initial := <-ch
	assert.Equal(t, 0, initial.N)

	store.Update(func(c counter) counter { c.N = 1; return c })
	store.Update(func(c counter) counter { c.N = 2; return c })

	latest := <-ch
	assert.Equal(t, 2, latest.N, "Подписчик получает последний снимок")

	unsubscribe()
	unsubscribe()
	_, ok := <-ch
	require.False(t, ok, "После отписки канал закрыт")

	got := store.Update(func(c counter) counter { c.N = 3; return c })
	assert.Equal(t, 3, got.N)
}
