// Package state хранит снимок состояния контроллера и рассылает его подписчикам.
package state

import "sync"

// Store хранит состояние типа S и меняет его только через Update.
// Подписчик получает последний снимок: если он не успел прочитать предыдущий,
// старый снимок заменяется новым.
type Store[S any] struct {
	mu      sync.Mutex
	current S
	clone   func(S) S
	subs    map[int]chan S
	nextID  int
}

// New создает хранилище. clone копирует изменяемые части снимка (срезы, указатели);
// nil означает, что S копируется присваиванием.
func New[S any](initial S, clone func(S) S) *Store[S] {
	if clone == nil {
		clone = func(s S) S { return s }
	}
	return &Store[S]{current: initial, clone: clone, subs: make(map[int]chan S)}
}

// Get возвращает копию текущего состояния.
func (s *Store[S]) Get() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clone(s.current)
}

// Update применяет fn к текущему состоянию, оповещает подписчиков и возвращает новый снимок.
func (s *Store[S]) Update(fn func(S) S) S {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = fn(s.current)
	for _, ch := range s.subs {
		publish(ch, s.clone(s.current))
	}
	return s.clone(s.current)
}

// Subscribe возвращает канал снимков и функцию отписки. Канал сразу содержит текущее состояние.
func (s *Store[S]) Subscribe() (<-chan S, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan S, 1)
	ch <- s.clone(s.current)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func publish[S any](ch chan S, snapshot S) {
	select {
	case ch <- snapshot:
		return
	default:
	}
	// Буфер занят устаревшим снимком.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snapshot:
	default:
	}
}
