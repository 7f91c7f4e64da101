package pipeline

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Store is a bounded in-memory generation registry with TTL eviction.
type Store struct {
	lru *expirable.LRU[string, *Generation]
}

func NewStore(size int, ttl time.Duration) *Store {
	if size <= 0 {
		size = 256
	}
	return &Store{lru: expirable.NewLRU[string, *Generation](size, nil, ttl)}
}

func (s *Store) Put(g *Generation) {
	s.lru.Add(g.ID, g)
}

func (s *Store) Get(id string) (*Generation, bool) {
	return s.lru.Get(id)
}

// Len reports the number of live generations.
func (s *Store) Len() int {
	return s.lru.Len()
}
