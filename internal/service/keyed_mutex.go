package service

import "sync"

// keyedMutex serializes work per key. Answer processing locks on the user ID
// so two concurrent submissions can never race on the same rating rows.
type keyedMutex struct {
	locks sync.Map // key -> *sync.Mutex
}

func (m *keyedMutex) Lock(key string) func() {
	value, _ := m.locks.LoadOrStore(key, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
