// Package keylock: мьютексы по ключу.
// Используется как точка сериализации записи по одному ресурсу (автомобилю):
// пока ключ захвачен, другие писатели того же ключа ждут.
package keylock

import (
	"sort"
	"sync"
)

type entry struct {
	mu   sync.Mutex
	refs int
}

// Locker набор мьютексов, создаваемых по требованию
type Locker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

// New создает Locker
func New() *Locker {
	return &Locker{locks: make(map[string]*entry)}
}

// Lock захватывает все ключи в порядке сортировки (без дедлоков при пересечении наборов)
// и возвращает функцию освобождения.
func (l *Locker) Lock(keys ...string) func() {
	uniq := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	sort.Strings(uniq)

	acquired := make([]*entry, 0, len(uniq))
	for _, k := range uniq {
		e := l.acquire(k)
		e.mu.Lock()
		acquired = append(acquired, e)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(uniq) - 1; i >= 0; i-- {
				acquired[i].mu.Unlock()
				l.release(uniq[i])
			}
		})
	}
}

func (l *Locker) acquire(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{}
		l.locks[key] = e
	}
	e.refs++
	return e
}

func (l *Locker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.locks[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

// Size количество захваченных или ожидаемых ключей
func (l *Locker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
