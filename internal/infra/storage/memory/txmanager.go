package memory

import "context"

type txKey struct{}

// TxManager транзакции над Store: один писатель за раз, при ошибке состояние
// откатывается к снимку на начало транзакции.
type TxManager struct {
	s *Store
}

// NewTxManager создает менеджер транзакций для хранилища
func NewTxManager(s *Store) *TxManager {
	return &TxManager{s: s}
}

// Do выполняет fn в транзакции
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

// DoSerializable выполняет fn в транзакции; транзакции в памяти всегда последовательны
func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

// DoReadOnly выполняет fn в транзакции
func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.s.txMu.Lock()
	defer m.s.txMu.Unlock()

	m.s.mu.Lock()
	snapshot := m.s.state.clone()
	m.s.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			m.restore(snapshot)
			panic(p)
		}
		if err != nil {
			m.restore(snapshot)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, struct{}{}))
}

func (m *TxManager) restore(snapshot *state) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.state = snapshot
}
