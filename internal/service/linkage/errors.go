package linkage

import "errors"

// ErrReconcile ошибка пересчета ссылок
var ErrReconcile = errors.New("linkage: reconcile failed")
