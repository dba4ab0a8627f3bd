package access

// Помощники для вызывающих, которым нужен ответ да/нет. Каждый только читает
// Evaluate и своих правил не добавляет, кроме разделения confirm/unconfirm.

// CanEdit можно ли редактировать бронирование
func CanEdit(ctx Context) bool {
	return Evaluate(ctx).Edit
}

// CanDelete можно ли удалить бронирование
func CanDelete(ctx Context) bool {
	return Evaluate(ctx).Delete
}

// CanSeeContact видны ли контакты клиента
func CanSeeContact(ctx Context) bool {
	return Evaluate(ctx).SeePII
}

// CanConfirm клиентские бронирования подтверждаются только при Confirm,
// внутренние любым оператором с правом Edit.
func CanConfirm(ctx Context) bool {
	caps := Evaluate(ctx)
	if ctx.ClientReservation {
		return caps.Confirm
	}
	return caps.Confirm || caps.Edit
}

// CanUnconfirm снятие подтверждения с внутреннего бронирования разрешено всегда,
// с клиентского только при Confirm.
func CanUnconfirm(ctx Context) bool {
	if !ctx.ClientReservation {
		return true
	}
	return Evaluate(ctx).Confirm
}
