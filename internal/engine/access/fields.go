package access

// Field изменяемое поле бронирования
type Field string

const (
	FieldStartDate        Field = "start_date"
	FieldEndDate          Field = "end_date"
	FieldPickupAt         Field = "pickup_at"
	FieldReturnAt         Field = "return_at"
	FieldPlaceIn          Field = "place_in"
	FieldPlaceOut         Field = "place_out"
	FieldInsurance        Field = "insurance"
	FieldChildSeats       Field = "child_seats"
	FieldAdditionalDriver Field = "additional_driver"
	FieldPrice            Field = "price"
	FieldCustomerName     Field = "customer_name"
	FieldCustomerPhone    Field = "customer_phone"
	FieldCustomerEmail    Field = "customer_email"
	FieldNotes            Field = "notes"
)

// Allowed можно ли менять поле при данных возможностях.
// Возврат в пределах того же дня относится к EditReturn; перенос возврата на другой
// день меняет EndDate и требует EditDates.
func Allowed(caps Capabilities, f Field) bool {
	switch f {
	case FieldStartDate, FieldEndDate, FieldPickupAt:
		return caps.EditDates
	case FieldReturnAt, FieldPlaceOut:
		return caps.EditReturn
	case FieldInsurance:
		return caps.EditInsurance
	case FieldPrice:
		return caps.EditPrice
	default:
		return caps.Edit
	}
}

// CheckPatch поля патча, которые вызывающий менять не может
func CheckPatch(caps Capabilities, fields []Field) []Field {
	denied := make([]Field, 0)
	seen := make(map[Field]struct{}, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		if !Allowed(caps, f) {
			denied = append(denied, f)
		}
	}
	return denied
}

// Strings имена полей
func Strings(fields []Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, string(f))
	}
	return out
}
