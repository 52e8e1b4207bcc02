package catalog

// Kind identifies one of the entity kinds held by the catalogue.
type Kind int

const (
	// KindUnknown is the zero value and never maps to a table.
	KindUnknown Kind = iota
	KindBook
	KindCustomer
	KindDiscount
	KindPenalty
	KindOrder
	KindUser
)

// Entity is the closed set of entity kinds a DataModel can cache.
type Entity interface {
	Book | Customer | Discount | Penalty | Order | User
}

// KindOf resolves the Kind of the type parameter.
func KindOf[T Entity]() Kind {
	var zero T

	switch any(zero).(type) {
	case Book:
		return KindBook
	case Customer:
		return KindCustomer
	case Discount:
		return KindDiscount
	case Penalty:
		return KindPenalty
	case Order:
		return KindOrder
	case User:
		return KindUser
	default:
		return KindUnknown
	}
}

// TableName returns the backing table of the kind, or "" for KindUnknown.
func (k Kind) TableName() string {
	switch k {
	case KindBook:
		return "books"
	case KindCustomer:
		return "customers"
	case KindDiscount:
		return "discounts"
	case KindPenalty:
		return "penalties"
	case KindOrder:
		return "orders"
	case KindUser:
		return "users"
	default:
		return ""
	}
}

// IsSideCached reports whether entities of this kind are mirrored into the SideCache.
func (k Kind) IsSideCached() bool {
	return k == KindBook || k == KindDiscount || k == KindPenalty
}

// String provides a string representation of Kind for logging and metrics labels.
func (k Kind) String() string {
	switch k {
	case KindBook:
		return "book"
	case KindCustomer:
		return "customer"
	case KindDiscount:
		return "discount"
	case KindPenalty:
		return "penalty"
	case KindOrder:
		return "order"
	case KindUser:
		return "user"
	default:
		return "unknown"
	}
}
