package domain

// ContextType distinguishes the two operating areas of the product.
type ContextType string

const (
	ContextTypeBusiness ContextType = "business"
	ContextTypeCustomer ContextType = "customer"
)

// BusinessRole enumerates team roles inside a business.
type BusinessRole string

const (
	BusinessRoleAdmin    BusinessRole = "admin"
	BusinessRoleOperator BusinessRole = "operator"
)

// AppContext is one way an identity can operate the system: a business
// membership (with role) or a customer account. The context set is always
// derived from storage, never trusted from the client.
type AppContext struct {
	Type ContextType  `json:"type"`
	ID   string       `json:"id"`
	Name string       `json:"name,omitempty"`
	Role BusinessRole `json:"role,omitempty"`
}

// Equal reports whether two contexts refer to the same role surface.
func (c AppContext) Equal(other AppContext) bool {
	return c.Type == other.Type && c.ID == other.ID
}
