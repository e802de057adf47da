package entity

// Roles válidos emitidos por el colaborador de identidad.
const (
	RoleSupplier = "supplier"
	RoleCompany  = "company"
	RoleConsumer = "consumer"
)

// Actor es la identidad (confiable) que ejecuta una operación: viene del token, no se persiste.
type Actor struct {
	UserID    string
	CompanyID string
	Role      string
}

// OwnerID devuelve el identificador con el que una empresa es dueña de sus RFQ.
// Tokens sin company_id usan el propio user_id.
func (a Actor) OwnerID() string {
	if a.CompanyID != "" {
		return a.CompanyID
	}
	return a.UserID
}

// IsCompany indica si el actor opera como empresa compradora.
func (a Actor) IsCompany() bool { return a.Role == RoleCompany }

// IsSupplier indica si el actor opera como proveedor.
func (a Actor) IsSupplier() bool { return a.Role == RoleSupplier }

// Owns indica si el actor (empresa) es dueño de la RFQ.
func (a Actor) Owns(r *Rfq) bool {
	return a.IsCompany() && r != nil && r.CompanyID == a.OwnerID()
}
