package models

// Built-in role names. Roles are reference data; these three are synced on startup.
const (
	AdminRoleName      = "Administrador"
	SupervisorRoleName = "Supervisor"
	OperatorRoleName   = "Operador"
)

// Role groups the permissions granted to every user that references it.
type Role struct {
	ID          uint     `json:"id_rol" gorm:"column:id_rol;primaryKey"`
	Name        string   `json:"nombre" gorm:"column:nombre;uniqueIndex;not null"`
	Description *string  `json:"descripcion" gorm:"column:descripcion"`
	Permissions []string `json:"permisos" gorm:"column:permisos;serializer:json"`
}

func (Role) TableName() string {
	return "rol"
}

func (r *Role) HasPermission(permission string) bool {
	for _, p := range r.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}
