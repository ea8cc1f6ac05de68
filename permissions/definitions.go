package permissions

// Permission keys checked by the HTTP layer.
const (
	GeoManage     = "geo.manage"
	UserManage    = "user.manage"
	PollingManage = "polling.manage"
	FrontManage   = "front.manage"
	ActaCreate    = "acta.create"
	ActaView      = "acta.view"
	ResultsExport = "results.export"
)

// PermissionDefinition describes a single, specific permission
type PermissionDefinition struct {
	Key         string `json:"key"`         // unique key, e.g., "acta.create"
	Name        string `json:"name"`        // friendly name shown in the admin UI
	Description string `json:"description"` // what the permission allows
}

// PermissionGroupDefinition groups related permissions
type PermissionGroupDefinition struct {
	Key         string                 `json:"key"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Permissions []PermissionDefinition `json:"permissions"`
}

// DefinedPermissionGroups holds all statically defined permission groups and their permissions
var DefinedPermissionGroups = []PermissionGroupDefinition{
	{
		Key:         "parametros",
		Name:        "Parámetros electorales",
		Description: "Catálogos que estructuran la elección.",
		Permissions: []PermissionDefinition{
			{
				Key:         GeoManage,
				Name:        "Gestionar geografía",
				Description: "Crear, editar y eliminar registros geográficos y sus tipos.",
			},
			{
				Key:         PollingManage,
				Name:        "Gestionar recintos y mesas",
				Description: "Crear, editar y eliminar recintos electorales y mesas.",
			},
			{
				Key:         FrontManage,
				Name:        "Gestionar frentes",
				Description: "Crear, editar y eliminar frentes políticos.",
			},
		},
	},
	{
		Key:         "usuarios",
		Name:        "Usuarios",
		Description: "Administración de cuentas.",
		Permissions: []PermissionDefinition{
			{
				Key:         UserManage,
				Name:        "Gestionar usuarios",
				Description: "Listar, crear, editar y eliminar usuarios.",
			},
		},
	},
	{
		Key:         "transcripcion",
		Name:        "Transcripción",
		Description: "Registro y consulta de actas.",
		Permissions: []PermissionDefinition{
			{
				Key:         ActaCreate,
				Name:        "Registrar actas",
				Description: "Transcribir actas y adjuntar su respaldo.",
			},
			{
				Key:         ActaView,
				Name:        "Consultar actas",
				Description: "Ver actas registradas y sus respaldos.",
			},
			{
				Key:         ResultsExport,
				Name:        "Exportar resultados",
				Description: "Descargar la planilla de resultados en vivo.",
			},
		},
	},
}

// DefaultRolePermissions is the permission set a built-in role is created with.
// The administrator role is handled separately and always receives every key.
var DefaultRolePermissions = map[string][]string{
	"Supervisor": {ActaCreate, ActaView, ResultsExport},
	"Operador":   {ActaCreate},
}

var (
	allPermissionKeysMap map[string]PermissionDefinition
	allPermissionKeys    []string
)

func init() {
	allPermissionKeysMap = make(map[string]PermissionDefinition)
	for _, group := range DefinedPermissionGroups {
		for _, perm := range group.Permissions {
			allPermissionKeysMap[perm.Key] = perm
			allPermissionKeys = append(allPermissionKeys, perm.Key)
		}
	}
}

// GetAllPermissionKeys returns a slice of all unique permission string keys
func GetAllPermissionKeys() []string {
	keys := make([]string, len(allPermissionKeys))
	copy(keys, allPermissionKeys)
	return keys
}

// IsValidPermissionKey checks if a given permission key is defined
func IsValidPermissionKey(key string) bool {
	_, ok := allPermissionKeysMap[key]
	return ok
}

// GetPermissionDefinition retrieves a specific permission definition by its key.
func GetPermissionDefinition(key string) (PermissionDefinition, bool) {
	def, ok := allPermissionKeysMap[key]
	return def, ok
}
