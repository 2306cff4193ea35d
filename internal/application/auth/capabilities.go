package auth

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jhoicas/restaurante-api/internal/domain"
)

//go:embed permissions.yaml
var defaultPermissions []byte

// CapabilityTable permisos por (rol, acción), consultados en un único punto por el guard.
type CapabilityTable struct {
	roles map[string][]string
}

type capabilityFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// LoadCapabilities lee la tabla desde path, o la embebida si path está vacío.
func LoadCapabilities(path string) (*CapabilityTable, error) {
	if path == "" {
		return ParseCapabilities(defaultPermissions)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: leer %s: %v", domain.ErrConfig, path, err)
	}
	return ParseCapabilities(data)
}

// ParseCapabilities interpreta un documento YAML con la clave roles.
func ParseCapabilities(data []byte) (*CapabilityTable, error) {
	var f capabilityFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: permisos: %v", domain.ErrConfig, err)
	}
	if len(f.Roles) == 0 {
		return nil, fmt.Errorf("%w: permisos: no hay roles definidos", domain.ErrConfig)
	}
	return &CapabilityTable{roles: f.Roles}, nil
}

// Allows indica si role puede ejecutar action ("recurso:verbo").
func (t *CapabilityTable) Allows(role, action string) bool {
	resource, _, _ := strings.Cut(action, ":")
	for _, a := range t.roles[role] {
		if a == "*" || a == action || a == resource+":*" {
			return true
		}
	}
	return false
}

// Actions devuelve las acciones declaradas para role.
func (t *CapabilityTable) Actions(role string) []string {
	return append([]string(nil), t.roles[role]...)
}
