package plugin

// NodeDescription is the static metadata a node type exposes to editors and
// the /nodes endpoint. It carries no runtime behavior.
type NodeDescription struct {
	DisplayName string          `json:"displayName"`
	Name        string          `json:"name"`
	Group       []string        `json:"group,omitempty"`
	Version     int             `json:"version"`
	Description string          `json:"description,omitempty"`
	Defaults    map[string]any  `json:"defaults,omitempty"`
	Inputs      []string        `json:"inputs"`
	Outputs     []string        `json:"outputs"`
	Credentials []CredentialRef `json:"credentials,omitempty"`
	Properties  []Property      `json:"properties"`
	Aliases     []string        `json:"aliases,omitempty"` // foreign type names, e.g. n8n package types
}

type CredentialRef struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

type Property struct {
	DisplayName    string           `json:"displayName"`
	Name           string           `json:"name"`
	Type           string           `json:"type"`
	Default        any              `json:"default"`
	Required       bool             `json:"required,omitempty"`
	Password       bool             `json:"password,omitempty"`
	Placeholder    string           `json:"placeholder,omitempty"`
	Description    string           `json:"description,omitempty"`
	NoExpression   bool             `json:"noDataExpression,omitempty"`
	Options        []PropertyOption `json:"options,omitempty"`
	DisplayOptions *DisplayOptions  `json:"displayOptions,omitempty"`
}

type PropertyOption struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Action      string `json:"action,omitempty"`
}

// DisplayOptions.Show maps a property name to the values that make the
// owning property visible.
type DisplayOptions struct {
	Show map[string][]string `json:"show,omitempty"`
}

// CredentialType declares the fields a stored credential must provide.
type CredentialType struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"displayName"`
	Properties  []Property `json:"properties"`
}

// Visible reports whether p is shown given the current parameter values.
func (p Property) Visible(params map[string]any) bool {
	if p.DisplayOptions == nil {
		return true
	}
	for name, allowed := range p.DisplayOptions.Show {
		v, _ := params[name].(string)
		found := false
		for _, a := range allowed {
			if a == v {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
