package infra

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"gopkg.in/yaml.v3"

	"github.com/Tsinling0525/rivulet-nautobot/plugin"
)

var ErrCredentialNotFound = errors.New("credential not found")

// MemCredentials is an in-memory CredentialStore keyed by type and name.
type MemCredentials struct {
	mu   sync.RWMutex
	data map[string]map[string]map[string]any // type -> name -> fields
}

func NewMemCredentials() *MemCredentials {
	return &MemCredentials{data: make(map[string]map[string]map[string]any)}
}

func (m *MemCredentials) Put(credType, name string, fields map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[credType]; !ok {
		m.data[credType] = make(map[string]map[string]any)
	}
	m.data[credType][name] = copyFields(fields)
}

func (m *MemCredentials) Get(ctx context.Context, credType, name string) (map[string]any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if byName, ok := m.data[credType]; ok {
		if f, ok := byName[name]; ok {
			return copyFields(f), nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrCredentialNotFound, credType, name)
}

// Names lists the stored credential names per type.
func (m *MemCredentials) Names() map[string][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]string, len(m.data))
	for t, byName := range m.data {
		for n := range byName {
			out[t] = append(out[t], n)
		}
	}
	return out
}

func copyFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// credentialsFile is the on-disk shape of a credentials file.
//
// HCL:
//
//	credential "nautobotApi" "default" {
//	  data = {
//	    apiUrl = "https://nautobot.example.com"
//	    token  = env("NAUTOBOT_TOKEN")
//	  }
//	}
//
// YAML:
//
//	credentials:
//	  - type: nautobotApi
//	    name: default
//	    data:
//	      apiUrl: https://nautobot.example.com
//	      token: "..."
type credentialsFile struct {
	Credentials []credentialBlock `hcl:"credential,block" yaml:"credentials"`
}

type credentialBlock struct {
	Type string            `hcl:"type,label" yaml:"type"`
	Name string            `hcl:"name,label" yaml:"name"`
	Data map[string]string `hcl:"data" yaml:"data"`
}

// LoadCredentialsFile reads credentials from an HCL, JSON (HCL syntax) or
// YAML file, picked by extension. Every problem in the file is reported.
func LoadCredentialsFile(path string) (*MemCredentials, error) {
	var f credentialsFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &f); err != nil {
			return nil, fmt.Errorf("failed to parse credentials file: %w", err)
		}
	default:
		if err := hclsimple.DecodeFile(path, hclContext, &f); err != nil {
			return nil, fmt.Errorf("failed to parse credentials file: %w", err)
		}
	}

	store := NewMemCredentials()
	var result *multierror.Error
	seen := map[string]bool{}
	for i, c := range f.Credentials {
		if c.Type == "" || c.Name == "" {
			result = multierror.Append(result, fmt.Errorf("credential #%d: type and name are required", i))
			continue
		}
		key := c.Type + "/" + c.Name
		if seen[key] {
			result = multierror.Append(result, fmt.Errorf("credential %s: defined more than once", key))
			continue
		}
		seen[key] = true
		if err := checkRequiredFields(c); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		fields := make(map[string]any, len(c.Data))
		for k, v := range c.Data {
			fields[k] = v
		}
		store.Put(c.Type, c.Name, fields)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return store, nil
}

// checkRequiredFields validates a credential against its declared type, if
// the type is registered.
func checkRequiredFields(c credentialBlock) error {
	def, ok := plugin.Credential(c.Type)
	if !ok {
		return nil
	}
	var result *multierror.Error
	for _, p := range def.Properties {
		if p.Required && c.Data[p.Name] == "" {
			result = multierror.Append(result, fmt.Errorf("credential %s/%s: %s is required", c.Type, c.Name, p.Name))
		}
	}
	return result.ErrorOrNil()
}

var _ plugin.CredentialStore = (*MemCredentials)(nil)
