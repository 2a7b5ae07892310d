package nautobot

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/mitchellh/mapstructure"

	"github.com/Tsinling0525/rivulet-nautobot/plugin"
)

// CredentialType is the name nodes use to reference Nautobot credentials.
const CredentialType = "nautobotApi"

// Credentials holds what a stored nautobotApi credential resolves to.
type Credentials struct {
	APIURL string `mapstructure:"apiUrl"`
	Token  string `mapstructure:"token"`
}

func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.APIURL, validation.Required, is.URL),
		validation.Field(&c.Token, validation.Required),
	)
}

// DecodeCredentials turns raw credential data into Credentials.
func DecodeCredentials(data map[string]any) (Credentials, error) {
	var c Credentials
	if err := mapstructure.Decode(data, &c); err != nil {
		return Credentials{}, fmt.Errorf("decode %s credentials: %w", CredentialType, err)
	}
	if err := c.Validate(); err != nil {
		return Credentials{}, fmt.Errorf("invalid %s credentials: %w", CredentialType, err)
	}
	return c, nil
}

var credentialDefinition = plugin.CredentialType{
	Name:        CredentialType,
	DisplayName: "Nautobot API",
	Properties: []plugin.Property{
		{
			DisplayName: "Nautobot URL",
			Name:        "apiUrl",
			Type:        "string",
			Default:     "",
			Placeholder: "https://nautobot.example.com",
			Description: "The base URL of the Nautobot instance (e.g., https://nautobot.example.com)",
			Required:    true,
		},
		{
			DisplayName: "API Token",
			Name:        "token",
			Type:        "string",
			Password:    true,
			Default:     "",
			Description: "The API token for Nautobot",
			Required:    true,
		},
	},
}
