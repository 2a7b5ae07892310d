package nautobot

import "github.com/Tsinling0525/rivulet-nautobot/plugin"

const (
	// NodeType is the registry key of the node.
	NodeType = "nautobot"
	// N8nNodeType is the type name n8n workflows use for the same node.
	N8nNodeType = "n8n-nodes-nautobot.nautobot"

	displayName = "Nautobot"
)

var description = plugin.NodeDescription{
	DisplayName: displayName,
	Name:        NodeType,
	Group:       []string{"transform"},
	Version:     1,
	Description: "Interact with Nautobot API",
	Defaults:    map[string]any{"name": "Nautobot Node"},
	Inputs:      []string{"main"},
	Outputs:     []string{"main"},
	Credentials: []plugin.CredentialRef{{Name: CredentialType, Required: true}},
	Aliases:     []string{N8nNodeType},
	Properties: []plugin.Property{
		{
			DisplayName:  "Operation",
			Name:         paramOperation,
			Type:         "options",
			NoExpression: true,
			Options: []plugin.PropertyOption{
				{
					Name:        "Get Device",
					Value:       string(OperationGetDevice),
					Description: "Get a device by ID",
					Action:      "Get a device by id",
				},
			},
			Default:     string(OperationGetDevice),
			Description: "The operation to perform.",
		},
		{
			DisplayName: "Device ID",
			Name:        paramDeviceID,
			Type:        "string",
			Default:     "",
			Required:    true,
			DisplayOptions: &plugin.DisplayOptions{
				Show: map[string][]string{paramOperation: {string(OperationGetDevice)}},
			},
			Description: "The ID of the device to retrieve.",
		},
	},
}

// Description returns the static node metadata.
func Description() plugin.NodeDescription { return description }
