package model

import "time"

type ID string

type Port string

const (
	PortMain Port = "main"
)

type Edge struct {
	FromNode ID
	FromPort Port
	ToNode   ID
	ToPort   Port
}

type Node struct {
	ID      ID
	Type    string
	Name    string
	Timeout time.Duration // 0 = none
	Config  map[string]any
	// Credentials maps a credential type (e.g. "nautobotApi") to the name of
	// the stored credential the node should use.
	Credentials map[string]string
	// ContinueOnFail turns node errors into {"error": msg} output items.
	ContinueOnFail bool
}

type Workflow struct {
	ID    ID
	Name  string
	Nodes []Node
	Edges []Edge
}

// Node looks a node up by ID.
func (wf Workflow) Node(id ID) (Node, bool) {
	for _, n := range wf.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

type Item = map[string]any

type Items = []Item
