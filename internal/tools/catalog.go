package tools

import "authmcp/internal/session"

// DefaultEndpoint is the conventional local Chrome remote debugging address.
const DefaultEndpoint = "http://localhost:9222"

// Tool names.
const (
	ToolConnect         = "connect"
	ToolGetCredentials  = "get_credentials"
	ToolFillText        = "fill_text"
	ToolFillCredentials = "fill_credentials"
	ToolGetPageInfo     = "get_page_info"
)

// Definition describes a tool that is exposed to MCP clients.
type Definition struct {
	Name        string
	Description string
	Parameters  []Parameter
}

type ParameterType string

const (
	ParamString ParameterType = "string"
)

// Parameter is one argument of a tool. Default is applied when an optional
// argument is omitted or empty. AllowEmpty lets a required argument be "".
// Aliases are older wire names read when Name is absent; they are not
// advertised in the schema.
type Parameter struct {
	Name        string
	Type        ParameterType
	Description string
	Required    bool
	AllowEmpty  bool
	Default     string
	Aliases     []string
}

// JSONType is the JSON Schema type name of pt.
func (pt ParameterType) JSONType() string {
	return string(pt)
}

var sessionParam = Parameter{
	Name:        "sessionId",
	Type:        ParamString,
	Description: "Session ID to use",
	Default:     session.DefaultID,
}

var definitions = []Definition{
	{
		Name:        ToolConnect,
		Description: "Connect to a running Chrome instance through its remote debugging (CDP) endpoint and track it as a named session.",
		Parameters: []Parameter{
			{
				Name:        "endpoint",
				Type:        ParamString,
				Description: "Chrome DevTools Protocol URL (e.g., http://localhost:9222)",
				Default:     DefaultEndpoint,
				Aliases:     []string{"cdpUrl"},
			},
			{
				Name:        "sessionId",
				Type:        ParamString,
				Description: "Session ID for tracking this connection",
				Default:     session.DefaultID,
			},
		},
	},
	{
		Name:        ToolGetCredentials,
		Description: "Check that a credential token resolves from the environment or .env file. Only the username is reported.",
		Parameters: []Parameter{
			{
				Name:        "tokenName",
				Type:        ParamString,
				Description: "Name of the environment variable containing credentials JSON",
				Required:    true,
			},
		},
	},
	{
		Name:        ToolFillText,
		Description: "Fill text into the element matching a selector in a connected Chrome session.",
		Parameters: []Parameter{
			{Name: "selector", Type: ParamString, Description: "CSS selector for the element to fill", Required: true},
			{Name: "text", Type: ParamString, Description: "Text to fill into the element", Required: true, AllowEmpty: true},
			sessionParam,
		},
	},
	{
		Name:        ToolFillCredentials,
		Description: "Fill the username and password from a credential token into the given selectors. The password is never echoed back.",
		Parameters: []Parameter{
			{Name: "tokenName", Type: ParamString, Description: "Name of the environment variable containing credentials JSON", Required: true},
			{Name: "usernameSelector", Type: ParamString, Description: "CSS selector for username field", Required: true},
			{Name: "passwordSelector", Type: ParamString, Description: "CSS selector for password field", Required: true},
			sessionParam,
		},
	},
	{
		Name:        ToolGetPageInfo,
		Description: "Get the current URL and title of the page in a connected Chrome session.",
		Parameters:  []Parameter{sessionParam},
	},
}

// List returns a copy of all tool definitions in catalog order. Callers may
// modify the result freely.
func List() []Definition {
	out := make([]Definition, len(definitions))
	for i, def := range definitions {
		out[i] = def.clone()
	}
	return out
}

func (d Definition) clone() Definition {
	params := make([]Parameter, len(d.Parameters))
	for i, p := range d.Parameters {
		p.Aliases = append([]string(nil), p.Aliases...)
		params[i] = p
	}
	d.Parameters = params
	return d
}

// Lookup finds a tool definition by name.
func Lookup(name string) (Definition, bool) {
	for _, def := range definitions {
		if def.Name == name {
			return def.clone(), true
		}
	}
	return Definition{}, false
}

// RequiredParams returns the names of the required parameters of def.
func (d Definition) RequiredParams() []string {
	var out []string
	for _, p := range d.Parameters {
		if p.Required {
			out = append(out, p.Name)
		}
	}
	return out
}
