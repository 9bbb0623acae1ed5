package tools

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTool indicates the requested tool is not in the catalog.
	ErrUnknownTool = errors.New("Unknown tool")
	// ErrInvalidArguments indicates the arguments do not match the tool's schema.
	ErrInvalidArguments = errors.New("Invalid arguments")
)

// Args is the decoded, validated argument record of one tool.
type Args interface {
	Tool() string
}

type ConnectArgs struct {
	Endpoint  string
	SessionID string
}

type GetCredentialsArgs struct {
	TokenName string
}

type FillTextArgs struct {
	Selector  string
	Text      string
	SessionID string
}

type FillCredentialsArgs struct {
	TokenName        string
	UsernameSelector string
	PasswordSelector string
	SessionID        string
}

type PageInfoArgs struct {
	SessionID string
}

func (ConnectArgs) Tool() string         { return ToolConnect }
func (GetCredentialsArgs) Tool() string  { return ToolGetCredentials }
func (FillTextArgs) Tool() string        { return ToolFillText }
func (FillCredentialsArgs) Tool() string { return ToolFillCredentials }
func (PageInfoArgs) Tool() string        { return ToolGetPageInfo }

// DecodeArgs validates raw against the catalog entry for name and returns
// the matching argument record. Keys not in the schema are ignored.
func DecodeArgs(name string, raw map[string]interface{}) (Args, error) {
	def, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	v, err := bindParams(def, raw)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrInvalidArguments, name, err)
	}

	switch name {
	case ToolConnect:
		return ConnectArgs{Endpoint: v["endpoint"], SessionID: v["sessionId"]}, nil
	case ToolGetCredentials:
		return GetCredentialsArgs{TokenName: v["tokenName"]}, nil
	case ToolFillText:
		return FillTextArgs{Selector: v["selector"], Text: v["text"], SessionID: v["sessionId"]}, nil
	case ToolFillCredentials:
		return FillCredentialsArgs{
			TokenName:        v["tokenName"],
			UsernameSelector: v["usernameSelector"],
			PasswordSelector: v["passwordSelector"],
			SessionID:        v["sessionId"],
		}, nil
	case ToolGetPageInfo:
		return PageInfoArgs{SessionID: v["sessionId"]}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
}

// bindParams checks each declared parameter and fills in defaults.
func bindParams(def Definition, raw map[string]interface{}) (map[string]string, error) {
	out := make(map[string]string, len(def.Parameters))
	for _, p := range def.Parameters {
		val, present := raw[p.Name]
		for _, alias := range p.Aliases {
			if present && val != nil {
				break
			}
			val, present = raw[alias]
		}
		if !present || val == nil {
			if p.Required {
				return nil, fmt.Errorf("missing required argument %q", p.Name)
			}
			out[p.Name] = p.Default
			continue
		}

		s, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("argument %q must be a %s, got %T", p.Name, p.Type.JSONType(), val)
		}
		if s == "" {
			switch {
			case p.Required && !p.AllowEmpty:
				return nil, fmt.Errorf("argument %q must not be empty", p.Name)
			case !p.Required:
				s = p.Default
			}
		}
		out[p.Name] = s
	}
	return out, nil
}
