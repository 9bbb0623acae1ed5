package roddriver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/js"
	"github.com/go-rod/rod/lib/proto"
)

// scriptedCDP answers the DevTools calls the driver makes with canned
// replies and records what was sent. It stands in for the websocket client.
type scriptedCDP struct {
	targets  []*proto.TargetTargetInfo
	contexts []proto.BrowserBrowserContextID
	title    string
	// absent selectors never match, so element lookups keep waiting
	absent map[string]bool
	// fail makes the named method return an error
	fail map[string]error

	events chan *cdp.Event

	mu      sync.Mutex
	methods []string
	steps   []string
}

func newScriptedCDP() *scriptedCDP {
	return &scriptedCDP{events: make(chan *cdp.Event)}
}

func (s *scriptedCDP) Event() <-chan *cdp.Event { return s.events }

type callArg struct {
	ObjectID string      `json:"objectId"`
	Value    interface{} `json:"value"`
}

type callParams struct {
	TargetID            string    `json:"targetId"`
	ObjectID            string    `json:"objectId"`
	FunctionDeclaration string    `json:"functionDeclaration"`
	Arguments           []callArg `json:"arguments"`
	Text                string    `json:"text"`
}

func (s *scriptedCDP) Call(ctx context.Context, sessionID, method string, params interface{}) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var p callParams
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.methods = append(s.methods, method)
	s.mu.Unlock()

	if err := s.fail[method]; err != nil {
		return nil, err
	}

	switch method {
	case "Target.getBrowserContexts":
		return json.Marshal(proto.TargetGetBrowserContextsResult{BrowserContextIDs: s.contexts})
	case "Target.getTargets":
		return json.Marshal(proto.TargetGetTargetsResult{TargetInfos: s.targets})
	case "Target.getTargetInfo":
		for _, info := range s.targets {
			if string(info.TargetID) == p.TargetID {
				return json.Marshal(proto.TargetGetTargetInfoResult{TargetInfo: info})
			}
		}
		return nil, fmt.Errorf("no target %s", p.TargetID)
	case "Target.attachToTarget":
		return json.Marshal(proto.TargetAttachToTargetResult{SessionID: proto.TargetSessionID("session-" + p.TargetID)})
	case "Runtime.evaluate":
		return remote(`{"type":"object","objectId":"window"}`), nil
	case "DOM.getContentQuads":
		return []byte(`{"quads":[[0,0,100,0,100,20,0,20]]}`), nil
	case "Input.insertText":
		s.step("insert:" + p.Text)
		return []byte(`{}`), nil
	case "Runtime.callFunctionOn":
		return s.callFunction(p), nil
	}
	return []byte(`{}`), nil
}

// callFunction recognises rod's helper installs and helper invocations by
// their function declarations and arguments.
func (s *scriptedCDP) callFunction(p callParams) []byte {
	decl := p.FunctionDeclaration
	switch {
	case decl == js.Functions.Definition:
		return remote(`{"type":"object","objectId":"functions"}`)
	case decl == "() => window":
		return remote(`{"type":"object","objectId":"window"}`)
	case strings.HasPrefix(decl, "functions => {"):
		name := strings.TrimPrefix(decl, "functions => { const f = functions.")
		name = name[:strings.Index(name, " ")]
		return remote(fmt.Sprintf(`{"type":"function","objectId":"helper:%s"}`, name))
	case strings.Contains(decl, "document.title"):
		title, _ := json.Marshal(s.title)
		return remote(fmt.Sprintf(`{"type":"string","value":%s}`, title))
	case strings.Contains(decl, "this.focus()"):
		s.step("focus:" + p.ObjectID)
		return remote(`{"type":"undefined"}`)
	case strings.Contains(decl, "requestAnimationFrame"):
		return remote(`{"type":"undefined"}`)
	}

	if len(p.Arguments) > 0 && strings.HasPrefix(p.Arguments[0].ObjectID, "helper:") {
		helper := strings.TrimPrefix(p.Arguments[0].ObjectID, "helper:")
		switch helper {
		case "element":
			selector := fmt.Sprint(p.Arguments[1].Value)
			if s.absent[selector] {
				return remote(`{"type":"object","subtype":"null"}`)
			}
			return remote(fmt.Sprintf(`{"type":"object","subtype":"node","objectId":"node:%s"}`, selector))
		case "selectAllText", "inputEvent":
			s.step(helper + ":" + p.ObjectID)
			return remote(`{"type":"undefined"}`)
		}
	}
	return remote(`{"type":"boolean","value":true}`)
}

func (s *scriptedCDP) step(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, v)
}

func (s *scriptedCDP) Steps() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.steps...)
}

func (s *scriptedCDP) Methods() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.methods...)
}

func remote(obj string) []byte {
	return []byte(`{"result":` + obj + `}`)
}

// attachScripted connects a driver Browser to s.
func attachScripted(ctx context.Context, s *scriptedCDP) (*Browser, error) {
	return attach(rod.New().Client(s).Context(ctx))
}
