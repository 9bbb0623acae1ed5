package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestPrintCatalogText(t *testing.T) {
	var out bytes.Buffer
	if err := printCatalog(&out, false); err != nil {
		t.Fatalf("printCatalog: %v", err)
	}
	text := out.String()

	for _, want := range []string{
		"connect\n",
		"- endpoint (string, default http://localhost:9222)",
		"- sessionId (string, default default)",
		"- tokenName (string, required)",
		"fill_credentials\n",
		"get_page_info\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("catalog output missing %q:\n%s", want, text)
		}
	}
}

func TestPrintCatalogJSON(t *testing.T) {
	var out bytes.Buffer
	if err := printCatalog(&out, true); err != nil {
		t.Fatalf("printCatalog: %v", err)
	}

	var decoded []struct {
		Name        string `json:"name"`
		InputSchema struct {
			Required []string `json:"required"`
		} `json:"inputSchema"`
	}
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("decode catalog json: %v\n%s", err, out.String())
	}

	names := make([]string, 0, len(decoded))
	for _, d := range decoded {
		names = append(names, d.Name)
	}
	want := "connect,get_credentials,fill_text,fill_credentials,get_page_info"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("tool order = %s, want %s", got, want)
	}
	if got := strings.Join(decoded[3].InputSchema.Required, ","); got != "tokenName,usernameSelector,passwordSelector" {
		t.Fatalf("fill_credentials required = %s", got)
	}
}
