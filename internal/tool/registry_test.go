package tool_test

import (
	"context"
	"testing"

	"github.com/haasonsaas/nexusrun/internal/tool"
)

func TestMapRegistryExecute(t *testing.T) {
	reg := tool.NewMapRegistry()
	reg.Register("bash", func(ctx context.Context, input []byte) tool.Result {
		return tool.Result{Success: true, Output: []byte("ok: " + string(input))}
	})

	res, ok := reg.Execute(context.Background(), "bash", []byte(`{"cmd":"ls"}`))
	if !ok {
		t.Fatalf("expected bash to be found")
	}
	if string(res.Output) != `ok: {"cmd":"ls"}` {
		t.Errorf("Output = %q", res.Output)
	}
}

func TestMapRegistryMissingTool(t *testing.T) {
	reg := tool.NewMapRegistry()
	_, ok := reg.Execute(context.Background(), "missing", nil)
	if ok {
		t.Fatalf("expected missing tool to report ok=false")
	}
}

func TestFuncRegistry(t *testing.T) {
	var gotName string
	f := tool.Func(func(ctx context.Context, name string, input []byte) (tool.Result, bool) {
		gotName = name
		return tool.Result{Success: true, Output: []byte("x")}, true
	})
	res, ok := f.Execute(context.Background(), "anything", nil)
	if !ok || gotName != "anything" || string(res.Output) != "x" {
		t.Errorf("unexpected result: %+v ok=%v gotName=%q", res, ok, gotName)
	}
}
