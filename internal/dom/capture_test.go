package dom_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhangxinyong12/auto-fill-extension/internal/dom"
)

// fakeEvaluator returns a canned payload for any script.
type fakeEvaluator struct {
	payload string
	err     error
}

func (f fakeEvaluator) ExecuteScript(_ context.Context, _ string) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.payload), nil
}

const capturePayload = `[
	{"tag":"html","parent":-1,"attrs":{},"style":{"position":"static","display":"block","visibility":"visible","zIndex":"auto"},"rect":{"width":1280,"height":720},"selector":"html:nth-of-type(1)"},
	{"tag":"body","parent":0,"attrs":{},"style":{"position":"static","display":"block","visibility":"visible","zIndex":"auto"},"rect":{"width":1280,"height":720},"selector":"html:nth-of-type(1) > body:nth-of-type(1)"},
	{"tag":"label","parent":1,"attrs":{"for":"email"},"style":{"position":"static","display":"block","visibility":"visible","zIndex":"auto"},"rect":{"width":100,"height":20},"selector":"html:nth-of-type(1) > body:nth-of-type(1) > label:nth-of-type(1)","text":"Email"},
	{"tag":"input","parent":1,"attrs":{"id":"email","name":"email"},"style":{"position":"static","display":"inline-block","visibility":"visible","zIndex":"auto"},"rect":{"width":200,"height":30},"selector":"#email"},
	{"tag":"select","parent":1,"attrs":{"name":"country"},"style":{"position":"static","display":"inline-block","visibility":"visible","zIndex":"auto"},"rect":{"width":200,"height":30},"selector":"html:nth-of-type(1) > body:nth-of-type(1) > select:nth-of-type(1)","options":[{"value":"cn","text":"China"}]}
]`

func TestCaptureDecodesSnapshot(t *testing.T) {
	snap, err := dom.Capture(context.Background(), fakeEvaluator{payload: capturePayload})
	require.NoError(t, err)
	require.Len(t, snap.Elements, 5)

	input := snap.Elements[3]
	assert.Equal(t, "input", input.Tag)
	assert.Equal(t, "email", input.Name())
	assert.Equal(t, "#email", input.Selector)
	require.NotNil(t, input.Parent)
	assert.Equal(t, "body", input.Parent.Tag)

	label := snap.LabelFor("email", nil)
	require.NotNil(t, label)
	assert.Equal(t, "Email", label.Text)

	sel := snap.Elements[4]
	require.Len(t, sel.Options, 1)
	assert.Equal(t, "cn", sel.Options[0].Value)
}

func TestCaptureParentLinks(t *testing.T) {
	snap, err := dom.Capture(context.Background(), fakeEvaluator{payload: capturePayload})
	require.NoError(t, err)

	body := snap.Elements[1]
	assert.Len(t, body.Children, 3)
	assert.True(t, snap.Elements[3].ContainedIn(body))
	assert.True(t, snap.Elements[3].ContainedIn(snap.Elements[0]))
}

func TestCaptureErrors(t *testing.T) {
	_, err := dom.Capture(context.Background(), fakeEvaluator{err: errors.New("tab crashed")})
	assert.ErrorContains(t, err, "capture snapshot")

	_, err = dom.Capture(context.Background(), fakeEvaluator{payload: "not json"})
	assert.ErrorContains(t, err, "decode snapshot")
}
