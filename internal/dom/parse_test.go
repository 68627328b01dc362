package dom_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhangxinyong12/auto-fill-extension/internal/dom"
)

const fixtureHTML = `
	<html>
	<body>
		<form>
			<label for="email">Email address</label>
			<input id="email" name="email" type="email" placeholder="you@example.com">
			<input name="nickname">
			<select name="country">
				<option value="cn">China</option>
				<option>Japan</option>
			</select>
			<textarea name="bio"></textarea>
			<div class="overlay" style="position: fixed; z-index: 2000; width: 400px; height: 300px;">
				<input name="inner">
			</div>
			<input name="ghost" style="display:none">
		</form>
	</body>
	</html>
	`

func parseFixture(t *testing.T) *dom.Snapshot {
	t.Helper()
	snap, err := dom.ParseHTML(strings.NewReader(fixtureHTML))
	require.NoError(t, err)
	return snap
}

func findByName(t *testing.T, snap *dom.Snapshot, name string) *dom.Element {
	t.Helper()
	for _, el := range snap.Elements {
		if el.Name() == name {
			return el
		}
	}
	t.Fatalf("no element named %q in snapshot", name)
	return nil
}

func TestParseHTMLBuildsTree(t *testing.T) {
	snap := parseFixture(t)

	email := findByName(t, snap, "email")
	assert.Equal(t, "input", email.Tag)
	assert.Equal(t, "email", email.ID())
	assert.Equal(t, "you@example.com", email.Attr("placeholder"))
	assert.Equal(t, "#email", email.Selector)

	require.NotNil(t, email.Parent)
	assert.Equal(t, "form", email.Parent.Tag)

	nickname := findByName(t, snap, "nickname")
	assert.Contains(t, nickname.Selector, "input:nth-of-type(2)")
}

func TestParseHTMLSelectOptions(t *testing.T) {
	snap := parseFixture(t)
	country := findByName(t, snap, "country")

	require.Len(t, country.Options, 2)
	assert.Equal(t, dom.Option{Value: "cn", Text: "China"}, country.Options[0])
	// Without a value attribute the text is the submitted value.
	assert.Equal(t, dom.Option{Value: "Japan", Text: "Japan"}, country.Options[1])
}

func TestParseHTMLInlineStyle(t *testing.T) {
	snap := parseFixture(t)

	var overlay *dom.Element
	for _, el := range snap.Elements {
		if el.ClassContains("overlay") {
			overlay = el
		}
	}
	require.NotNil(t, overlay)
	assert.Equal(t, "fixed", overlay.Style.Position)
	assert.Equal(t, 2000, overlay.ZIndexValue())
	assert.Equal(t, 400.0, overlay.Box.Width)
	assert.Equal(t, 300.0, overlay.Box.Height)

	ghost := findByName(t, snap, "ghost")
	assert.True(t, ghost.Hidden())
}

func TestParseHTMLLabelText(t *testing.T) {
	snap := parseFixture(t)
	label := snap.LabelFor("email", nil)
	require.NotNil(t, label)
	assert.Equal(t, "Email address", label.Text)
}

func TestElementHelpers(t *testing.T) {
	snap := parseFixture(t)

	email := findByName(t, snap, "email")
	assert.Equal(t, "email", email.InputType())

	nickname := findByName(t, snap, "nickname")
	assert.Equal(t, "text", nickname.InputType(), "missing type attribute defaults to text")

	country := findByName(t, snap, "country")
	assert.Equal(t, "", country.InputType(), "non-inputs have no input type")
	assert.True(t, country.IsFormControl())

	inner := findByName(t, snap, "inner")
	overlay := inner.Closest(func(e *dom.Element) bool { return e.ClassContains("overlay") })
	require.NotNil(t, overlay)
	assert.True(t, inner.ContainedIn(overlay))
	assert.False(t, email.ContainedIn(overlay))
	assert.True(t, email.ContainedIn(nil), "nil root means whole document")
}

func TestControlsWithinScope(t *testing.T) {
	snap := parseFixture(t)

	all := snap.ControlsWithin(nil)
	assert.Len(t, all, 6)

	var overlay *dom.Element
	for _, el := range snap.Elements {
		if el.ClassContains("overlay") {
			overlay = el
		}
	}
	scoped := snap.ControlsWithin(overlay)
	require.Len(t, scoped, 1)
	assert.Equal(t, "inner", scoped[0].Name())
}

func TestZIndexValueAuto(t *testing.T) {
	el := &dom.Element{Style: dom.Computed{ZIndex: "auto"}}
	assert.Equal(t, 0, el.ZIndexValue())
	el.Style.ZIndex = "15"
	assert.Equal(t, 15, el.ZIndexValue())
	el.Style.ZIndex = "garbage"
	assert.Equal(t, 0, el.ZIndexValue())
}
