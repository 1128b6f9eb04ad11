package entry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kalita/internal/record"
)

func TestBadgeColorsMapping(t *testing.T) {
	colors := map[string]string{"active": "success", "inactive": "danger", "pending": "warning"}
	e := Badge("status").Colors(colors)

	assert.Equal(t, colors, props(t, e)["colors"])
}

func TestBadgeColorFromState(t *testing.T) {
	e := Badge("status").Colors(map[string]string{"active": "success"}).State("active")

	assert.Equal(t, "success", props(t, e)["color"])
}

func TestBadgeFallsBackToGray(t *testing.T) {
	e := Badge("status").Colors(map[string]string{"active": "success"}).State("unknown")

	assert.Equal(t, "gray", props(t, e)["color"])
}

func TestBadgeFallsBackToLiteralColor(t *testing.T) {
	e := Badge("status").
		Colors(map[string]string{"active": "success"}).
		Color("primary").
		State("unknown")

	assert.Equal(t, "primary", props(t, e)["color"])
}

func TestBadgeIconFromState(t *testing.T) {
	e := Badge("status").
		Icons(map[string]string{"active": "heroicon-o-check"}).
		State("active")

	p := props(t, e)
	assert.Equal(t, "heroicon-o-check", p["icon"])

	e.State("other")
	assert.Nil(t, props(t, e)["icon"])
}

func TestBadgeEmptyMaps(t *testing.T) {
	p := props(t, Badge("status").Colors(nil).Icons(nil).State("x"))

	assert.Equal(t, map[string]string{}, p["colors"])
	assert.Equal(t, map[string]string{}, p["icons"])
	assert.Equal(t, "gray", p["color"])
}

func TestBadgeBool(t *testing.T) {
	e := Badge("active").Bool("", "")

	assert.Equal(t, map[string]string{
		DefaultBadgeTrueIcon:  "success",
		DefaultBadgeFalseIcon: "danger",
	}, e.GetColors())
	assert.Equal(t, map[string]string{
		DefaultBadgeTrueIcon:  DefaultBadgeTrueIcon,
		DefaultBadgeFalseIcon: DefaultBadgeFalseIcon,
	}, e.GetIcons())

	p := props(t, e.State(true))
	assert.Equal(t, DefaultBadgeTrueIcon, p["state"])
	assert.Equal(t, "success", p["color"])
	assert.Equal(t, DefaultBadgeTrueIcon, p["icon"])

	p = props(t, e.State(false))
	assert.Equal(t, DefaultBadgeFalseIcon, p["state"])
	assert.Equal(t, "danger", p["color"])
}

func TestBadgeBoolCustomIcons(t *testing.T) {
	e := Badge("verified").Bool("heroicon-o-shield-check", "heroicon-o-shield-exclamation")

	got := format(t, e, true)
	assert.Equal(t, "heroicon-o-shield-check", got)
	assert.Equal(t, "success", e.GetColors()["heroicon-o-shield-check"])
}

func TestBadgeBoolClobbersEarlierMaps(t *testing.T) {
	e := Badge("active").
		Colors(map[string]string{"x": "primary"}).
		Bool("", "")

	assert.NotContains(t, e.GetColors(), "x")
}

func TestBadgeColorsAfterBoolOverride(t *testing.T) {
	e := Badge("active").
		Bool("", "").
		Colors(map[string]string{DefaultBadgeTrueIcon: "info"}).
		State(true)

	assert.Equal(t, "info", props(t, e)["color"])
}

func TestBadgeFormatsBeforeMapping(t *testing.T) {
	e := Badge("status").
		FormatStateUsing(upper).
		Colors(map[string]string{"ACTIVE": "success"}).
		State("active")

	p := props(t, e)
	assert.Equal(t, "ACTIVE", p["state"])
	assert.Equal(t, "success", p["color"])
}

func TestBadgeFilledStateIsNotFormattedTwice(t *testing.T) {
	e := Badge("active").Bool("", "")

	require.NoError(t, e.Fill(record.FromMap(map[string]any{"active": false})))

	p := props(t, e)
	assert.Equal(t, DefaultBadgeFalseIcon, p["state"])
	assert.Equal(t, "danger", p["color"])
}

func TestBadgeNumericStateKey(t *testing.T) {
	e := Badge("level").Colors(map[string]string{"3": "danger"}).State(3)

	assert.Equal(t, "danger", props(t, e)["color"])
}
