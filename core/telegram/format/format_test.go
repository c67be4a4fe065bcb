package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeMarkdown(t *testing.T) {
	v1, err := EscapeMarkdown("a_b*c`d[e]", MarkdownV1)
	require.NoError(t, err)
	assert.Equal(t, "a\\_b\\*c\\`d\\[e]", v1)

	v2, err := EscapeMarkdown("1.5 (x)!", MarkdownV2)
	require.NoError(t, err)
	assert.Equal(t, "1\\.5 \\(x\\)\\!", v2)

	_, err = EscapeMarkdown("x", 3)
	assert.Error(t, err)

	assert.Equal(t, "buy\\_milk", MD("buy_milk"))
}

func TestDateOr(t *testing.T) {
	assert.Equal(t, "not set", DateOr(nil, "not set"))
	d := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "09.03.2025", DateOr(&d, "not set"))

	name := "Home"
	assert.Equal(t, "Home", StringOr(&name, "No list"))
	assert.Equal(t, "No list", StringOr(nil, "No list"))
}
