package enrich

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeResponsePlainJSON(t *testing.T) {
	t.Parallel()

	out, err := NormalizeResponse(`{"score": 85, "interest": "hot"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 85, "interest": "hot"}`, string(out))
}

func TestNormalizeResponseRoundTrip(t *testing.T) {
	t.Parallel()

	// Code fence + curly quotes + one trailing comma must recover an object
	// structurally identical to the clean original.
	raw := "Here is the analysis you asked for:\n" +
		"```json\n" +
		"{“score”: 85, “interest”: “hot”, “offerings”: [“seo”, “ads”,],}\n" +
		"```\n" +
		"Let me know if you need anything else."

	out, err := NormalizeResponse(raw)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))

	var want map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"score": 85, "interest": "hot", "offerings": ["seo", "ads"]}`), &want))
	assert.Equal(t, want, got)
}

func TestNormalizeResponseFenceWithoutTag(t *testing.T) {
	t.Parallel()

	out, err := NormalizeResponse("```\n{\"score\": 10}\n```")
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 10}`, string(out))
}

func TestNormalizeResponseBOMAndControlPrefix(t *testing.T) {
	t.Parallel()

	out, err := NormalizeResponse("\uFEFF\x01\x02{\"score\": 5}")
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 5}`, string(out))
}

func TestNormalizeResponseSecondPassRepairs(t *testing.T) {
	t.Parallel()

	raw := `{
		// model thinks out loud here
		score: 70, /* bare key and comments */
		interest: "warm",
		pain_points: ["slow site",],
	}`
	out, err := NormalizeResponse(raw)
	require.NoError(t, err)

	var got struct {
		Score      int      `json:"score"`
		Interest   string   `json:"interest"`
		PainPoints []string `json:"pain_points"`
	}
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, 70, got.Score)
	assert.Equal(t, "warm", got.Interest)
	assert.Equal(t, []string{"slow site"}, got.PainPoints)
}

func TestNormalizeResponseKeepsStringContents(t *testing.T) {
	t.Parallel()

	// Bare key forces the repair pass; the comment stripper must not eat
	// the double slash inside the string value.
	raw := `{reasoning: "visit https://example.com/path // not a comment"}`
	out, err := NormalizeResponse(raw)
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, "visit https://example.com/path // not a comment", got["reasoning"])
}

func TestNormalizeResponseNoObject(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		"",
		"I could not produce an analysis, sorry.",
		"}{",
		"[1, 2, 3]",
	} {
		_, err := NormalizeResponse(raw)
		require.Error(t, err, "input %q", raw)
		assert.True(t, errors.Is(err, ErrMalformedResponse), "input %q", raw)
	}
}

func TestNormalizeResponseUnrepairable(t *testing.T) {
	t.Parallel()

	_, err := NormalizeResponse(`{"score": 85 "interest": }`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}
