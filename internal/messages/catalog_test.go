package messages

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/charge-console/internal/starttx"
)

func TestDefault_CoversWorkflowKeys(t *testing.T) {
	c := Default()
	keys := []string{
		starttx.KeyStartErrorTitle, starttx.KeyStationInactive, starttx.KeyConnectorNotAvailable,
		starttx.KeyTransactionInProgress, starttx.KeyConnectorNotFound, starttx.KeyAdminChoiceTitle,
		starttx.KeyAdminChoiceMessage, starttx.KeyUserSelectTitle, starttx.KeyUserSelectButton,
		starttx.KeyConfirmTitle, starttx.KeyConfirmMessage, starttx.KeyMissingActiveTag,
		starttx.KeyStartSuccess, starttx.KeyStartError, starttx.KeyInvalidToken,
		starttx.KeyNotAuthorized, starttx.KeyUnexpectedError,
	}
	for _, k := range keys {
		for _, locale := range []string{"en", "fr"} {
			_, ok := c.Locales[locale][k]
			assert.True(t, ok, "%s missing in %s", k, locale)
		}
	}
}

func TestRender_SubstitutesParams(t *testing.T) {
	c := Default()
	r := c.Render("en", starttx.Message{
		Key:      starttx.KeyMissingActiveTag,
		Params:   map[string]string{starttx.ParamChargeBoxID: "CB-1", starttx.ParamUserName: "Doe, John"},
		Category: starttx.CategoryAction,
	})
	assert.Equal(t, "The user 'Doe, John' has no active badge to start a transaction on 'CB-1'", r.Text)
	assert.Equal(t, starttx.CategoryAction, r.Category)
}

func TestRender_MissingParamKeepsPlaceholder(t *testing.T) {
	c, err := Parse([]byte("locales:\n  en:\n    k: \"hi {{ who }} on {{chargeBoxID}}\"\n"))
	require.NoError(t, err)
	r := c.Render("", starttx.Message{Key: "k", Params: map[string]string{"chargeBoxID": "X"}})
	assert.Equal(t, "hi {{ who }} on X", r.Text)
}

func TestText_LocaleFallback(t *testing.T) {
	c := Default()
	assert.Equal(t, c.Locales["fr"][starttx.KeyStartSuccess], c.Text("fr-FR", starttx.KeyStartSuccess))
	assert.Equal(t, c.Locales["en"][starttx.KeyStartSuccess], c.Text("de", starttx.KeyStartSuccess))
	assert.Equal(t, "unknown.key", c.Text("en", "unknown.key"))

	var nilCatalog *Catalog
	assert.Equal(t, "k", nilCatalog.Text("en", "k"))
}

func TestRender_TransportRouteKept(t *testing.T) {
	m := starttx.Message{Key: starttx.KeyInvalidToken, Category: starttx.CategoryTransport, Route: starttx.RouteLogin}
	r := Default().Render("en", m)
	assert.Equal(t, starttx.RouteLogin, r.Route)
	assert.Equal(t, starttx.CategoryTransport, r.Category)
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "en", c.DefaultLocale)

	path := filepath.Join(t.TempDir(), "msgs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("defaultLocale: fr\nlocales:\n  fr:\n    a: b\n"), 0o600))
	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "b", c.Text("", "a"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
