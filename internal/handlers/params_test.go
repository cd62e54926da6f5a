package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(target string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestWorkspaceParam(t *testing.T) {
	id, err := workspaceParam(newContext("/"))
	require.NoError(t, err)
	assert.Nil(t, id)

	id, err = workspaceParam(newContext("/?workspace_id=12"))
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int64(12), *id)

	for _, target := range []string{"/?workspace_id=abc", "/?workspace_id=0", "/?workspace_id=-4"} {
		_, err = workspaceParam(newContext(target))
		assert.Error(t, err, target)
	}
}

func TestIDParam(t *testing.T) {
	c := newContext("/")
	c.SetParamNames("id")
	c.SetParamValues("9")

	id, err := idParam(c)
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)

	c.SetParamValues("nine")
	_, err = idParam(c)
	require.Error(t, err)

	c.SetParamValues("0")
	_, err = idParam(c)
	require.Error(t, err)
}
