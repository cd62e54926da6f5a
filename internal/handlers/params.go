package handlers

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// workspaceParam reads the optional workspace_id query parameter. A missing
// parameter means no workspace.
func workspaceParam(c echo.Context) (*int64, error) {
	if c.QueryParam("workspace_id") == "" {
		return nil, nil
	}

	var id int64
	if err := echo.QueryParamsBinder(c).Int64("workspace_id", &id).BindError(); err != nil {
		return nil, errors.New("workspace_id must be an integer")
	}
	if id <= 0 {
		return nil, errors.New("workspace_id must be positive")
	}
	return &id, nil
}

func idParam(c echo.Context) (int64, error) {
	var id int64
	if err := echo.PathParamsBinder(c).MustInt64("id", &id).BindError(); err != nil {
		return 0, errors.New("id must be an integer")
	}
	if id <= 0 {
		return 0, errors.New("id must be positive")
	}
	return id, nil
}
