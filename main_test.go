/* main_test.go
 * Contains unit tests for the command tree in main.go
 */

package main

import (
	"bytes"
	"testing"
	"time"

	"torneos-admin/api/models"
	"torneos-admin/api/resource"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// region command tree tests

func TestNewRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"web", "bot", "fetch"}, names)
	assert.NotNil(t, root.PersistentFlags().Lookup("env"))
	assert.NotNil(t, root.PersistentFlags().Lookup("debug"))
}

func TestNewRootCmd_FetchRequiresResource(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"fetch"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()

	assert.Error(t, err)
}

func TestNewRootCmd_FetchRejectsBadPage(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"fetch", "zonas", "abc"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid page")
}

// endregion

// region parseQuery tests

func TestParseQuery_Empty(t *testing.T) {
	q, err := parseQuery(nil)

	require.NoError(t, err)
	assert.Equal(t, resource.Query{}, q)
}

func TestParseQuery_AllArguments(t *testing.T) {
	q, err := parseQuery([]string{"2", "25", " zona a "})

	require.NoError(t, err)
	assert.Equal(t, resource.Query{Page: 2, Limit: 25, Search: "zona a"}, q)
}

func TestParseQuery_InvalidLimit(t *testing.T) {
	_, err := parseQuery([]string{"1", "0"})

	assert.ErrorContains(t, err, "invalid limit")
}

// endregion

// region printPage tests

func TestPrintPage(t *testing.T) {
	slice := resource.New[models.Zone](nil, resource.Definition[models.Zone]{
		Name:    "zonas",
		Path:    "/api/zonas",
		ListKey: "zonas",
		Label:   func(z models.Zone) string { return z.Nombre },
	}, nil)
	slice.Hydrate([]models.Zone{{ID: 1, Nombre: "Zona A"}, {ID: 2, Nombre: "Zona B"}}, 12, 1, 2, time.Now())

	var out bytes.Buffer
	require.NoError(t, printPage(&out, slice))

	assert.Equal(t, "1\tZona A\n2\tZona B\npage 1, 2 of 12 zonas\n", out.String())
}

// endregion
