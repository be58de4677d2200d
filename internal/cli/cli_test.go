package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/bugtracker/internal/resource"
	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

func TestVersion(t *testing.T) {
	env := newTestEnv(t)

	r := env.mustRun("version")

	assert.Equal(t, "bugtracker "+Version+"\n", r.Stdout)
}

func TestInitCreatesConfigAndData(t *testing.T) {
	env := newTestEnv(t)

	r := env.mustRun("init")

	assert.Contains(t, r.Stdout, "bugtracker initialized")
	assert.FileExists(t, filepath.Join(env.configDir, configFileExt))
	for _, name := range []string{"projects.jsonl", "users.jsonl", "tickets.jsonl", "labels.jsonl", "ticket_labels.jsonl"} {
		assert.FileExists(t, filepath.Join(env.dataDir, name))
	}
}

func TestProjectLifecycle(t *testing.T) {
	env := newTestEnv(t)

	id := env.mustCreate("project", "--name", "core", "--description", "the core")

	got := mustJSON[object](env, "project", "get", id)
	assert.Equal(t, "core", got["name"])

	patched := mustJSON[object](env, "project", "patch", id, "--name", "kernel")
	assert.Equal(t, "kernel", patched["name"])
	assert.Equal(t, "the core", patched["description"], "patch must keep unset fields")

	replaced := mustJSON[object](env, "project", "update", id, "--name", "kernel")
	assert.Nil(t, replaced["description"], "update must clear unset fields")

	env.mustRun("project", "delete", id)
	r := env.run("project", "get", id)
	assert.Equal(t, exitUserError, r.ExitCode)
	assert.Contains(t, r.Stderr, resource.KeyIDNotFound)
}

func TestPatchRejectsRelationshipsInData(t *testing.T) {
	env := newTestEnv(t)
	labelID := env.mustCreate("label", "--value", "bug")
	ticketID := env.mustCreate("ticket", "--title", "t1")

	tests := []struct {
		name string
		args []string
	}{
		{"ticket labels", []string{"ticket", "patch", ticketID, "--data",
			`{"id":"` + ticketID + `","labels":[{"id":"` + labelID + `"}]}`}},
		{"ticket project", []string{"ticket", "patch", ticketID, "--data",
			`{"id":"` + ticketID + `","project":{"id":"nope"}}`}},
		{"ticket assignee", []string{"ticket", "patch", ticketID, "--data",
			`{"id":"` + ticketID + `","assignedTo":{"id":"nope"}}`}},
		{"label tickets", []string{"label", "patch", labelID, "--data",
			`{"id":"` + labelID + `","tickets":[{"id":"` + ticketID + `"}]}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := env.run(tt.args...)
			assert.Equal(t, exitUserError, r.ExitCode, "stdout: %s", r.Stdout)
			assert.Contains(t, r.Stderr, "unknown field")
		})
	}

	got := mustJSON[object](env, "ticket", "get", ticketID)
	assert.Nil(t, got["labels"])
	assert.Nil(t, got["project"])
	label := mustJSON[object](env, "label", "get", labelID)
	assert.Nil(t, label["tickets"])
}

func TestDataWithoutIDIsRejected(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate("project", "--name", "core")

	for _, verb := range []string{"update", "patch"} {
		t.Run(verb, func(t *testing.T) {
			r := env.run("project", verb, id, "--data", `{"name":"kernel"}`)
			assert.Equal(t, exitUserError, r.ExitCode)
			assert.Contains(t, r.Stderr, resource.KeyIDNull)
		})
	}

	got := mustJSON[object](env, "project", "get", id)
	assert.Equal(t, "core", got["name"])
}

func TestCreateRejectsBodyID(t *testing.T) {
	env := newTestEnv(t)

	r := env.run("project", "create", "--data", `{"id":"p-1","name":"core"}`)

	assert.Equal(t, exitUserError, r.ExitCode)
	assert.Contains(t, r.Stderr, resource.KeyIDExists)
}

func TestPatchRejectsMismatchedID(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate("label", "--value", "bug")

	r := env.run("label", "patch", id, "--data", `{"id":"other","value":"defect"}`)

	assert.Equal(t, exitUserError, r.ExitCode)
	assert.Contains(t, r.Stderr, resource.KeyIDInvalid)
	got := mustJSON[object](env, "label", "get", id)
	assert.Equal(t, "bug", got["value"])
}

func TestPatchMissingEntity(t *testing.T) {
	env := newTestEnv(t)

	r := env.run("user", "patch", "nope", "--email", "x@example.com")

	assert.Equal(t, exitUserError, r.ExitCode)
	assert.Contains(t, r.Stderr, resource.KeyIDNotFound)
}

func TestTicketWithReferences(t *testing.T) {
	env := newTestEnv(t)
	projectID := env.mustCreate("project", "--name", "core")
	userID := env.mustCreate("user", "--login", "ada")
	bug := env.mustCreate("label", "--value", "bug")
	ui := env.mustCreate("label", "--value", "ui")

	ticket := mustJSON[object](env, "ticket", "create",
		"--title", "crash on start",
		"--due", "2026-11-01",
		"--project", projectID,
		"--assignee", userID,
		"--label", bug, "--label", ui,
	)
	id := ticket["id"].(string)

	got := mustJSON[object](env, "ticket", "get", id)
	assert.Equal(t, "crash on start", got["title"])
	assert.Equal(t, "2026-11-01", got["dueDate"])
	assert.Equal(t, "core", got["project"].(object)["name"])
	assert.Equal(t, "ada", got["assignedTo"].(object)["login"])
	assert.Len(t, got["labels"], 2)

	label := mustJSON[object](env, "label", "get", bug)
	require.Len(t, label["tickets"], 1)
	assert.Equal(t, id, label["tickets"].([]any)[0].(object)["id"])
}

func TestTicketDanglingReference(t *testing.T) {
	env := newTestEnv(t)

	r := env.run("ticket", "create", "--title", "t", "--project", "missing")

	assert.Equal(t, exitUserError, r.ExitCode)
	assert.Contains(t, r.Stderr, types.ErrDanglingReference.Error())
}

func TestTicketPatchKeepsLabels(t *testing.T) {
	env := newTestEnv(t)
	bug := env.mustCreate("label", "--value", "bug")
	id := env.mustCreate("ticket", "--title", "t", "--label", bug)

	got := mustJSON[object](env, "ticket", "patch", id, "--done")

	assert.Equal(t, true, got["done"])
	assert.Equal(t, "t", got["title"])
	assert.Len(t, got["labels"], 1)
}

func TestTicketPatchRejectsRelationships(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate("ticket", "--title", "t")

	r := env.run("ticket", "patch", id, "--label", "x")

	assert.Equal(t, exitUserError, r.ExitCode)
}

func TestTicketLabelCommands(t *testing.T) {
	env := newTestEnv(t)
	bug := env.mustCreate("label", "--value", "bug")
	ui := env.mustCreate("label", "--value", "ui")
	id := env.mustCreate("ticket", "--title", "t")

	got := mustJSON[object](env, "ticket", "add-label", id, bug)
	assert.Len(t, got["labels"], 1)

	got = mustJSON[object](env, "ticket", "set-labels", id, bug, ui)
	assert.Len(t, got["labels"], 2)

	got = mustJSON[object](env, "ticket", "remove-label", id, bug)
	assert.Len(t, got["labels"], 1)

	label := mustJSON[object](env, "label", "remove-ticket", ui, id)
	assert.Nil(t, label["tickets"])
	label = mustJSON[object](env, "label", "add-ticket", bug, id)
	assert.Len(t, label["tickets"], 1)

	filtered := mustJSON[[]object](env, "ticket", "list", "--label", bug)
	require.Len(t, filtered, 1)
	assert.Equal(t, id, filtered[0]["id"])
}

func TestTicketListFilters(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreate("ticket", "--title", "open")
	env.mustCreate("ticket", "--title", "closed", "--done")

	done := mustJSON[[]object](env, "ticket", "list", "--done")
	require.Len(t, done, 1)
	assert.Equal(t, "closed", done[0]["title"])

	open := mustJSON[[]object](env, "ticket", "list", "--done=false")
	require.Len(t, open, 1)
	assert.Equal(t, "open", open[0]["title"])

	assert.Len(t, mustJSON[[]object](env, "ticket", "list", "--limit", "1"), 1)

	r := env.run("ticket", "list", "--order", "priority")
	assert.Equal(t, exitUserError, r.ExitCode)
}

func TestTicketPage(t *testing.T) {
	env := newTestEnv(t)
	for i, due := range []string{"2026-12-03", "2026-12-01", "", "2026-12-02"} {
		args := []string{"--title", fmt.Sprintf("t%d", i)}
		if due != "" {
			args = append(args, "--due", due)
		}
		env.mustCreate("ticket", args...)
	}

	pg := mustJSON[object](env, "ticket", "page", "--page", "0", "--size", "3")

	assert.EqualValues(t, 4, pg["total"])
	tickets := pg["tickets"].([]any)
	require.Len(t, tickets, 3)
	assert.Equal(t, "t1", tickets[0].(object)["title"])
	assert.Equal(t, "t3", tickets[1].(object)["title"])
	assert.Equal(t, "t0", tickets[2].(object)["title"])

	last := mustJSON[object](env, "ticket", "page", "--page", "1", "--size", "3")
	require.Len(t, last["tickets"], 1)
	assert.Equal(t, "t2", last["tickets"].([]any)[0].(object)["title"], "undated tickets sort last")

	text := env.mustRun("ticket", "page", "--size", "3")
	assert.Contains(t, text.Stdout, "page 1 of 2 (4 tickets)")
}

func TestTicketSelf(t *testing.T) {
	env := newTestEnv(t)
	ada := env.mustCreate("user", "--login", "ada")
	bob := env.mustCreate("user", "--login", "bob")
	env.mustCreate("ticket", "--title", "mine", "--assignee", ada)
	env.mustCreate("ticket", "--title", "theirs", "--assignee", bob)

	assert.Empty(t, mustJSON[[]object](env, "ticket", "self"), "no configured user")

	t.Setenv("BUGTRACKER_USER", "ada")
	mine := mustJSON[[]object](env, "ticket", "self")
	require.Len(t, mine, 1)
	assert.Equal(t, "mine", mine[0]["title"])
}

func TestUserDuplicateLogin(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreate("user", "--login", "ada")

	r := env.run("user", "create", "--login", "ada")

	assert.Equal(t, exitUserError, r.ExitCode)
	assert.Contains(t, r.Stderr, types.ErrDuplicateLogin.Error())
}

func TestUserValidation(t *testing.T) {
	env := newTestEnv(t)

	r := env.run("user", "create", "--login", "ada", "--email", "not-an-email")

	assert.Equal(t, exitUserError, r.ExitCode)
}

func TestTextOutput(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreate("ticket", "--title", "crash", "--due", "2026-11-01")

	r := env.mustRun("ticket", "list")

	lines := strings.Split(strings.TrimSpace(r.Stdout), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "crash")
	assert.Contains(t, lines[1], "2026-11-01")
}

func TestYAMLOutput(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate("label", "--value", "bug")

	r := env.mustRun("-o", "yaml", "label", "get", id)

	assert.Contains(t, r.Stdout, "value: bug")
}

func TestDeleteOutput(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate("label", "--value", "bug")

	r := env.mustRun("label", "delete", id)

	assert.Equal(t, "Deleted label "+id+"\n", r.Stdout)
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"ticket", "list", "--bogus"}},
		{"missing arg", []string{"ticket", "get"}},
		{"bad output format", []string{"-o", "xml", "version"}},
		{"bad due date", []string{"ticket", "create", "--title", "t", "--due", "tomorrow"}},
		{"bad data", []string{"label", "create", "--data", "{"}},
		{"negative limit", []string{"label", "list", "--limit", "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			r := env.run(tt.args...)
			assert.Equal(t, exitUserError, r.ExitCode, "stderr: %s", r.Stderr)
			assert.Contains(t, r.Stderr, "Error:")
		})
	}
}

func TestPersistsAcrossInvocations(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreate("ticket", "--title", "kept")

	data, err := os.ReadFile(filepath.Join(env.dataDir, "tickets.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(data), id)

	got := mustJSON[object](env, "ticket", "get", id)
	assert.Equal(t, "kept", got["title"])
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"usage", usageErrorf("bad"), exitUserError},
		{"request", &resource.RequestError{Entity: "ticket", Key: resource.KeyIDNull, Err: types.ErrIdentifierMissing}, exitUserError},
		{"wrapped sentinel", fmt.Errorf("save: %w", types.ErrDuplicateLogin), exitUserError},
		{"config", types.ErrSyncStrategyUnknown, exitUserError},
		{"system", errors.New("disk full"), exitSysError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
