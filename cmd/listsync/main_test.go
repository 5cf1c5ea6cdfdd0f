package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/listsync/internal/source"
	"github.com/dshills/listsync/internal/store"
	"github.com/dshills/listsync/internal/tracking"
	"github.com/dshills/listsync/internal/watch"
)

func writeJSON(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	return out.String(), err
}

func TestDiffCmd_Text(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeJSON(t, dir, "old.json", `[{"id":"A"},{"id":"B"},{"id":"C"}]`)
	newPath := writeJSON(t, dir, "new.json", `[{"id":"D"},{"id":"B"},{"id":"F"}]`)

	out, err := execute(t, "diff", oldPath, newPath)
	require.NoError(t, err)
	assert.Equal(t, "Remove(2, 1)\nInsert(2, 1)\nRemove(0, 1)\nInsert(0, 1)\n2 inserted, 2 removed (4 events)\n", out)
}

func TestDiffCmd_NoChanges(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeJSON(t, dir, "old.json", `[{"id":1},{"id":2}]`)
	newPath := writeJSON(t, dir, "new.jsonl", "{\"id\": 1}\n{\"id\": 2}\n")

	out, err := execute(t, "diff", oldPath, newPath)
	require.NoError(t, err)
	assert.Equal(t, "no changes\n", out)
}

func TestDiffCmd_JSON(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeJSON(t, dir, "old.json", `[{"key":"a","v":1},{"key":"b","v":1}]`)
	newPath := writeJSON(t, dir, "new.json", `[{"key":"a","v":2},{"key":"b","v":1}]`)

	out, err := execute(t, "diff", "--id", "key", "--format", "json", oldPath, newPath)
	require.NoError(t, err)

	var report struct {
		Operations []struct {
			Kind    string          `json:"kind"`
			Start   int             `json:"start"`
			Count   int             `json:"count"`
			To      *int            `json:"to"`
			Payload json.RawMessage `json:"payload"`
		} `json:"operations"`
		Summary struct {
			Events  int `json:"events"`
			Changed int `json:"changed"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	require.Len(t, report.Operations, 1)
	op := report.Operations[0]
	assert.Equal(t, "changed", op.Kind)
	assert.Equal(t, 0, op.Start)
	assert.Equal(t, 1, op.Count)
	assert.Nil(t, op.To)
	assert.JSONEq(t, `"a"`, string(op.Payload))
	assert.Equal(t, 1, report.Summary.Events)
	assert.Equal(t, 1, report.Summary.Changed)
}

func TestDiffCmd_Errors(t *testing.T) {
	dir := t.TempDir()
	good := writeJSON(t, dir, "good.json", `[]`)
	bad := writeJSON(t, dir, "bad.json", `[{"id":`)

	tests := []struct {
		name string
		args []string
	}{
		{"missing argument", []string{"diff", good}},
		{"unknown format", []string{"diff", "--format", "xml", good, good}},
		{"invalid json", []string{"diff", good, bad}},
		{"missing file", []string{"diff", good, filepath.Join(dir, "nope.json")}},
		{"missing config", []string{"--config", filepath.Join(dir, "nope.toml"), "diff", good, good}},
		{"bad log level", []string{"--log-level", "loud", "diff", good, good}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestSortCmd(t *testing.T) {
	dir := t.TempDir()
	path := writeJSON(t, dir, "items.json", `[{"id":"C"},{"id":"A"},{"id":"B"}]`)
	outPath := filepath.Join(dir, "sorted.json")

	out, err := execute(t, "sort", "--by", "id", "--verify", "--output", outPath, path)
	require.NoError(t, err)
	assert.Equal(t, "Move(0, 2)\n1 moved (1 event)\n", out)

	sorted, err := source.Load(outPath, "id")
	require.NoError(t, err)
	assert.Equal(t, []string{`"A"`, `"B"`, `"C"`}, []string{sorted[0].ID, sorted[1].ID, sorted[2].ID})
}

func TestSortCmd_ConfigWithoutMoves(t *testing.T) {
	dir := t.TempDir()
	path := writeJSON(t, dir, "items.json", `[{"id":"C"},{"id":"A"},{"id":"B"}]`)
	cfgPath := writeJSON(t, dir, "listsync.toml", "[store]\ndetectMoves = false\n")

	out, err := execute(t, "--config", cfgPath, "sort", "--by", "id", "--verify", path)
	require.NoError(t, err)
	assert.Equal(t, "Insert(3, 1)\nRemove(0, 1)\n1 inserted, 1 removed (2 events)\n", out)
}

func TestSortCmd_RequiresBy(t *testing.T) {
	path := writeJSON(t, t.TempDir(), "items.json", `[]`)
	_, err := execute(t, "sort", path)
	assert.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "listsync dev")
	assert.Contains(t, out, "Commit: unknown")
}

func newTestSession(t *testing.T, path string) (*watchSession, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	sess := &watchSession{
		path:    path,
		idPath:  "id",
		format:  formatText,
		verify:  true,
		out:     &out,
		log:     zerolog.Nop(),
		store:   store.New(source.Matcher()),
		tracker: tracking.NewTracker(),
	}
	sess.store.Subscribe(sess.tracker)
	t.Cleanup(sess.store.Close)
	return sess, &out
}

func TestWatchSession_Reload(t *testing.T) {
	dir := t.TempDir()
	path := writeJSON(t, dir, "items.json", `[{"id":"A","v":1},{"id":"B","v":1}]`)
	sess, out := newTestSession(t, path)

	require.NoError(t, sess.reload())
	assert.Equal(t, "Insert(0, 2)\n2 inserted (1 event)\n", out.String())

	out.Reset()
	writeJSON(t, dir, "items.json", `[{"id":"A","v":1},{"id":"B","v":2}]`)
	require.NoError(t, sess.handle(watch.Event{Path: path, Op: watch.OpWrite}))
	assert.Equal(t, "Change(1, 1)\n1 changed (1 event)\n", out.String())

	out.Reset()
	require.NoError(t, sess.reload())
	assert.Empty(t, out.String(), "unchanged file prints nothing")
}

func TestWatchSession_KeepsStateOnErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeJSON(t, dir, "items.json", `[{"id":"A"}]`)
	sess, out := newTestSession(t, path)
	require.NoError(t, sess.reload())
	rev := sess.store.Revision()

	writeJSON(t, dir, "items.json", `[{"id":`)
	require.NoError(t, sess.handle(watch.Event{Path: path, Op: watch.OpWrite}))
	require.NoError(t, sess.handle(watch.Event{Path: path, Op: watch.OpRemove}))

	assert.Equal(t, rev, sess.store.Revision())
	assert.Equal(t, 1, sess.store.Len())
	assert.Equal(t, "Insert(0, 1)\n1 inserted (1 event)\n", out.String())
}

func TestSortCmd_Collate(t *testing.T) {
	path := writeJSON(t, t.TempDir(), "items.json", `[{"id":"Carol"},{"id":"alice"},{"id":"bob"}]`)

	out, err := execute(t, "sort", "--by", "id", path)
	require.NoError(t, err)
	assert.Equal(t, "no changes\n", out, "byte order already holds")

	out, err = execute(t, "sort", "--by", "id", "--collate", "en", "--verify", path)
	require.NoError(t, err)
	assert.Equal(t, "Move(0, 2)\n1 moved (1 event)\n", out)

	_, err = execute(t, "sort", "--by", "id", "--collate", "not a tag!", path)
	assert.Error(t, err)
}
