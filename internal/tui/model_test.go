package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/domain"
)

type fakePort struct {
	tokens []string
	docs   map[string][]string
	answer string
	err    error
}

func (f *fakePort) Query(_ context.Context, _, _ string, _ int) (string, error) {
	return f.answer, f.err
}

func (f *fakePort) ListDocuments(_ context.Context, token string) ([]string, error) {
	return f.docs[token], nil
}

func (f *fakePort) ListUserTokens(_ context.Context) ([]string, error) {
	return f.tokens, nil
}

func enter(m Model, line string) Model {
	m.input.SetValue(line)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model)
}

func TestSelectKnownToken(t *testing.T) {
	port := &fakePort{tokens: []string{"t1"}}
	m := New(port, false)

	m = enter(m, "/token t1")
	assert.Equal(t, "t1", m.session.Token)
	assert.Contains(t, m.status, "t1")
}

func TestSelectUnknownTokenClearsSession(t *testing.T) {
	port := &fakePort{tokens: []string{"t1"}}
	m := New(port, false)

	m = enter(m, "/token t1")
	m = enter(m, "/token nope")
	assert.False(t, m.session.Active())
	assert.Contains(t, m.lines[len(m.lines)-1], "not in the document store")
}

func TestQueryWithoutTokenIsRejected(t *testing.T) {
	m := New(&fakePort{}, false)

	m = enter(m, "how do I book a room?")
	assert.Contains(t, m.lines[len(m.lines)-1], "/token")
}

func TestDocsListing(t *testing.T) {
	port := &fakePort{tokens: []string{"t1"}, docs: map[string][]string{"t1": {"a.txt", "b.txt"}}}
	m := New(port, false)

	m = enter(m, "/token t1")
	m = enter(m, "/docs")
	last := m.lines[len(m.lines)-1]
	assert.Contains(t, last, "a.txt")
	assert.Contains(t, last, "b.txt")
}

func TestTokensCommandNeedsPrivilege(t *testing.T) {
	port := &fakePort{tokens: []string{"t1", "t2"}}

	m := New(port, false)
	m = enter(m, "/token t1")
	m = enter(m, "/tokens")
	assert.Contains(t, m.lines[len(m.lines)-1], "privileged")

	m = New(port, true)
	m = enter(m, "/token t1")
	m = enter(m, "/tokens")
	assert.Contains(t, m.lines[len(m.lines)-1], "t2")
}

func TestTokensCommandKeepsSession(t *testing.T) {
	port := &fakePort{tokens: []string{"t1", "t2"}}
	m := New(port, true)

	m = enter(m, "/token t1")
	m = enter(m, "/tokens")
	assert.Equal(t, "t1", m.session.Token)
	assert.Contains(t, m.lines[len(m.lines)-1], "t2")
}

func TestTokenCommandRequiresSeparator(t *testing.T) {
	port := &fakePort{tokens: []string{"foo"}}
	m := New(port, false)

	m = enter(m, "/tokenfoo")
	assert.False(t, m.session.Active())
	assert.Contains(t, m.lines[len(m.lines)-1], "Unknown command")
}

func TestNoContextAnswerIsFriendly(t *testing.T) {
	port := &fakePort{tokens: []string{"t1"}, err: domain.ErrNoContext}
	m := New(port, false)
	m = enter(m, "/token t1")

	m.input.SetValue("any question")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	require.NotNil(t, cmd)

	msg := cmd()
	updated, _ = m.Update(msg)
	m = updated.(Model)
	assert.Contains(t, m.lines[len(m.lines)-1], "no information")
	assert.False(t, strings.Contains(m.lines[len(m.lines)-1], "went wrong"))
}
