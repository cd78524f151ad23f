package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docchat/internal/domain"
)

// ChatPort is the TUI-facing subset of the RAG pipeline.
type ChatPort interface {
	Query(ctx context.Context, token, query string, topK int) (string, error)
	ListDocuments(ctx context.Context, token string) ([]string, error)
	ListUserTokens(ctx context.Context) ([]string, error)
}

const welcomeText = `Welcome! I answer questions based on your documents.

Select your token first:  /token <your-token>
Then just type your questions. /help shows all commands.`

const helpText = `Commands:
  /token <id>   select the token that owns your documents
  /docs         list your documents
  /help         this help
  /quit         exit

Anything else is treated as a question about your documents.`

// answerMsg carries an asynchronous pipeline response back into Update.
type answerMsg struct {
	answer string
	err    error
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	service    ChatPort
	session    domain.Session
	allowAdmin bool

	input    textinput.Model
	viewport viewport.Model
	lines    []string
	status   string
	waiting  bool
	ready    bool
}

// New creates a new chat model. allowAdmin unlocks the /tokens command for
// privileged sessions.
func New(service ChatPort, allowAdmin bool) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "/token <your-token>"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:    service,
		allowAdmin: allowAdmin,
		input:      ti,
		viewport:   vp,
		lines:      []string{welcomeText},
		status:     "No token selected.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, status, input frame, spacer
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width)
		m.viewport.Height = vh
		m.refreshTranscript()
		return m, nil
	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.appendBot(phraseError(msg.err))
		} else {
			m.appendBot(msg.answer)
		}
		m.status = statusFor(m.session)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" {
			line := strings.TrimSpace(m.input.Value())
			if line == "" || m.waiting {
				return m, nil
			}
			m.input.SetValue("")
			return m.handleLine(line)
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleLine(line string) (tea.Model, tea.Cmd) {
	switch {
	case line == "/quit" || line == "/exit":
		return m, tea.Quit
	case line == "/help":
		m.appendUser(line)
		m.appendBot(helpText)
		return m, nil
	case line == "/tokens":
		m.appendUser(line)
		m.showTokens()
		return m, nil
	case line == "/token" || strings.HasPrefix(line, "/token "):
		m.appendUser(line)
		m.selectToken(strings.TrimSpace(strings.TrimPrefix(line, "/token")))
		return m, nil
	case line == "/docs":
		m.appendUser(line)
		m.showDocuments()
		return m, nil
	case strings.HasPrefix(line, "/"):
		m.appendUser(line)
		m.appendBot("Unknown command. /help lists what I understand.")
		return m, nil
	}

	m.appendUser(line)
	if !m.session.Active() {
		m.appendBot("Please select your token first: /token <your-token>")
		return m, nil
	}
	m.waiting = true
	m.status = "Thinking..."
	token := m.session.Token
	service := m.service
	return m, func() tea.Msg {
		answer, err := service.Query(context.Background(), token, line, 0)
		return answerMsg{answer: answer, err: err}
	}
}

func (m *Model) selectToken(token string) {
	if token == "" {
		m.appendBot("Usage: /token <your-token>")
		return
	}
	known, err := m.service.ListUserTokens(context.Background())
	if err != nil {
		m.appendBot("Could not check the token, please try again.")
		return
	}
	found := false
	for _, t := range known {
		if t == token {
			found = true
			break
		}
	}
	if !found {
		m.session = domain.Session{}
		m.status = statusFor(m.session)
		m.appendBot("This token is not in the document store, please try again.")
		return
	}
	m.session = domain.Session{Token: token, Privileged: m.allowAdmin}
	m.status = statusFor(m.session)
	m.appendBot(fmt.Sprintf("Token set: %s. Ask away, or use /docs to see your documents.", token))
}

func (m *Model) showDocuments() {
	if !m.session.Active() {
		m.appendBot("Please select your token first: /token <your-token>")
		return
	}
	docs, err := m.service.ListDocuments(context.Background(), m.session.Token)
	if err != nil {
		m.appendBot("Could not list your documents, please try again.")
		return
	}
	if len(docs) == 0 {
		m.appendBot("No documents found for your token.")
		return
	}
	var b strings.Builder
	b.WriteString("Your documents:\n")
	for _, d := range docs {
		b.WriteString("  • " + d + "\n")
	}
	m.appendBot(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) showTokens() {
	if !m.session.Privileged {
		m.appendBot("This command needs a privileged session.")
		return
	}
	tokens, err := m.service.ListUserTokens(context.Background())
	if err != nil {
		m.appendBot("Could not list tokens, please try again.")
		return
	}
	m.appendBot("Known tokens: " + strings.Join(tokens, ", "))
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("docchat — document assistant")
	chat := chatBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + chat + "\n" + input + "\n" + status
}

func (m *Model) appendUser(text string) {
	m.lines = append(m.lines, userStyle.Render("you: ")+text)
	m.refreshTranscript()
}

func (m *Model) appendBot(text string) {
	m.lines = append(m.lines, botStyle.Render("bot: ")+text)
	m.refreshTranscript()
}

func (m *Model) refreshTranscript() {
	m.viewport.SetContent(strings.Join(m.lines, "\n\n"))
	m.viewport.GotoBottom()
}

// phraseError keeps "nothing there" outcomes friendly and distinct from real
// failures.
func phraseError(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoDocuments):
		return "No documents found for your token. Check the token or upload documents first."
	case errors.Is(err, domain.ErrNoContext):
		return "Sorry, I have no information to answer this question."
	default:
		return "Something went wrong while processing your question. Please try again."
	}
}

func statusFor(s domain.Session) string {
	if !s.Active() {
		return "No token selected."
	}
	if s.Privileged {
		return "Token: " + s.Token + " (privileged)"
	}
	return "Token: " + s.Token
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	chatBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
