package views

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"libredit/internal/adapters/tui/styles"
	"libredit/internal/application/commands"
	"libredit/internal/domain"
	"libredit/internal/ports"
)

// LibraryKeyMap defines key bindings for the library view
type LibraryKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Toggle   key.Binding
	All      key.Binding
	Edit     key.Binding
	Filter   key.Binding
	Copy     key.Binding
	Open     key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
	Accept   key.Binding
	Cancel   key.Binding
}

var LibraryKeys = LibraryKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+f"),
		key.WithHelp("pgdn", "next page"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("pgup", "ctrl+b"),
		key.WithHelp("pgup", "prev page"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "select"),
	),
	All: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "select all"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e", "enter"),
		key.WithHelp("e", "edit"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy path"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open folder"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Accept: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "apply filter"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear filter"),
	),
}

// reservedLines is the number of lines around the book list
const reservedLines = 12

// LibraryModel is the model for the book list view
type LibraryModel struct {
	ViewState
	provider  ports.LibraryProvider
	books     []domain.Book
	visible   []domain.Book
	selected  map[int64]bool
	paginator *Paginator
	filter    FilterInput
	filtering bool
	loaded    bool

	// copyPath writes to the system clipboard
	copyPath func(string) error
	// openFolder shows a folder in the file manager; nil disables the key
	openFolder func(context.Context, string) error
}

// NewLibraryModel creates a new library view model
func NewLibraryModel(provider ports.LibraryProvider) *LibraryModel {
	return &LibraryModel{
		provider:  provider,
		selected:  make(map[int64]bool),
		paginator: NewPaginator(20),
		filter:    NewFilterInput(),
		copyPath:  clipboard.WriteAll,
	}
}

// Init loads the books
func (m *LibraryModel) Init() tea.Cmd {
	return m.loadBooks
}

// BooksLoadedMsg carries a fresh book list
type BooksLoadedMsg struct {
	Books []domain.Book
	Err   error
}

func (m *LibraryModel) loadBooks() tea.Msg {
	books, err := commands.NewListBooksCommand(m.provider, "").Execute(context.Background())
	return BooksLoadedMsg{Books: books, Err: err}
}

// FolderOpenedMsg reports the result of opening a book folder
type FolderOpenedMsg struct {
	Path string
	Err  error
}

// SetFolderOpener sets the function used to open book folders
func (m *LibraryModel) SetFolderOpener(open func(context.Context, string) error) {
	m.openFolder = open
}

// Reload reloads the book list, keeping selection and filter
func (m *LibraryModel) Reload() tea.Cmd {
	return m.loadBooks
}

// Update handles messages for the library view
func (m *LibraryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case BooksLoadedMsg:
		if msg.Err != nil {
			m.SetError(msg.Err)
			return m, nil
		}
		m.loaded = true
		m.books = msg.Books
		m.pruneSelection()
		m.applyFilter()
		return m, nil

	case FolderOpenedMsg:
		if msg.Err != nil {
			m.SetMessage("Open failed: "+msg.Err.Error(), MessageError)
		} else {
			m.SetMessage("Opened "+msg.Path, MessageInfo)
		}
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m, m.updateFilter(msg)
		}
		m.ClearMessage()

		switch {
		case key.Matches(msg, LibraryKeys.Quit):
			return m, tea.Quit

		case key.Matches(msg, LibraryKeys.Up):
			m.paginator.CursorUp()

		case key.Matches(msg, LibraryKeys.Down):
			m.paginator.CursorDown()

		case key.Matches(msg, LibraryKeys.NextPage):
			m.paginator.NextPage()

		case key.Matches(msg, LibraryKeys.PrevPage):
			m.paginator.PrevPage()

		case key.Matches(msg, LibraryKeys.Toggle):
			if b := m.current(); b != nil {
				m.toggle(b.ID)
				m.paginator.CursorDown()
			}

		case key.Matches(msg, LibraryKeys.All):
			m.toggleAll()

		case key.Matches(msg, LibraryKeys.Edit):
			ids := m.SelectedIDs()
			return m, func() tea.Msg { return EditRequestMsg{BookIDs: ids} }

		case key.Matches(msg, LibraryKeys.Filter):
			m.filtering = true
			return m, m.filter.Focus()

		case key.Matches(msg, LibraryKeys.Copy):
			m.copyCurrentPath()

		case key.Matches(msg, LibraryKeys.Open):
			return m, m.openCurrentFolder()

		case key.Matches(msg, LibraryKeys.Reload):
			return m, m.Reload()

		case key.Matches(msg, LibraryKeys.Help):
			return m, func() tea.Msg { return SwitchToHelpMsg{} }
		}
		return m, nil
	}

	if m.filtering {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *LibraryModel) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, LibraryKeys.Accept):
		m.filtering = false
		m.filter.Blur()
		return nil

	case key.Matches(msg, LibraryKeys.Cancel):
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		return nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return cmd
}

func (m *LibraryModel) applyFilter() {
	m.visible = commands.FilterBooks(m.books, m.filter.Value())
	m.paginator.SetTotal(len(m.visible))
}

// pruneSelection drops selected books that no longer exist
func (m *LibraryModel) pruneSelection() {
	present := make(map[int64]bool, len(m.books))
	for _, b := range m.books {
		present[b.ID] = true
	}
	for id := range m.selected {
		if !present[id] {
			delete(m.selected, id)
		}
	}
}

func (m *LibraryModel) toggle(id int64) {
	if m.selected[id] {
		delete(m.selected, id)
	} else {
		m.selected[id] = true
	}
}

// toggleAll selects every visible book, or clears them all if they were
// already selected
func (m *LibraryModel) toggleAll() {
	all := len(m.visible) > 0
	for _, b := range m.visible {
		if !m.selected[b.ID] {
			all = false
			break
		}
	}
	for _, b := range m.visible {
		if all {
			delete(m.selected, b.ID)
		} else {
			m.selected[b.ID] = true
		}
	}
}

func (m *LibraryModel) current() *domain.Book {
	i := m.paginator.Cursor()
	if i >= 0 && i < len(m.visible) {
		return &m.visible[i]
	}
	return nil
}

// SelectedIDs returns the selected books in list order, or the book under
// the cursor when nothing is selected
func (m *LibraryModel) SelectedIDs() []int64 {
	var ids []int64
	for _, b := range m.books {
		if m.selected[b.ID] {
			ids = append(ids, b.ID)
		}
	}
	if len(ids) == 0 {
		if b := m.current(); b != nil {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

// ClearSelection deselects every book
func (m *LibraryModel) ClearSelection() {
	clear(m.selected)
}

func (m *LibraryModel) currentFolder() (string, bool) {
	b := m.current()
	if b == nil {
		return "", false
	}
	return filepath.Join(m.provider.Current().Root(), filepath.FromSlash(b.Path)), true
}

func (m *LibraryModel) openCurrentFolder() tea.Cmd {
	path, ok := m.currentFolder()
	if !ok || m.openFolder == nil {
		return nil
	}
	open := m.openFolder
	return func() tea.Msg {
		return FolderOpenedMsg{Path: path, Err: open(context.Background(), path)}
	}
}

func (m *LibraryModel) copyCurrentPath() {
	path, ok := m.currentFolder()
	if !ok {
		return
	}
	if err := m.copyPath(path); err != nil {
		m.SetMessage("Copy failed: "+err.Error(), MessageError)
		return
	}
	m.SetMessage("Copied "+path, MessageInfo)
}

// SetSize updates the view dimensions and the page size
func (m *LibraryModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	m.paginator.SetPageSize(height - reservedLines)
	m.filter.Width = max(width-10, 10)
}

// View renders the library view
func (m *LibraryModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("libredit"))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render(m.provider.Current().Root()))
	b.WriteString("\n\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	switch {
	case !m.loaded:
		b.WriteString(styles.MutedText.Render("Loading..."))
		b.WriteString("\n")
	case len(m.visible) == 0:
		b.WriteString(styles.MutedText.Render("No books"))
		b.WriteString("\n")
	default:
		start, end := m.paginator.VisibleRange()
		for i := start; i < end; i++ {
			b.WriteString(m.renderBook(m.visible[i], i == m.paginator.Cursor()))
			b.WriteString("\n")
		}
		if m.paginator.TotalPages() > 1 {
			b.WriteString(styles.StatusText.Render(fmt.Sprintf("page %d/%d", m.paginator.CurrentPage(), m.paginator.TotalPages())))
			b.WriteString("\n")
		}
	}

	if n := len(m.selected); n > 0 {
		b.WriteString(styles.StatusText.Render(fmt.Sprintf("%d selected", n)))
		b.WriteString("\n")
	}

	if msg := m.RenderMessage(); msg != "" {
		b.WriteString("\n")
		b.WriteString(msg)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelpLine())
	return b.String()
}

func (m *LibraryModel) renderBook(book domain.Book, cursor bool) string {
	box := styles.Unchecked.String()
	if m.selected[book.ID] {
		box = styles.Checked.String()
	}

	text := book.Title
	if book.Author != "" {
		text += " - " + book.Author
	}
	if cursor {
		text = styles.BookCursor.Render(text)
	} else {
		text = styles.BookTitle.Render(book.Title)
		if book.Author != "" {
			text += styles.BookAuthor.Render(" - " + book.Author)
		}
	}

	var tags []string
	for _, f := range book.Formats {
		tags = append(tags, styles.FormatTag(f))
	}
	return fmt.Sprintf("%s %s %s", box, text, strings.Join(tags, " "))
}

func (m *LibraryModel) renderHelpLine() string {
	if m.filtering {
		return renderHelpLine([]helpEntry{
			{"enter", "apply"},
			{"esc", "clear"},
		})
	}
	return renderHelpLine([]helpEntry{
		{"j/k", "navigate"},
		{"space", "select"},
		{"e", "edit"},
		{"/", "filter"},
		{"y", "copy path"},
		{"?", "help"},
		{"q", "quit"},
	})
}

// Messages for view switching
type EditRequestMsg struct {
	BookIDs []int64
}

type SwitchToHelpMsg struct{}

type SwitchToLibraryMsg struct{}
