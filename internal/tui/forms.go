package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/contractdesk/internal/model"
	"github.com/Veraticus/contractdesk/internal/monitor"
	"github.com/Veraticus/contractdesk/internal/tui/themes"
)

type formKind int

const (
	formLogin formKind = iota
	formRegister
	formClientCreate
	formClientEdit
	formContractUpload
	formContractEdit
	formReanalyze
	formLogFilters
)

// Field keys.
const (
	fieldUsername  = "username"
	fieldEmail     = "email"
	fieldPassword  = "password"
	fieldName      = "name"
	fieldCompanyID = "company_id"
	fieldActive    = "active"
	fieldTitle     = "title"
	fieldClient    = "client"
	fieldFile      = "file"
	fieldSigned    = "signed"
)

type formField struct {
	key    string
	label  string
	input  textinput.Model
	toggle bool
	on     bool
}

type form struct {
	title  string
	target string
	errMsg string
	fields []formField
	kind   formKind
	focus  int
}

func textField(key, label, value, placeholder string) formField {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = 256
	in.SetValue(value)
	return formField{key: key, label: label, input: in}
}

func secretField(key, label string) formField {
	f := textField(key, label, "", "")
	f.input.EchoMode = textinput.EchoPassword
	f.input.EchoCharacter = '•'
	return f
}

func toggleField(key, label string, on bool) formField {
	return formField{key: key, label: label, toggle: true, on: on}
}

func newForm(kind formKind, title string, fields ...formField) *form {
	f := &form{kind: kind, title: title, fields: fields}
	f.setFocus(0)
	return f
}

func (f *form) setFocus(i int) {
	if len(f.fields) == 0 {
		return
	}
	i = (i%len(f.fields) + len(f.fields)) % len(f.fields)
	for j := range f.fields {
		if j == i && !f.fields[j].toggle {
			f.fields[j].input.Focus()
		} else {
			f.fields[j].input.Blur()
		}
	}
	f.focus = i
}

func (f *form) next() { f.setFocus(f.focus + 1) }
func (f *form) prev() { f.setFocus(f.focus - 1) }

func (f *form) field(key string) *formField {
	for i := range f.fields {
		if f.fields[i].key == key {
			return &f.fields[i]
		}
	}
	return nil
}

func (f *form) value(key string) string {
	if fld := f.field(key); fld != nil {
		return fld.input.Value()
	}
	return ""
}

func (f *form) setValue(key, value string) {
	if fld := f.field(key); fld != nil {
		fld.input.SetValue(value)
	}
}

func (f *form) toggled(key string) bool {
	if fld := f.field(key); fld != nil {
		return fld.on
	}
	return false
}

func (f *form) focused() *formField {
	if len(f.fields) == 0 {
		return nil
	}
	return &f.fields[f.focus]
}

// update routes a key to the focused field. It returns the key of the
// field that changed, if any.
func (f *form) update(msg tea.Msg) (string, tea.Cmd) {
	fld := f.focused()
	if fld == nil {
		return "", nil
	}
	if fld.toggle {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == " " {
			fld.on = !fld.on
			return fld.key, nil
		}
		return "", nil
	}

	before := fld.input.Value()
	var cmd tea.Cmd
	fld.input, cmd = fld.input.Update(msg)
	if fld.input.Value() != before {
		f.errMsg = ""
		return fld.key, cmd
	}
	return "", cmd
}

func (f *form) view(theme themes.Theme, width int) string {
	labelWidth := 0
	for _, fld := range f.fields {
		labelWidth = max(labelWidth, len(fld.label))
	}
	inputWidth := max(width-labelWidth-8, 10)

	lines := []string{theme.Title.Render(f.title)}
	for i, fld := range f.fields {
		label := lipgloss.NewStyle().Width(labelWidth + 2).Render(fld.label + ":")
		var value string
		if fld.toggle {
			box := "[ ]"
			if fld.on {
				box = "[x]"
			}
			value = box
		} else {
			in := fld.input
			in.Width = inputWidth
			value = in.View()
		}
		line := label + value
		if i == f.focus {
			line = theme.Bold.Render("› ") + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	if f.errMsg != "" {
		lines = append(lines, "", theme.StatusError.Render(f.errMsg))
	}
	lines = append(lines, "", theme.Faint.Render(f.hint()))
	return theme.RoundedBox.Width(width).Render(strings.Join(lines, "\n"))
}

func (f *form) hint() string {
	switch f.kind {
	case formLogin:
		return "Enter log in · Tab next field · Ctrl+T create an account"
	case formRegister:
		return "Enter register · Tab next field · Ctrl+T back to login"
	case formLogFilters:
		return "Filters apply as you type · Esc close"
	default:
		return "Enter save · Tab next field · Space toggle · Esc cancel"
	}
}

func loginForm() *form {
	return newForm(formLogin, "Log in",
		textField(fieldUsername, "Username", "", ""),
		secretField(fieldPassword, "Password"),
	)
}

func registerForm() *form {
	return newForm(formRegister, "Create account",
		textField(fieldUsername, "Username", "", ""),
		textField(fieldEmail, "Email", "", "optional"),
		secretField(fieldPassword, "Password"),
	)
}

func clientForm(c *model.Client) *form {
	if c == nil {
		return newForm(formClientCreate, "New client",
			textField(fieldName, "Name", "", ""),
			textField(fieldEmail, "Email", "", "optional"),
			textField(fieldCompanyID, "Company ID", "", "optional"),
			toggleField(fieldActive, "Active", true),
		)
	}
	f := newForm(formClientEdit, "Edit client",
		textField(fieldName, "Name", c.Name, ""),
		textField(fieldEmail, "Email", c.Email, "optional"),
		textField(fieldCompanyID, "Company ID", c.CompanyID, "optional"),
		toggleField(fieldActive, "Active", c.Active),
	)
	f.target = c.ID
	return f
}

func uploadForm(client string) *form {
	return newForm(formContractUpload, "Upload contract",
		textField(fieldTitle, "Title", "", ""),
		textField(fieldClient, "Client", client, ""),
		textField(fieldFile, "File", "", "path/to/contract.pdf"),
		toggleField(fieldSigned, "Signed", false),
	)
}

func contractEditForm(c model.Contract) *form {
	f := newForm(formContractEdit, "Edit contract",
		textField(fieldTitle, "Title", c.Title, ""),
		textField(fieldClient, "Client", c.Client, ""),
		toggleField(fieldSigned, "Signed", c.Signed),
	)
	f.target = c.ID
	return f
}

func reanalyzeForm(c model.Contract) *form {
	f := newForm(formReanalyze, "Reanalyze "+c.Title,
		textField(fieldFile, "File", "", "path/to/contract.pdf"),
		textField(fieldTitle, "Title", "", c.Title),
	)
	f.target = c.ID
	return f
}

func logFiltersForm(current map[monitor.LogFilter]string) *form {
	return newForm(formLogFilters, "Filter request logs",
		textField(string(monitor.FilterUser), "User", current[monitor.FilterUser], "username"),
		textField(string(monitor.FilterEndpoint), "Endpoint", current[monitor.FilterEndpoint], "/api/contracts/"),
		textField(string(monitor.FilterDate), "Date", current[monitor.FilterDate], "YYYY-MM-DD"),
		textField(string(monitor.FilterStatus), "Status", current[monitor.FilterStatus], "200"),
	)
}
