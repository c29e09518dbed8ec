package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cinedex/internal/catalog"
	"github.com/desertthunder/cinedex/internal/models"
	"github.com/desertthunder/cinedex/internal/routes"
	"github.com/desertthunder/cinedex/internal/shared"
)

var fieldLabels = map[string]string{
	models.FieldTitle:    "Title",
	models.FieldType:     "Type",
	models.FieldDirector: "Director",
	models.FieldBudget:   "Budget",
	models.FieldLocation: "Location",
	models.FieldDuration: "Duration",
	models.FieldYear:     "Year",
}

// formView holds one input per record field plus a trailing image path input.
type formView struct {
	ctrl      *catalog.FormController
	inputs    []textinput.Model
	focus     int
	imagePath string
	imageErr  error
	err       error
}

func newFormView(ctrl *catalog.FormController) *formView {
	inputs := make([]textinput.Model, 0, len(models.FieldNames)+1)
	for _, name := range models.FieldNames {
		ti := textinput.New()
		ti.Prompt = fmt.Sprintf("%-10s", fieldLabels[name]+":")
		ti.CharLimit = 200
		inputs = append(inputs, ti)
	}

	image := textinput.New()
	image.Prompt = fmt.Sprintf("%-10s", "Image:")
	image.Placeholder = "path to a local image (optional)"
	image.CharLimit = 1024
	inputs = append(inputs, image)

	inputs[1].Placeholder = fmt.Sprintf("%s or %s", models.TypeMovie, models.TypeTVShow)
	inputs[0].Focus()

	v := &formView{ctrl: ctrl, inputs: inputs}
	v.sync()
	return v
}

func (v *formView) focusCmd() tea.Cmd {
	return textinput.Blink
}

func (v *formView) imageIndex() int {
	return len(v.inputs) - 1
}

// sync copies the controller's fields into the inputs.
func (v *formView) sync() {
	fields := v.ctrl.Fields()
	for i, name := range models.FieldNames {
		value, _ := fields.Get(name)
		v.inputs[i].SetValue(value)
	}
}

// apply copies the inputs into the controller.
func (v *formView) apply() error {
	var errs []error
	for i, name := range models.FieldNames {
		if err := v.ctrl.Set(name, strings.TrimSpace(v.inputs[i].Value())); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", shared.ErrInvalidInput, strings.ToLower(fieldLabels[name]), err))
		}
	}
	return errors.Join(errs...)
}

func (v *formView) loaded(err error) {
	v.err = err
	v.sync()
}

func (v *formView) imageReady(msg imageReadyMsg) {
	if msg.path != v.imagePath {
		return
	}
	v.imageErr = msg.err
}

func (v *formView) move(delta int) {
	v.inputs[v.focus].Blur()
	v.focus = (v.focus + delta + len(v.inputs)) % len(v.inputs)
	v.inputs[v.focus].Focus()
}

func (v *formView) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	v.inputs[v.focus], cmd = v.inputs[v.focus].Update(msg)
	return cmd
}

// selectImage hands a newly entered image path to the controller. It returns a
// command that reports when decoding finishes, or nil when the path is unchanged.
func (m *Model) selectImage() tea.Cmd {
	v := m.form
	path := expandHome(strings.TrimSpace(v.inputs[v.imageIndex()].Value()))
	if path == "" || path == v.imagePath {
		return nil
	}

	v.imagePath, v.imageErr = path, nil
	pending := v.ctrl.SelectImage(path)
	return func() tea.Msg {
		_, err := pending.Wait(m.ctx)
		return imageReadyMsg{path: path, err: err}
	}
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.form
	if v.ctrl.Loading() || v.ctrl.Submitting() {
		return m, nil
	}

	leavingImage := v.focus == v.imageIndex()

	switch {
	case key.Matches(msg, m.keys.back):
		return m, m.navigate(routes.PathMovies, nil)
	case key.Matches(msg, m.keys.next):
		v.move(1)
		if leavingImage {
			return m, m.selectImage()
		}
		return m, nil
	case key.Matches(msg, m.keys.prev):
		v.move(-1)
		if leavingImage {
			return m, m.selectImage()
		}
		return m, nil
	case key.Matches(msg, m.keys.submit):
		return m, m.submitForm()
	}

	v.err = nil
	return m, v.updateFocused(msg)
}

// submitForm applies the inputs and submits. The controller waits for a
// pending image decode before it sends anything.
func (m *Model) submitForm() tea.Cmd {
	v := m.form
	if err := v.apply(); err != nil {
		v.err = err
		return nil
	}
	v.err = nil
	m.selectImage()

	ctrl := v.ctrl
	return func() tea.Msg {
		movie, err := ctrl.Submit(m.ctx)
		return submittedMsg{movie: movie, err: err}
	}
}

func (m *Model) loadForm() tea.Cmd {
	ctrl := m.form.ctrl
	return func() tea.Msg {
		err := ctrl.Load(m.ctx)
		if errors.Is(err, shared.ErrRecordNotFound) {
			return navigateMsg{path: routes.PathMovies}
		}
		return formLoadedMsg{err: err}
	}
}

func (m *Model) renderForm() string {
	v := m.form
	var b strings.Builder

	title := "Add Movie/Show"
	if v.ctrl.Mode() == catalog.ModeEdit {
		title = fmt.Sprintf("Edit Movie/Show #%s", v.ctrl.ID())
	}
	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")

	if v.ctrl.Loading() {
		b.WriteString(styles.help.Render("Loading movie..."))
		return b.String()
	}

	for _, in := range v.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString(styles.help.Render("Preview:   " + describePreview(v.ctrl.Preview())))
	b.WriteString("\n")

	switch {
	case v.ctrl.Submitting():
		b.WriteString("\n" + styles.help.Render("Saving..."))
	case v.imageErr != nil:
		b.WriteString("\n" + styles.err.Render(fmt.Sprintf("%s: %v", catalog.MsgImageFailed, v.imageErr)))
	case v.err != nil:
		b.WriteString("\n" + errorLine(v.err))
	}

	helpKeys := []key.Binding{m.keys.next, m.keys.prev, m.keys.submit, m.keys.back, m.keys.quit}
	b.WriteString("\n\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}

// describePreview summarizes an image reference without dumping a data URL to the terminal.
func describePreview(preview string) string {
	switch {
	case preview == "":
		return "none"
	case catalog.IsDataURL(preview):
		mediaType, data, err := catalog.DecodeDataURL(preview)
		if err != nil {
			return "local image (unreadable)"
		}
		return fmt.Sprintf("local %s, %d KB", mediaType, (len(data)+1023)/1024)
	default:
		return preview
	}
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
