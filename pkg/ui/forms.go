package ui

import (
	"fmt"

	"github.com/Dicklesworthstone/picam/pkg/model"
	"github.com/charmbracelet/huh"
)

type formKind int

const (
	formSave formKind = iota + 1
	formDelete
)

// promptForm wraps a huh form and the values it writes into
type promptForm struct {
	kind formKind
	form *huh.Form
	name *string
	yes  *bool
}

func newSaveForm(current string) *promptForm {
	name := ""
	if current != model.DefaultProfileName {
		name = current
	}
	f := &promptForm{kind: formSave, name: &name}
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Save profile as").
				Placeholder("outdoor").
				Value(f.name),
		),
	).WithShowHelp(false).WithTheme(huh.ThemeDracula()).WithWidth(44)
	return f
}

func newDeleteForm(name string) *promptForm {
	yes := false
	f := &promptForm{kind: formDelete, yes: &yes}
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete profile %q?", name)).
				Description("The file is removed from disk.").
				Affirmative("Delete").
				Negative("Keep").
				Value(f.yes),
		),
	).WithShowHelp(false).WithTheme(huh.ThemeDracula()).WithWidth(44)
	return f
}

func (f *promptForm) done() bool {
	return f.form.State == huh.StateCompleted || f.form.State == huh.StateAborted
}

func (f *promptForm) completed() bool {
	return f.form.State == huh.StateCompleted
}
