package listview

import (
	"io"
	"strings"
)

// ClientForm is the input of the create and edit client dialogs.
type ClientForm struct {
	Active    *bool
	Name      string `validate:"required"`
	Email     string `validate:"omitempty,email"`
	CompanyID string `label:"company id"`
}

func (f ClientForm) trimmed() ClientForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.CompanyID = strings.TrimSpace(f.CompanyID)
	return f
}

// ContractForm is the input of the edit contract dialog.
type ContractForm struct {
	Title  string `validate:"required"`
	Client string `validate:"required"`
	Signed bool
}

func (f ContractForm) trimmed() ContractForm {
	f.Title = strings.TrimSpace(f.Title)
	f.Client = strings.TrimSpace(f.Client)
	return f
}

// TextForm creates a contract from text that is already extracted.
type TextForm struct {
	Title  string `validate:"required"`
	Client string `validate:"required"`
	Text   string `validate:"required"`
	Signed bool
}

func (f TextForm) trimmed() TextForm {
	f.Title = strings.TrimSpace(f.Title)
	f.Client = strings.TrimSpace(f.Client)
	f.Text = strings.TrimSpace(f.Text)
	return f
}

// UploadForm is the input of the upload dialog.
type UploadForm struct {
	File     io.Reader `validate:"required"`
	Progress func(total int64) io.Writer
	Title    string `validate:"required"`
	Client   string `validate:"required"`
	FileName string `label:"file name" validate:"required"`
	Size     int64
	Signed   bool
}

func (f UploadForm) trimmed() UploadForm {
	f.Title = strings.TrimSpace(f.Title)
	f.Client = strings.TrimSpace(f.Client)
	return f
}

// ReanalyzeForm is the input of the reanalyze dialog. An empty title keeps
// the current one.
type ReanalyzeForm struct {
	File     io.Reader `validate:"required"`
	Progress func(total int64) io.Writer
	Title    string
	FileName string `label:"file name" validate:"required"`
}
